package repository

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gezi-blog/backend/internal/users/domain"
)

const whitelistCollection = "whitelist"

// WhitelistRepository stores pre-approval entries. Emails are stored
// lower-cased so equality lookups stay case-insensitive.
type WhitelistRepository struct {
	client *firestore.Client
}

func NewWhitelistRepository(client *firestore.Client) *WhitelistRepository {
	return &WhitelistRepository{client: client}
}

func (r *WhitelistRepository) col() *firestore.CollectionRef {
	return r.client.Collection(whitelistCollection)
}

func (r *WhitelistRepository) FindByEmail(ctx context.Context, email string) (*domain.WhitelistEntry, error) {
	iter := r.col().
		Where("email", "==", strings.ToLower(email)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, domain.ErrWhitelistEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("whitelist lookup: %w", err)
	}

	var entry domain.WhitelistEntry
	if err := snap.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("decode whitelist entry %s: %w", snap.Ref.ID, err)
	}
	entry.ID = snap.Ref.ID
	return &entry, nil
}

func (r *WhitelistRepository) Add(ctx context.Context, entry *domain.WhitelistEntry) (string, error) {
	entry.Email = strings.ToLower(entry.Email)
	ref, _, err := r.col().Add(ctx, entry)
	if err != nil {
		return "", fmt.Errorf("add whitelist entry: %w", err)
	}
	return ref.ID, nil
}

func (r *WhitelistRepository) Remove(ctx context.Context, id string) error {
	ref := r.col().Doc(id)
	if _, err := ref.Get(ctx); status.Code(err) == codes.NotFound {
		return domain.ErrWhitelistEntryNotFound
	} else if err != nil {
		return fmt.Errorf("get whitelist entry: %w", err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("remove whitelist entry: %w", err)
	}
	return nil
}

func (r *WhitelistRepository) List(ctx context.Context) ([]domain.WhitelistEntry, error) {
	iter := r.col().OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	out := make([]domain.WhitelistEntry, 0, 8)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list whitelist: %w", err)
		}

		var entry domain.WhitelistEntry
		if err := snap.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("decode whitelist entry %s: %w", snap.Ref.ID, err)
		}
		entry.ID = snap.Ref.ID
		out = append(out, entry)
	}
	return out, nil
}
