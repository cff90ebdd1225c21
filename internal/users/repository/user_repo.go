package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gezi-blog/backend/internal/access"
	"github.com/gezi-blog/backend/internal/users/domain"
)

const usersCollection = "users"

// UserRepository stores User documents keyed by Firebase UID.
type UserRepository struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) doc(uid string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(uid)
}

func (r *UserRepository) Get(ctx context.Context, uid string) (*domain.User, error) {
	snap, err := r.doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var user domain.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", uid, err)
	}
	user.UID = snap.Ref.ID
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.UID == "" {
		return fmt.Errorf("uid required")
	}
	if _, err := r.doc(user.UID).Set(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// List returns all users ordered by creation time, newest first.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	iter := r.client.Collection(usersCollection).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	out := make([]domain.User, 0, 16)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}

		var user domain.User
		if err := snap.DataTo(&user); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
		}
		user.UID = snap.Ref.ID
		out = append(out, user)
	}
	return out, nil
}

// UpdateRole persists a re-derived role, e.g. an admin-set upgrade at login.
func (r *UserRepository) UpdateRole(ctx context.Context, uid string, role access.Role) error {
	_, err := r.doc(uid).Update(ctx, []firestore.Update{
		{Path: "role", Value: role},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

func (r *UserRepository) Approve(ctx context.Context, uid string, canEdit bool, at time.Time, by string) error {
	_, err := r.doc(uid).Update(ctx, []firestore.Update{
		{Path: "role", Value: access.RoleAllowed},
		{Path: "canEdit", Value: canEdit},
		{Path: "approvedAt", Value: at},
		{Path: "approvedBy", Value: by},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("approve user: %w", err)
	}
	return nil
}

func (r *UserRepository) Revoke(ctx context.Context, uid string) error {
	_, err := r.doc(uid).Update(ctx, []firestore.Update{
		{Path: "role", Value: access.RolePublic},
		{Path: "canEdit", Value: false},
		{Path: "approvedAt", Value: firestore.Delete},
		{Path: "approvedBy", Value: firestore.Delete},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("revoke user: %w", err)
	}
	return nil
}

func (r *UserRepository) SetCanEdit(ctx context.Context, uid string, canEdit bool) error {
	_, err := r.doc(uid).Update(ctx, []firestore.Update{
		{Path: "canEdit", Value: canEdit},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("set canEdit: %w", err)
	}
	return nil
}

// Delete removes the user document. Firestore deletes are no-ops on missing
// documents, so existence is checked first to surface NotFound.
func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	if _, err := r.Get(ctx, uid); err != nil {
		return err
	}
	if _, err := r.doc(uid).Delete(ctx); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
