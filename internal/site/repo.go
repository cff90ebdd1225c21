package site

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var ErrSettingsNotFound = errors.New("site settings not found")

const (
	settingsCollection = "config"
	settingsDoc        = "site"
)

// FirestoreModeStore keeps the site settings in a single well-known document.
type FirestoreModeStore struct {
	client *firestore.Client
}

func NewFirestoreModeStore(client *firestore.Client) *FirestoreModeStore {
	return &FirestoreModeStore{client: client}
}

func (r *FirestoreModeStore) Get(ctx context.Context) (*Settings, error) {
	snap, err := r.client.Collection(settingsCollection).Doc(settingsDoc).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get site settings: %w", err)
	}

	var settings Settings
	if err := snap.DataTo(&settings); err != nil {
		return nil, fmt.Errorf("decode site settings: %w", err)
	}
	return &settings, nil
}

func (r *FirestoreModeStore) Set(ctx context.Context, settings *Settings) error {
	_, err := r.client.Collection(settingsCollection).Doc(settingsDoc).Set(ctx, settings)
	if err != nil {
		return fmt.Errorf("set site settings: %w", err)
	}
	return nil
}
