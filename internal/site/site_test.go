package site

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gezi-blog/backend/internal/access"
	"github.com/gezi-blog/backend/internal/auth"
)

type fakeModeStore struct {
	settings *Settings
}

func (f *fakeModeStore) Get(context.Context) (*Settings, error) {
	if f.settings == nil {
		return nil, ErrSettingsNotFound
	}
	return f.settings, nil
}

func (f *fakeModeStore) Set(_ context.Context, settings *Settings) error {
	f.settings = settings
	return nil
}

func newTestService(store *fakeModeStore) *Service {
	svc := NewService(access.NewEvaluator([]string{"admin@example.com"}), store)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestModeDefaultsToOpen(t *testing.T) {
	svc := newTestService(&fakeModeStore{})

	settings, err := svc.Mode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeOpen, settings.Mode)
}

func TestSetModeAdminOnly(t *testing.T) {
	store := &fakeModeStore{}
	svc := newTestService(store)

	_, err := svc.SetMode(context.Background(), &auth.Identity{Email: "reader@example.com"}, ModeRestricted)
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = svc.SetMode(context.Background(), nil, ModeRestricted)
	assert.ErrorIs(t, err, access.ErrForbidden)

	assert.Nil(t, store.settings)
}

func TestSetModeRoundTrip(t *testing.T) {
	store := &fakeModeStore{}
	svc := newTestService(store)
	admin := &auth.Identity{Email: "Admin@Example.com"}

	settings, err := svc.SetMode(context.Background(), admin, "Restricted")
	require.NoError(t, err)
	assert.Equal(t, ModeRestricted, settings.Mode)
	assert.Equal(t, "admin@example.com", settings.UpdatedBy)
	assert.False(t, settings.UpdatedAt.IsZero())

	current, err := svc.Mode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeRestricted, current.Mode)
}

func TestSetModeRejectsUnknownValue(t *testing.T) {
	svc := newTestService(&fakeModeStore{})

	_, err := svc.SetMode(context.Background(), &auth.Identity{Email: "admin@example.com"}, "maintenance")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestModeRepairsCorruptValue(t *testing.T) {
	store := &fakeModeStore{settings: &Settings{Mode: "weird"}}
	svc := newTestService(store)

	settings, err := svc.Mode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeOpen, settings.Mode)
}
