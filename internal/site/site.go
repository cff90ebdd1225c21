package site

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gezi-blog/backend/internal/access"
	"github.com/gezi-blog/backend/internal/auth"
)

// Mode controls whether anonymous visitors see public posts ("open") or a
// login wall ("restricted").
type Mode string

const (
	ModeOpen       Mode = "open"
	ModeRestricted Mode = "restricted"
)

var ErrInvalidMode = errors.New("invalid site mode")

type Settings struct {
	Mode      Mode      `firestore:"mode" json:"mode"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
	UpdatedBy string    `firestore:"updatedBy" json:"updatedBy"`
}

// ModeStore persists the single site settings document.
type ModeStore interface {
	Get(ctx context.Context) (*Settings, error)
	Set(ctx context.Context, settings *Settings) error
}

type Service struct {
	eval  *access.Evaluator
	store ModeStore
	now   func() time.Time
}

func NewService(eval *access.Evaluator, store ModeStore) *Service {
	return &Service{eval: eval, store: store, now: time.Now}
}

// Mode returns the current site mode, defaulting to open when nothing has
// been written yet.
func (s *Service) Mode(ctx context.Context) (*Settings, error) {
	settings, err := s.store.Get(ctx)
	if errors.Is(err, ErrSettingsNotFound) {
		return &Settings{Mode: ModeOpen}, nil
	}
	if err != nil {
		return nil, err
	}
	if settings.Mode != ModeOpen && settings.Mode != ModeRestricted {
		settings.Mode = ModeOpen
	}
	return settings, nil
}

// SetMode flips the site between open and restricted. Admin only, gated on
// the token email rather than any stored role.
func (s *Service) SetMode(ctx context.Context, identity *auth.Identity, mode Mode) (*Settings, error) {
	if identity == nil || !s.eval.IsAdmin(identity.Email) {
		return nil, access.ErrForbidden
	}

	mode = Mode(strings.ToLower(strings.TrimSpace(string(mode))))
	if mode != ModeOpen && mode != ModeRestricted {
		return nil, ErrInvalidMode
	}

	settings := &Settings{
		Mode:      mode,
		UpdatedAt: s.now().UTC(),
		UpdatedBy: strings.ToLower(identity.Email),
	}
	if err := s.store.Set(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
