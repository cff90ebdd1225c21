package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gezi-blog/backend/internal/access"
	"github.com/gezi-blog/backend/internal/auth"
	"github.com/gezi-blog/backend/internal/users/domain"
)

// UserStore is the persistence surface the service needs. Implemented by
// repository.UserRepository; faked in tests.
type UserStore interface {
	Get(ctx context.Context, uid string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, uid string, role access.Role) error
	Approve(ctx context.Context, uid string, canEdit bool, at time.Time, by string) error
	Revoke(ctx context.Context, uid string) error
	SetCanEdit(ctx context.Context, uid string, canEdit bool) error
	Delete(ctx context.Context, uid string) error
}

type WhitelistStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.WhitelistEntry, error)
	Add(ctx context.Context, entry *domain.WhitelistEntry) (string, error)
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.WhitelistEntry, error)
}

// AccountDeleter removes the identity-provider account for a uid.
type AccountDeleter interface {
	DeleteAccount(ctx context.Context, uid string) error
}

type UserService struct {
	eval      *access.Evaluator
	users     UserStore
	whitelist WhitelistStore
	accounts  AccountDeleter
	now       func() time.Time
}

func NewUserService(eval *access.Evaluator, users UserStore, whitelist WhitelistStore, accounts AccountDeleter) *UserService {
	return &UserService{
		eval:      eval,
		users:     users,
		whitelist: whitelist,
		accounts:  accounts,
		now:       time.Now,
	}
}

// requireAdmin gates admin-only workflows on the token's email, never on a
// stored role.
func (s *UserService) requireAdmin(identity *auth.Identity) error {
	if identity == nil || !s.eval.IsAdmin(identity.Email) {
		return access.ErrForbidden
	}
	return nil
}

// Sync is the role bootstrap run after every login.
//
// First login (no stored user): the default role comes from the admin set;
// a whitelist entry for the email overrides role and canEdit. The entry is
// not deleted - removal stays an explicit admin action.
//
// Subsequent logins: the role is re-derived against the admin set and the
// stored value updated when it changed, so admin-set edits take effect at
// the next sync without touching approved allowed/public users.
func (s *UserService) Sync(ctx context.Context, identity *auth.Identity) (*domain.User, error) {
	if identity == nil {
		return nil, access.ErrForbidden
	}

	existing, err := s.users.Get(ctx, identity.UID)
	if err == nil {
		effective := s.eval.EffectiveRole(identity.Email, existing.Role)
		if effective != existing.Role {
			if err := s.users.UpdateRole(ctx, identity.UID, effective); err != nil {
				return nil, err
			}
			existing.Role = effective
		}
		return existing, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	role := s.eval.ResolveRole(identity.Email)
	canEdit := role == access.RoleAdmin

	entry, werr := s.whitelist.FindByEmail(ctx, identity.Email)
	if werr == nil {
		if entry.Role != "" {
			role = entry.Role
		} else {
			role = access.RoleAllowed
		}
		canEdit = entry.CanEdit
	} else if !errors.Is(werr, domain.ErrWhitelistEntryNotFound) {
		return nil, werr
	}

	user := &domain.User{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		PhotoURL:    identity.PhotoURL,
		Role:        role,
		CanEdit:     canEdit,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, identity *auth.Identity) ([]domain.User, error) {
	if err := s.requireAdmin(identity); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	// Report effective roles so a stale stored admin never shows as one.
	for i := range users {
		users[i].Role = s.eval.EffectiveRole(users[i].Email, users[i].Role)
	}
	return users, nil
}

func (s *UserService) Approve(ctx context.Context, identity *auth.Identity, targetUID string, canEdit bool) error {
	if err := s.requireAdmin(identity); err != nil {
		return err
	}
	return s.users.Approve(ctx, targetUID, canEdit, s.now().UTC(), identity.Email)
}

func (s *UserService) Revoke(ctx context.Context, identity *auth.Identity, targetUID string) error {
	if err := s.requireAdmin(identity); err != nil {
		return err
	}
	return s.users.Revoke(ctx, targetUID)
}

func (s *UserService) SetEditPermission(ctx context.Context, identity *auth.Identity, targetUID string, canEdit bool) error {
	if err := s.requireAdmin(identity); err != nil {
		return err
	}
	return s.users.SetCanEdit(ctx, targetUID, canEdit)
}

// Delete removes the user document and then, best-effort, the
// identity-provider account. The account may never have existed (users can
// be added manually), so that failure is logged and swallowed.
func (s *UserService) Delete(ctx context.Context, identity *auth.Identity, targetUID string) error {
	if err := s.requireAdmin(identity); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, targetUID); err != nil {
		return err
	}
	if err := s.accounts.DeleteAccount(ctx, targetUID); err != nil {
		log.Printf("best-effort auth account delete for %s failed: %v", targetUID, err)
	}
	return nil
}

func (s *UserService) AddToWhitelist(ctx context.Context, identity *auth.Identity, email string, role access.Role, canEdit bool) (*domain.WhitelistEntry, error) {
	if err := s.requireAdmin(identity); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if role == "" {
		role = access.RoleAllowed
	}

	_, err := s.whitelist.FindByEmail(ctx, email)
	if err == nil {
		return nil, domain.ErrWhitelistConflict
	}
	if !errors.Is(err, domain.ErrWhitelistEntryNotFound) {
		return nil, err
	}

	entry := &domain.WhitelistEntry{
		Email:     email,
		Role:      role,
		CanEdit:   canEdit,
		CreatedAt: s.now().UTC(),
	}
	id, err := s.whitelist.Add(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id
	return entry, nil
}

func (s *UserService) RemoveFromWhitelist(ctx context.Context, identity *auth.Identity, entryID string) error {
	if err := s.requireAdmin(identity); err != nil {
		return err
	}
	return s.whitelist.Remove(ctx, entryID)
}

func (s *UserService) Whitelist(ctx context.Context, identity *auth.Identity) ([]domain.WhitelistEntry, error) {
	if err := s.requireAdmin(identity); err != nil {
		return nil, err
	}
	return s.whitelist.List(ctx)
}
