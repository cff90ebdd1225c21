package domain

import (
	"errors"
	"time"

	"github.com/gezi-blog/backend/internal/access"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrWhitelistConflict      = errors.New("whitelist entry already exists")
	ErrWhitelistEntryNotFound = errors.New("whitelist entry not found")
)

// User is the stored account record. The document id is the Firebase UID.
// The persisted role is advisory: every access check re-derives the
// effective role from the admin email set.
type User struct {
	UID         string      `firestore:"-" json:"uid"`
	Email       string      `firestore:"email" json:"email"`
	DisplayName string      `firestore:"displayName" json:"displayName,omitempty"`
	PhotoURL    string      `firestore:"photoURL" json:"photoURL,omitempty"`
	Role        access.Role `firestore:"role" json:"role"`
	CanEdit     bool        `firestore:"canEdit" json:"canEdit"`
	CreatedAt   time.Time   `firestore:"createdAt" json:"createdAt"`
	ApprovedAt  *time.Time  `firestore:"approvedAt" json:"approvedAt,omitempty"`
	ApprovedBy  string      `firestore:"approvedBy" json:"approvedBy,omitempty"`
}

// Viewer converts the stored user into the evaluator's input, with the
// effective role already merged against the admin set.
func (u *User) Viewer(e *access.Evaluator) *access.Viewer {
	if u == nil {
		return nil
	}
	return &access.Viewer{
		Email:   u.Email,
		Role:    e.EffectiveRole(u.Email, u.Role),
		CanEdit: u.CanEdit,
	}
}

// WhitelistEntry pre-approves an email before its owner ever logs in. It is
// consumed (copied into the new User) at first login but never deleted
// automatically; removal is an explicit admin action.
type WhitelistEntry struct {
	ID        string      `firestore:"-" json:"id"`
	Email     string      `firestore:"email" json:"email"`
	Role      access.Role `firestore:"role" json:"role"`
	CanEdit   bool        `firestore:"canEdit" json:"canEdit"`
	CreatedAt time.Time   `firestore:"createdAt" json:"createdAt"`
}
