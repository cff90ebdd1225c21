package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gezi-blog/backend/internal/access"
	"github.com/gezi-blog/backend/internal/auth"
	"github.com/gezi-blog/backend/internal/users/domain"
)

type fakeUserStore struct {
	users map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (f *fakeUserStore) Get(_ context.Context, uid string) (*domain.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	cp := *user
	f.users[user.UID] = &cp
	return nil
}

func (f *fakeUserStore) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) UpdateRole(_ context.Context, uid string, role access.Role) error {
	u, ok := f.users[uid]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserStore) Approve(_ context.Context, uid string, canEdit bool, at time.Time, by string) error {
	u, ok := f.users[uid]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = access.RoleAllowed
	u.CanEdit = canEdit
	u.ApprovedAt = &at
	u.ApprovedBy = by
	return nil
}

func (f *fakeUserStore) Revoke(_ context.Context, uid string) error {
	u, ok := f.users[uid]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = access.RolePublic
	u.CanEdit = false
	u.ApprovedAt = nil
	u.ApprovedBy = ""
	return nil
}

func (f *fakeUserStore) SetCanEdit(_ context.Context, uid string, canEdit bool) error {
	u, ok := f.users[uid]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.CanEdit = canEdit
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, uid string) error {
	if _, ok := f.users[uid]; !ok {
		return domain.ErrUserNotFound
	}
	delete(f.users, uid)
	return nil
}

type fakeWhitelistStore struct {
	entries map[string]*domain.WhitelistEntry
	nextID  int
}

func newFakeWhitelistStore() *fakeWhitelistStore {
	return &fakeWhitelistStore{entries: make(map[string]*domain.WhitelistEntry)}
}

func (f *fakeWhitelistStore) FindByEmail(_ context.Context, email string) (*domain.WhitelistEntry, error) {
	for _, e := range f.entries {
		if e.Email == email {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrWhitelistEntryNotFound
}

func (f *fakeWhitelistStore) Add(_ context.Context, entry *domain.WhitelistEntry) (string, error) {
	f.nextID++
	id := string(rune('a' + f.nextID))
	cp := *entry
	cp.ID = id
	f.entries[id] = &cp
	return id, nil
}

func (f *fakeWhitelistStore) Remove(_ context.Context, id string) error {
	if _, ok := f.entries[id]; !ok {
		return domain.ErrWhitelistEntryNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeWhitelistStore) List(_ context.Context) ([]domain.WhitelistEntry, error) {
	out := make([]domain.WhitelistEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, *e)
	}
	return out, nil
}

type fakeAccounts struct {
	deleted []string
	err     error
}

func (f *fakeAccounts) DeleteAccount(_ context.Context, uid string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, uid)
	return nil
}

func newTestService() (*UserService, *fakeUserStore, *fakeWhitelistStore, *fakeAccounts) {
	eval := access.NewEvaluator([]string{"admin@x.com"})
	users := newFakeUserStore()
	whitelist := newFakeWhitelistStore()
	accounts := &fakeAccounts{}
	svc := NewUserService(eval, users, whitelist, accounts)
	svc.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return svc, users, whitelist, accounts
}

var (
	adminID  = &auth.Identity{UID: "admin-1", Email: "admin@x.com", DisplayName: "Admin"}
	memberID = &auth.Identity{UID: "user-1", Email: "user@x.com", DisplayName: "User"}
)

func TestSyncFirstLoginDefaultsToPublic(t *testing.T) {
	svc, users, _, _ := newTestService()

	u, err := svc.Sync(context.Background(), memberID)
	require.NoError(t, err)

	assert.Equal(t, access.RolePublic, u.Role)
	assert.False(t, u.CanEdit)
	assert.Equal(t, "user@x.com", u.Email)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Contains(t, users.users, "user-1")
}

func TestSyncFirstLoginAdminEmail(t *testing.T) {
	svc, _, _, _ := newTestService()

	u, err := svc.Sync(context.Background(), adminID)
	require.NoError(t, err)

	assert.Equal(t, access.RoleAdmin, u.Role)
	assert.True(t, u.CanEdit)
}

func TestSyncFirstLoginUsesWhitelist(t *testing.T) {
	svc, _, whitelist, _ := newTestService()
	_, err := whitelist.Add(context.Background(), &domain.WhitelistEntry{
		Email:   "user@x.com",
		Role:    access.RoleAllowed,
		CanEdit: true,
	})
	require.NoError(t, err)

	u, err := svc.Sync(context.Background(), memberID)
	require.NoError(t, err)

	assert.Equal(t, access.RoleAllowed, u.Role)
	assert.True(t, u.CanEdit)

	// The whitelist entry is consumed but not removed.
	entries, err := svc.Whitelist(context.Background(), adminID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSyncUpgradesRoleOnLogin(t *testing.T) {
	svc, users, _, _ := newTestService()
	users.users["admin-1"] = &domain.User{
		UID: "admin-1", Email: "admin@x.com", Role: access.RolePublic,
	}

	u, err := svc.Sync(context.Background(), adminID)
	require.NoError(t, err)

	assert.Equal(t, access.RoleAdmin, u.Role)
	assert.Equal(t, access.RoleAdmin, users.users["admin-1"].Role, "upgrade must be persisted")
}

func TestSyncDemotesStaleAdmin(t *testing.T) {
	svc, users, _, _ := newTestService()
	users.users["user-1"] = &domain.User{
		UID: "user-1", Email: "user@x.com", Role: access.RoleAdmin,
	}

	u, err := svc.Sync(context.Background(), memberID)
	require.NoError(t, err)

	assert.Equal(t, access.RolePublic, u.Role)
	assert.Equal(t, access.RolePublic, users.users["user-1"].Role)
}

func TestSyncKeepsAllowedRole(t *testing.T) {
	svc, users, _, _ := newTestService()
	users.users["user-1"] = &domain.User{
		UID: "user-1", Email: "user@x.com", Role: access.RoleAllowed, CanEdit: true,
	}

	u, err := svc.Sync(context.Background(), memberID)
	require.NoError(t, err)

	assert.Equal(t, access.RoleAllowed, u.Role)
	assert.True(t, u.CanEdit)
}

func TestApproveRequiresAdmin(t *testing.T) {
	svc, users, _, _ := newTestService()
	users.users["user-1"] = &domain.User{UID: "user-1", Email: "user@x.com", Role: access.RolePublic}

	err := svc.Approve(context.Background(), memberID, "user-1", true)
	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.Equal(t, access.RolePublic, users.users["user-1"].Role, "no partial effect on forbidden")
}

func TestApproveSetsAuditFields(t *testing.T) {
	svc, users, _, _ := newTestService()
	users.users["user-1"] = &domain.User{UID: "user-1", Email: "user@x.com", Role: access.RolePublic}

	err := svc.Approve(context.Background(), adminID, "user-1", true)
	require.NoError(t, err)

	u := users.users["user-1"]
	assert.Equal(t, access.RoleAllowed, u.Role)
	assert.True(t, u.CanEdit)
	require.NotNil(t, u.ApprovedAt)
	assert.Equal(t, "admin@x.com", u.ApprovedBy)
}

func TestRevokeResetsUser(t *testing.T) {
	svc, users, _, _ := newTestService()
	at := time.Now()
	users.users["user-1"] = &domain.User{
		UID: "user-1", Email: "user@x.com", Role: access.RoleAllowed,
		CanEdit: true, ApprovedAt: &at, ApprovedBy: "admin@x.com",
	}

	err := svc.Revoke(context.Background(), adminID, "user-1")
	require.NoError(t, err)

	u := users.users["user-1"]
	assert.Equal(t, access.RolePublic, u.Role)
	assert.False(t, u.CanEdit)
	assert.Nil(t, u.ApprovedAt)
	assert.Empty(t, u.ApprovedBy)
}

func TestApproveMissingUser(t *testing.T) {
	svc, _, _, _ := newTestService()
	err := svc.Approve(context.Background(), adminID, "nope", false)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSetEditPermission(t *testing.T) {
	svc, users, _, _ := newTestService()
	users.users["user-1"] = &domain.User{UID: "user-1", Email: "user@x.com", Role: access.RolePublic}

	require.NoError(t, svc.SetEditPermission(context.Background(), adminID, "user-1", true))
	assert.True(t, users.users["user-1"].CanEdit)

	require.NoError(t, svc.SetEditPermission(context.Background(), adminID, "user-1", false))
	assert.False(t, users.users["user-1"].CanEdit)
}

func TestDeleteUserBestEffortAccountCleanup(t *testing.T) {
	svc, users, _, accounts := newTestService()
	users.users["user-1"] = &domain.User{UID: "user-1", Email: "user@x.com"}
	accounts.err = errors.New("no such account")

	err := svc.Delete(context.Background(), adminID, "user-1")
	assert.NoError(t, err, "auth account cleanup failure must not fail the operation")
	assert.NotContains(t, users.users, "user-1")
}

func TestDeleteUserNotFound(t *testing.T) {
	svc, _, _, accounts := newTestService()

	err := svc.Delete(context.Background(), adminID, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Empty(t, accounts.deleted, "account cleanup must not run when the record delete failed")
}

func TestAddToWhitelistConflict(t *testing.T) {
	svc, _, _, _ := newTestService()

	entry, err := svc.AddToWhitelist(context.Background(), adminID, "New@X.com", "", true)
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", entry.Email)
	assert.Equal(t, access.RoleAllowed, entry.Role)

	_, err = svc.AddToWhitelist(context.Background(), adminID, "new@x.com", "", false)
	assert.ErrorIs(t, err, domain.ErrWhitelistConflict)

	entries, err := svc.Whitelist(context.Background(), adminID)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "conflicting add must not create a duplicate")
}

func TestAddToWhitelistInvalidEmail(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.AddToWhitelist(context.Background(), adminID, "not-an-email", "", false)
	assert.Error(t, err)
}

func TestWhitelistAdminGate(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.AddToWhitelist(context.Background(), memberID, "x@x.com", "", false)
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = svc.Whitelist(context.Background(), nil)
	assert.ErrorIs(t, err, access.ErrForbidden)

	err = svc.RemoveFromWhitelist(context.Background(), memberID, "a")
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestListReportsEffectiveRoles(t *testing.T) {
	svc, users, _, _ := newTestService()
	users.users["stale"] = &domain.User{UID: "stale", Email: "gone@x.com", Role: access.RoleAdmin}

	list, err := svc.List(context.Background(), adminID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, access.RolePublic, list[0].Role)
}
