// Package access holds the permission decision logic. Everything here is
// pure: no I/O, no globals. Callers load whatever state the evaluator
// needs and hand it over as plain values.
package access

import "strings"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAllowed Role = "allowed"
	RolePublic  Role = "public"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Viewer is the acting principal as the evaluator sees it. A nil *Viewer
// means no identity at all (anonymous request).
type Viewer struct {
	Email   string
	Role    Role
	CanEdit bool
}

// Post carries the fields of a post that permission decisions depend on.
type Post struct {
	Visibility   Visibility
	AllowedUsers []string
	LikedBy      []string
}

// Evaluator answers permission questions against a fixed admin email set.
// The set is injected at construction; admin membership is evaluated on
// every call so a config change takes effect immediately.
type Evaluator struct {
	adminEmails map[string]struct{}
}

func NewEvaluator(adminEmails []string) *Evaluator {
	set := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return &Evaluator{adminEmails: set}
}

// ResolveRole returns the default role for an email: admin if it is in the
// admin set, public otherwise. It never returns RoleAllowed; that role only
// comes from a stored user or whitelist record, merged by the caller.
func (e *Evaluator) ResolveRole(email string) Role {
	if email == "" {
		return RolePublic
	}
	if _, ok := e.adminEmails[strings.ToLower(email)]; ok {
		return RoleAdmin
	}
	return RolePublic
}

func (e *Evaluator) IsAdmin(email string) bool {
	return e.ResolveRole(email) == RoleAdmin
}

// EffectiveRole merges the stored role with the admin set. Admin is always
// re-derived from the set: an email added to the set is admin regardless of
// what was persisted, and a stale persisted admin whose email left the set
// falls back to public.
func (e *Evaluator) EffectiveRole(email string, stored Role) Role {
	if e.IsAdmin(email) {
		return RoleAdmin
	}
	if stored == RoleAdmin {
		return RolePublic
	}
	return stored
}

// CanViewPost reports whether the viewer may see the post.
// Public posts are visible to everyone, including anonymous viewers.
// Private posts are visible to admins and to emails on the post's own
// allow-list; an allowed role alone is not sufficient.
func (e *Evaluator) CanViewPost(p Post, v *Viewer) bool {
	if p.Visibility == VisibilityPublic {
		return true
	}
	if v == nil {
		return false
	}
	if v.Role == RoleAdmin {
		return true
	}
	for _, email := range p.AllowedUsers {
		if strings.EqualFold(email, v.Email) {
			return true
		}
	}
	return false
}

// CanWritePost reports whether the viewer may create or edit posts.
func (e *Evaluator) CanWritePost(v *Viewer) bool {
	if v == nil {
		return false
	}
	if v.Role == RoleAdmin {
		return true
	}
	return v.Role == RoleAllowed && v.CanEdit
}

// CanDeletePost reports whether the viewer may delete posts. Only admins
// may delete; authorship and the canEdit flag are irrelevant.
func (e *Evaluator) CanDeletePost(v *Viewer) bool {
	return v != nil && v.Role == RoleAdmin
}

func (e *Evaluator) CanManageUsers(v *Viewer) bool {
	return v != nil && v.Role == RoleAdmin
}

// HasLiked reports whether uid is in the post's likedBy set.
func (e *Evaluator) HasLiked(p Post, uid string) bool {
	if uid == "" {
		return false
	}
	for _, id := range p.LikedBy {
		if id == uid {
			return true
		}
	}
	return false
}
