package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gezi-blog/backend/internal/access"
	"github.com/gezi-blog/backend/internal/auth"
	"github.com/gezi-blog/backend/internal/posts/domain"
	usersdomain "github.com/gezi-blog/backend/internal/users/domain"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 50
)

// ErrInvalidInput marks validation failures so handlers can answer 400.
var ErrInvalidInput = errors.New("invalid input")

type PostStore interface {
	Get(ctx context.Context, id string) (*domain.Post, error)
	Create(ctx context.Context, post *domain.Post) (string, error)
	Update(ctx context.Context, id string, patch domain.PostPatch) error
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, id, uid string) (domain.LikeResult, error)
	ListAll(ctx context.Context, cursor time.Time, limit int) ([]domain.Post, error)
	ListPublic(ctx context.Context, cursor time.Time, limit int) ([]domain.Post, error)
	ListSharedWith(ctx context.Context, email string, cursor time.Time, limit int) ([]domain.Post, error)
}

type UserStore interface {
	Get(ctx context.Context, uid string) (*usersdomain.User, error)
}

// FeedCache caches the anonymous first feed page. May be a no-op.
type FeedCache interface {
	GetPublicFirstPage(ctx context.Context, dest interface{}) bool
	SetPublicFirstPage(ctx context.Context, page interface{})
	Invalidate(ctx context.Context)
}

type FeedPage struct {
	Items      []domain.Post `json:"items"`
	NextCursor string        `json:"nextCursor,omitempty"`
	HasMore    bool          `json:"hasMore"`
}

type CreateInput struct {
	Title        string
	Content      string
	Images       []string
	Location     *domain.GpsLocation
	Visibility   access.Visibility
	AllowedUsers []string
}

type PostService struct {
	eval  *access.Evaluator
	posts PostStore
	users UserStore
	cache FeedCache
	now   func() time.Time
}

func NewPostService(eval *access.Evaluator, posts PostStore, users UserStore, cache FeedCache) *PostService {
	return &PostService{
		eval:  eval,
		posts: posts,
		users: users,
		cache: cache,
		now:   time.Now,
	}
}

// viewerFor resolves the acting principal. Anonymous callers get a nil
// viewer; authenticated callers without a stored record fall back to the
// token with the default role, so an admin works before their first sync.
func (s *PostService) viewerFor(ctx context.Context, identity *auth.Identity) (*access.Viewer, error) {
	if identity == nil {
		return nil, nil
	}
	user, err := s.users.Get(ctx, identity.UID)
	if errors.Is(err, usersdomain.ErrUserNotFound) {
		return &access.Viewer{
			Email: identity.Email,
			Role:  s.eval.ResolveRole(identity.Email),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return user.Viewer(s.eval), nil
}

// requireWrite gates create/update. The admin check runs against the
// token's email so a stale or missing user document never locks an admin
// out; everyone else needs a stored record that passes CanWritePost.
func (s *PostService) requireWrite(ctx context.Context, identity *auth.Identity) error {
	if identity == nil {
		return access.ErrForbidden
	}
	if s.eval.IsAdmin(identity.Email) {
		return nil
	}
	user, err := s.users.Get(ctx, identity.UID)
	if errors.Is(err, usersdomain.ErrUserNotFound) {
		return access.ErrForbidden
	}
	if err != nil {
		return err
	}
	if !s.eval.CanWritePost(user.Viewer(s.eval)) {
		return access.ErrForbidden
	}
	return nil
}

func (s *PostService) Create(ctx context.Context, identity *auth.Identity, in CreateInput) (*domain.Post, error) {
	if err := s.requireWrite(ctx, identity); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	visibility := in.Visibility
	if visibility == "" {
		visibility = access.VisibilityPublic
	}
	if visibility != access.VisibilityPublic && visibility != access.VisibilityPrivate {
		return nil, fmt.Errorf("%w: unknown visibility %q", ErrInvalidInput, visibility)
	}

	authorName := identity.DisplayName
	if authorName == "" {
		authorName = identity.Email
	}

	now := s.now().UTC()
	post := &domain.Post{
		Title:          title,
		Content:        content,
		Images:         emptyIfNil(in.Images),
		Location:       in.Location,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      identity.UID,
		CreatedByEmail: identity.Email,
		CreatedByName:  authorName,
		Visibility:     visibility,
		AllowedUsers:   normalizeEmails(in.AllowedUsers),
		LikesCount:     0,
		LikedBy:        []string{},
	}

	id, err := s.posts.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	post.ID = id
	s.invalidateFeed(ctx)
	return post, nil
}

func (s *PostService) Update(ctx context.Context, identity *auth.Identity, id string, patch domain.PostPatch) error {
	if err := s.requireWrite(ctx, identity); err != nil {
		return err
	}
	if patch.Empty() {
		return fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if patch.Visibility != nil &&
		*patch.Visibility != access.VisibilityPublic && *patch.Visibility != access.VisibilityPrivate {
		return fmt.Errorf("%w: unknown visibility %q", ErrInvalidInput, *patch.Visibility)
	}
	if patch.AllowedUsers != nil {
		normalized := normalizeEmails(*patch.AllowedUsers)
		patch.AllowedUsers = &normalized
	}

	if err := s.posts.Update(ctx, id, patch); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

// Delete is admin-only, checked against the token's email. Stored roles
// and authorship play no part.
func (s *PostService) Delete(ctx context.Context, identity *auth.Identity, id string) error {
	if identity == nil || !s.eval.IsAdmin(identity.Email) {
		return access.ErrForbidden
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

// ToggleLike flips the caller's like. Any verified identity may like; no
// role gate.
func (s *PostService) ToggleLike(ctx context.Context, identity *auth.Identity, id string) (domain.LikeResult, error) {
	if identity == nil {
		return domain.LikeResult{}, access.ErrForbidden
	}
	result, err := s.posts.ToggleLike(ctx, id, identity.UID)
	if err != nil {
		return domain.LikeResult{}, err
	}
	s.invalidateFeed(ctx)
	return result, nil
}

// Get loads a post and applies the view rule. The second return value is
// whether the caller has liked the post.
func (s *PostService) Get(ctx context.Context, identity *auth.Identity, id string) (*domain.Post, bool, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	viewer, err := s.viewerFor(ctx, identity)
	if err != nil {
		return nil, false, err
	}
	if !s.eval.CanViewPost(post.AccessView(), viewer) {
		return nil, false, access.ErrForbidden
	}

	liked := false
	if identity != nil {
		liked = s.eval.HasLiked(post.AccessView(), identity.UID)
	}
	return post, liked, nil
}

// Feed returns one page of the caller's feed, newest first.
//
// Admins see everything in one query. Anonymous callers and users with no
// private shares see public posts only. Other authenticated users get the
// public query merged with the posts privately shared with their email;
// both queries share the cursor, so the merge trims cleanly to a page.
func (s *PostService) Feed(ctx context.Context, identity *auth.Identity, cursor string, pageSize int) (*FeedPage, error) {
	after, err := parseCursor(cursor)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	viewer, err := s.viewerFor(ctx, identity)
	if err != nil {
		return nil, err
	}

	cacheable := viewer == nil && after.IsZero() && pageSize == DefaultPageSize
	if cacheable && s.cache != nil {
		var cached FeedPage
		if s.cache.GetPublicFirstPage(ctx, &cached) {
			return &cached, nil
		}
	}

	var items []domain.Post
	switch {
	case viewer != nil && viewer.Role == access.RoleAdmin:
		items, err = s.posts.ListAll(ctx, after, pageSize+1)
	case viewer == nil:
		items, err = s.posts.ListPublic(ctx, after, pageSize+1)
	default:
		items, err = s.mergedFeed(ctx, viewer.Email, after, pageSize+1)
	}
	if err != nil {
		return nil, err
	}

	page := &FeedPage{HasMore: len(items) > pageSize}
	if page.HasMore {
		items = items[:pageSize]
	}
	page.Items = items
	if page.HasMore && len(items) > 0 {
		page.NextCursor = items[len(items)-1].CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	if cacheable && s.cache != nil {
		s.cache.SetPublicFirstPage(ctx, page)
	}
	return page, nil
}

// mergedFeed combines public posts with posts privately shared with the
// email, ordered by creation time descending.
func (s *PostService) mergedFeed(ctx context.Context, email string, after time.Time, limit int) ([]domain.Post, error) {
	public, err := s.posts.ListPublic(ctx, after, limit)
	if err != nil {
		return nil, err
	}
	shared, err := s.posts.ListSharedWith(ctx, strings.ToLower(email), after, limit)
	if err != nil {
		return nil, err
	}

	merged := append(public, shared...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

func (s *PostService) invalidateFeed(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func parseCursor(cursor string) (time.Time, error) {
	if cursor == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, cursor)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad cursor", ErrInvalidInput)
	}
	return t, nil
}

func normalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
