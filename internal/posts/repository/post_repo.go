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
	"github.com/gezi-blog/backend/internal/posts/domain"
)

const postsCollection = "posts"

type PostRepository struct {
	client *firestore.Client
}

func NewPostRepository(client *firestore.Client) *PostRepository {
	return &PostRepository{client: client}
}

func (r *PostRepository) col() *firestore.CollectionRef {
	return r.client.Collection(postsCollection)
}

func (r *PostRepository) Get(ctx context.Context, id string) (*domain.Post, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return decodePost(snap)
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (string, error) {
	ref, _, err := r.col().Add(ctx, post)
	if err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	return ref.ID, nil
}

// Update merges only the fields present in the patch and always refreshes
// updatedAt.
func (r *PostRepository) Update(ctx context.Context, id string, patch domain.PostPatch) error {
	updates := []firestore.Update{
		{Path: "updatedAt", Value: time.Now().UTC()},
	}
	if patch.Title != nil {
		updates = append(updates, firestore.Update{Path: "title", Value: *patch.Title})
	}
	if patch.Content != nil {
		updates = append(updates, firestore.Update{Path: "content", Value: *patch.Content})
	}
	if patch.Images != nil {
		updates = append(updates, firestore.Update{Path: "images", Value: *patch.Images})
	}
	if patch.Location != nil {
		updates = append(updates, firestore.Update{Path: "location", Value: patch.Location})
	}
	if patch.Visibility != nil {
		updates = append(updates, firestore.Update{Path: "visibility", Value: *patch.Visibility})
	}
	if patch.AllowedUsers != nil {
		updates = append(updates, firestore.Update{Path: "allowedUsers", Value: *patch.AllowedUsers})
	}

	_, err := r.col().Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return domain.ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	ref := r.col().Doc(id)
	if _, err := ref.Get(ctx); status.Code(err) == codes.NotFound {
		return domain.ErrPostNotFound
	} else if err != nil {
		return fmt.Errorf("get post: %w", err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// ToggleLike flips uid's like inside a transaction so likedBy and
// likesCount can never drift apart under concurrent toggles.
func (r *PostRepository) ToggleLike(ctx context.Context, id, uid string) (domain.LikeResult, error) {
	ref := r.col().Doc(id)
	var result domain.LikeResult

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return domain.ErrPostNotFound
		}
		if err != nil {
			return err
		}

		var post domain.Post
		if err := snap.DataTo(&post); err != nil {
			return fmt.Errorf("decode post %s: %w", id, err)
		}

		likedBy, liked := domain.ApplyLikeToggle(post.LikedBy, uid)
		result = domain.LikeResult{Liked: liked, Count: len(likedBy)}

		return tx.Update(ref, []firestore.Update{
			{Path: "likedBy", Value: likedBy},
			{Path: "likesCount", Value: len(likedBy)},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return domain.LikeResult{}, err
	}
	return result, nil
}

// ListAll returns a page of all posts, newest first. A zero cursor means
// the first page.
func (r *PostRepository) ListAll(ctx context.Context, cursor time.Time, limit int) ([]domain.Post, error) {
	return r.listPage(ctx, r.col().Query, cursor, limit)
}

func (r *PostRepository) ListPublic(ctx context.Context, cursor time.Time, limit int) ([]domain.Post, error) {
	q := r.col().Where("visibility", "==", string(access.VisibilityPublic))
	return r.listPage(ctx, q, cursor, limit)
}

// ListSharedWith returns private posts whose allow-list contains the email.
// Emails are stored lower-cased, callers pass them the same way.
func (r *PostRepository) ListSharedWith(ctx context.Context, email string, cursor time.Time, limit int) ([]domain.Post, error) {
	q := r.col().
		Where("visibility", "==", string(access.VisibilityPrivate)).
		Where("allowedUsers", "array-contains", email)
	return r.listPage(ctx, q, cursor, limit)
}

func (r *PostRepository) listPage(ctx context.Context, q firestore.Query, cursor time.Time, limit int) ([]domain.Post, error) {
	q = q.OrderBy("createdAt", firestore.Desc).Limit(limit)
	if !cursor.IsZero() {
		q = q.StartAfter(cursor)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	out := make([]domain.Post, 0, limit)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		post, err := decodePost(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *post)
	}
	return out, nil
}

// ReconcileLikeCounts scans all posts and repairs any document whose
// likesCount drifted from len(likedBy), e.g. one written before the
// transactional toggle existed. Returns the number of repaired posts.
func (r *PostRepository) ReconcileLikeCounts(ctx context.Context) (int, error) {
	iter := r.col().Documents(ctx)
	defer iter.Stop()

	fixed := 0
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fixed, fmt.Errorf("scan posts: %w", err)
		}

		var post domain.Post
		if err := snap.DataTo(&post); err != nil {
			return fixed, fmt.Errorf("decode post %s: %w", snap.Ref.ID, err)
		}
		if post.LikesCount == len(post.LikedBy) {
			continue
		}

		_, err = snap.Ref.Update(ctx, []firestore.Update{
			{Path: "likesCount", Value: len(post.LikedBy)},
		})
		if err != nil {
			return fixed, fmt.Errorf("repair post %s: %w", snap.Ref.ID, err)
		}
		fixed++
	}
	return fixed, nil
}

func decodePost(snap *firestore.DocumentSnapshot) (*domain.Post, error) {
	var post domain.Post
	if err := snap.DataTo(&post); err != nil {
		return nil, fmt.Errorf("decode post %s: %w", snap.Ref.ID, err)
	}
	post.ID = snap.Ref.ID
	return &post, nil
}
