package domain

import (
	"errors"
	"time"

	"github.com/gezi-blog/backend/internal/access"
)

var ErrPostNotFound = errors.New("post not found")

type GpsLocation struct {
	Latitude  float64 `firestore:"latitude" json:"latitude"`
	Longitude float64 `firestore:"longitude" json:"longitude"`
	Accuracy  float64 `firestore:"accuracy,omitempty" json:"accuracy,omitempty"`
}

// Post is a content item. Author fields are a snapshot taken at creation
// time and never re-synced when the author's profile changes.
type Post struct {
	ID             string            `firestore:"-" json:"id"`
	Title          string            `firestore:"title" json:"title"`
	Content        string            `firestore:"content" json:"content"`
	Images         []string          `firestore:"images" json:"images"`
	Location       *GpsLocation      `firestore:"location,omitempty" json:"location,omitempty"`
	CreatedAt      time.Time         `firestore:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time         `firestore:"updatedAt" json:"updatedAt"`
	CreatedBy      string            `firestore:"createdBy" json:"createdBy"`
	CreatedByEmail string            `firestore:"createdByEmail" json:"createdByEmail"`
	CreatedByName  string            `firestore:"createdByName" json:"createdByName"`
	Visibility     access.Visibility `firestore:"visibility" json:"visibility"`
	AllowedUsers   []string          `firestore:"allowedUsers" json:"allowedUsers"`
	LikesCount     int               `firestore:"likesCount" json:"likesCount"`
	LikedBy        []string          `firestore:"likedBy" json:"likedBy"`
}

// AccessView projects the post onto the evaluator's input type.
func (p *Post) AccessView() access.Post {
	return access.Post{
		Visibility:   p.Visibility,
		AllowedUsers: p.AllowedUsers,
		LikedBy:      p.LikedBy,
	}
}

// PostPatch carries a partial update; nil fields are left untouched.
type PostPatch struct {
	Title        *string            `json:"title"`
	Content      *string            `json:"content"`
	Images       *[]string          `json:"images"`
	Location     *GpsLocation       `json:"location"`
	Visibility   *access.Visibility `json:"visibility"`
	AllowedUsers *[]string          `json:"allowedUsers"`
}

func (p *PostPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Images == nil &&
		p.Location == nil && p.Visibility == nil && p.AllowedUsers == nil
}

// ApplyLikeToggle flips uid's membership in likedBy and returns the new set
// plus whether the uid is now a liker. likesCount must always be written as
// the length of the returned slice, which keeps the pair consistent.
func ApplyLikeToggle(likedBy []string, uid string) ([]string, bool) {
	out := make([]string, 0, len(likedBy)+1)
	found := false
	for _, id := range likedBy {
		if id == uid {
			found = true
			continue
		}
		out = append(out, id)
	}
	if found {
		return out, false
	}
	return append(out, uid), true
}

// LikeResult is the outcome of a toggle, mirrored back to the client.
type LikeResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}
