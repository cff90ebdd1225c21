package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyLikeToggleAdds(t *testing.T) {
	likedBy, liked := ApplyLikeToggle(nil, "u1")
	assert.True(t, liked)
	assert.Equal(t, []string{"u1"}, likedBy)
}

func TestApplyLikeToggleRemoves(t *testing.T) {
	likedBy, liked := ApplyLikeToggle([]string{"u1", "u2"}, "u1")
	assert.False(t, liked)
	assert.Equal(t, []string{"u2"}, likedBy)
}

func TestApplyLikeToggleRoundTrip(t *testing.T) {
	likedBy := []string{}

	likedBy, liked := ApplyLikeToggle(likedBy, "u1")
	assert.True(t, liked)
	assert.Len(t, likedBy, 1)

	likedBy, liked = ApplyLikeToggle(likedBy, "u1")
	assert.False(t, liked)
	assert.Empty(t, likedBy)
}

func TestApplyLikeToggleDropsDuplicates(t *testing.T) {
	// A corrupted doc with a duplicated uid collapses on the next toggle.
	likedBy, liked := ApplyLikeToggle([]string{"u1", "u1", "u2"}, "u1")
	assert.False(t, liked)
	assert.Equal(t, []string{"u2"}, likedBy)
}
