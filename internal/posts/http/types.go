package http

import (
	"github.com/gezi-blog/backend/internal/access"
	"github.com/gezi-blog/backend/internal/posts/domain"
	"github.com/gezi-blog/backend/internal/posts/service"
)

type Handler struct {
	postService *service.PostService
}

func New(postService *service.PostService) *Handler {
	return &Handler{
		postService: postService,
	}
}

type createReq struct {
	Title        string              `json:"title" binding:"required"`
	Content      string              `json:"content" binding:"required"`
	Images       []string            `json:"images"`
	Location     *domain.GpsLocation `json:"location"`
	Visibility   access.Visibility   `json:"visibility"`
	AllowedUsers []string            `json:"allowedUsers"`
}
