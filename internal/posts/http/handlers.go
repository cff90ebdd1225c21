package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gezi-blog/backend/internal/access"
	"github.com/gezi-blog/backend/internal/auth"
	"github.com/gezi-blog/backend/internal/posts/domain"
	"github.com/gezi-blog/backend/internal/posts/service"
)

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, access.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domain.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) Feed(c *gin.Context) {
	pageSize := 0
	if raw := c.Query("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pageSize"})
			return
		}
		pageSize = n
	}

	page, err := h.postService.Feed(c.Request.Context(), auth.IdentityFrom(c), c.Query("cursor"), pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetPost(c *gin.Context) {
	post, liked, err := h.postService.Get(c.Request.Context(), auth.IdentityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post, "liked": liked})
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.postService.Create(c.Request.Context(), auth.IdentityFrom(c), service.CreateInput{
		Title:        req.Title,
		Content:      req.Content,
		Images:       req.Images,
		Location:     req.Location,
		Visibility:   req.Visibility,
		AllowedUsers: req.AllowedUsers,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (h *Handler) UpdatePost(c *gin.Context) {
	var patch domain.PostPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.postService.Update(c.Request.Context(), auth.IdentityFrom(c), c.Param("id"), patch); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.postService.Delete(c.Request.Context(), auth.IdentityFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) ToggleLike(c *gin.Context) {
	result, err := h.postService.ToggleLike(c.Request.Context(), auth.IdentityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
