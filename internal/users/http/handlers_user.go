package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gezi-blog/backend/internal/access"
	"github.com/gezi-blog/backend/internal/auth"
	"github.com/gezi-blog/backend/internal/users/domain"
)

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, access.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, domain.ErrWhitelistEntryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "whitelist entry not found"})
	case errors.Is(err, domain.ErrWhitelistConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "email already whitelisted"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// SyncUser runs the role bootstrap for the authenticated caller. Called by
// the client after every login.
func (h *Handler) SyncUser(c *gin.Context) {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.userService.Sync(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), auth.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) ApproveUser(c *gin.Context) {
	var req struct {
		CanEdit bool `json:"canEdit"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	err := h.userService.Approve(c.Request.Context(), auth.IdentityFrom(c), c.Param("uid"), req.CanEdit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) RevokeUser(c *gin.Context) {
	err := h.userService.Revoke(c.Request.Context(), auth.IdentityFrom(c), c.Param("uid"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) SetEditPermission(c *gin.Context) {
	var req struct {
		CanEdit *bool `json:"canEdit" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "canEdit is required"})
		return
	}

	err := h.userService.SetEditPermission(c.Request.Context(), auth.IdentityFrom(c), c.Param("uid"), *req.CanEdit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	err := h.userService.Delete(c.Request.Context(), auth.IdentityFrom(c), c.Param("uid"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) GetWhitelist(c *gin.Context) {
	entries, err := h.userService.Whitelist(c.Request.Context(), auth.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"whitelist": entries})
}

func (h *Handler) AddToWhitelist(c *gin.Context) {
	var req struct {
		Email   string      `json:"email" binding:"required"`
		Role    access.Role `json:"role"`
		CanEdit bool        `json:"canEdit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	entry, err := h.userService.AddToWhitelist(c.Request.Context(), auth.IdentityFrom(c), req.Email, req.Role, req.CanEdit)
	if err != nil {
		if errors.Is(err, domain.ErrWhitelistConflict) || errors.Is(err, access.ErrForbidden) {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

func (h *Handler) RemoveFromWhitelist(c *gin.Context) {
	err := h.userService.RemoveFromWhitelist(c.Request.Context(), auth.IdentityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
