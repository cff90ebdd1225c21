package site

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gezi-blog/backend/internal/access"
	"github.com/gezi-blog/backend/internal/auth"
)

type Handler struct {
	service *Service
}

// RegisterPublic mounts the mode read endpoint; anyone may call it so the
// client knows whether to show a login wall before authenticating.
func RegisterPublic(rg *gin.RouterGroup, service *Service) {
	h := &Handler{service: service}
	rg.GET("/site/mode", h.getMode)
}

// Register mounts the admin-only mode write endpoint on an authed group.
func Register(rg *gin.RouterGroup, service *Service) {
	h := &Handler{service: service}
	rg.PUT("/site/mode", h.setMode)
}

func (h *Handler) getMode(c *gin.Context) {
	settings, err := h.service.Mode(c.Request.Context())
	if err != nil {
		log.Printf("Failed to read site mode: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

type setModeReq struct {
	Mode string `json:"mode" binding:"required"`
}

func (h *Handler) setMode(c *gin.Context) {
	var req setModeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode is required"})
		return
	}

	settings, err := h.service.SetMode(c.Request.Context(), auth.IdentityFrom(c), Mode(req.Mode))
	if err != nil {
		switch {
		case errors.Is(err, access.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		case errors.Is(err, ErrInvalidMode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be open or restricted"})
		default:
			log.Printf("Failed to set site mode: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, settings)
}
