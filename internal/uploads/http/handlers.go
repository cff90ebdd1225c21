package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gezi-blog/backend/internal/access"
	"github.com/gezi-blog/backend/internal/auth"
	"github.com/gezi-blog/backend/internal/uploads/service"
)

type Handler struct {
	uploadService *service.UploadService
}

func NewHandler(uploadService *service.UploadService) *Handler {
	return &Handler{uploadService: uploadService}
}

// Register mounts upload routes. The group must already require auth; the
// caller attaches rate limiting.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/uploads/signed-url", h.signURL)
}

type signURLRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required"`
}

func (h *Handler) signURL(c *gin.Context) {
	identity := auth.IdentityFrom(c)

	var req signURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileName, contentType and fileSize are required"})
		return
	}

	signed, err := h.uploadService.SignUpload(c.Request.Context(), identity, req.FileName, req.ContentType, req.FileSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, signed)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, access.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrInvalidUpload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Upload handler error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
