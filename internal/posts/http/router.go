package http

import "github.com/gin-gonic/gin"

// RegisterPublic wires the read endpoints; they run behind optional auth so
// anonymous visitors can read public posts.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/posts", h.Feed)
	rg.GET("/posts/:id", h.GetPost)
}

// Register wires the authenticated mutation endpoints.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/posts", h.CreatePost)
	rg.PATCH("/posts/:id", h.UpdatePost)
	rg.DELETE("/posts/:id", h.DeletePost)
	rg.POST("/posts/:id/like", h.ToggleLike)
}
