package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/users/sync", h.SyncUser)
	rg.GET("/users", h.ListUsers)
	rg.POST("/users/:uid/approve", h.ApproveUser)
	rg.POST("/users/:uid/revoke", h.RevokeUser)
	rg.PUT("/users/:uid/edit-permission", h.SetEditPermission)
	rg.DELETE("/users/:uid", h.DeleteUser)

	rg.GET("/whitelist", h.GetWhitelist)
	rg.POST("/whitelist", h.AddToWhitelist)
	rg.DELETE("/whitelist/:id", h.RemoveFromWhitelist)
}
