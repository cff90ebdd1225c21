package auth

import "github.com/gin-gonic/gin"

const ctxIdentity = "auth_identity"

// SetIdentity stores the verified identity in the Gin context.
// Set by the auth middleware.
func SetIdentity(c *gin.Context, id *Identity) {
	c.Set(ctxIdentity, id)
}

// IdentityFrom extracts the verified identity from the Gin context.
// Returns nil for anonymous requests (optional-auth routes).
func IdentityFrom(c *gin.Context) *Identity {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return nil
	}
	id, ok := v.(*Identity)
	if !ok {
		return nil
	}
	return id
}
