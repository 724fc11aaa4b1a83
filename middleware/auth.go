package middleware

import (
	"net/http"
	"strings"

	"servicehub/models"
	"servicehub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const actorKey = "actor"

var knownRoles = map[models.Role]bool{
	models.RoleCustomer:    true,
	models.RoleClientAdmin: true,
	models.RoleProvider:    true,
	models.RoleSuperAdmin:  true,
}

// JWTAuthMiddleware resolves the bearer token into the calling Actor.
// The system role is reserved for in-process callers and is never accepted from a token.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		id, err := utils.IdentityFromToken(tokenString)
		if err != nil {
			zap.L().Debug("Rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		role := models.Role(id.Role)
		if !knownRoles[role] {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown role in token"})
			return
		}
		if role == models.RoleClientAdmin && id.OrganizationID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Client admin token carries no organization"})
			return
		}

		c.Set(actorKey, models.Actor{ID: id.Subject, Role: role, OrganizationID: id.OrganizationID})
		c.Next()
	}
}

// RequireRoles admits only the listed roles. It must run after JWTAuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok || !allowed[actor.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}
		c.Next()
	}
}

// ActorFromContext returns the Actor set by JWTAuthMiddleware.
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// SetActor places an already resolved Actor on the context.
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
}
