package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	models "github.com/phillip/frolic-api/models"
	services "github.com/phillip/frolic-api/services"
	utils "github.com/phillip/frolic-api/utils"
)

// Context keys set by AuthMiddleware.
const (
	KeyUserID = "user_id"
	KeyRole   = "role"
	KeyEmail  = "email"
)

// Authenticator turns a bearer token into the account behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*models.User, error)
}

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header that
// belongs to an existing, active account. Identity and role are taken from
// the stored account.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			utils.Abort(c, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			if services.KindOf(err) != services.KindAuth {
				utils.Abort(c, http.StatusInternalServerError, "something went wrong")
				return
			}
			utils.Abort(c, http.StatusUnauthorized, services.MessageOf(err))
			return
		}

		c.Set(KeyUserID, user.ID.Hex())
		c.Set(KeyRole, string(user.Role))
		c.Set(KeyEmail, user.Email)
		c.Next()
	}
}

// RequireRoles lets through only the listed roles. Use after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[models.Role(c.GetString(KeyRole))] {
			utils.Abort(c, http.StatusForbidden, "you do not have access to this resource")
			return
		}
		c.Next()
	}
}
