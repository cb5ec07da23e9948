package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mie-portal/portal-api/internal/models"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
	"github.com/mie-portal/portal-api/pkg/response"
)

// RBAC enforces role-based access control for routes. The SELF marker
// matches the id path parameter against the caller's account ID only;
// routes that also accept role-record identifiers use SelfOrRoles.
func RBAC(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		allowSelf := false
		allowedRoles := make(map[models.AccountRole]struct{})

		for _, a := range allowed {
			if a == "SELF" {
				allowSelf = true
				continue
			}
			allowedRoles[models.AccountRole(a)] = struct{}{}
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.AccountID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts typed roles.
func RequireRoles(roles ...models.AccountRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}

// OwnershipFunc resolves the id path parameter of a route to the account
// that owns the addressed record, accepting whichever identifier forms the
// route supports.
type OwnershipFunc func(ctx context.Context, ref string) (string, error)

// SelfOrRoles admits callers holding one of the listed roles, or the caller
// whose account owns the addressed record. Unlike the plain SELF marker,
// the resolver lets routes address role records by either the account ID or
// the record's own ID.
func SelfOrRoles(owner OwnershipFunc, roles ...models.AccountRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		if targetID := c.Param("id"); targetID != "" && owner != nil {
			ownerAccountID, err := owner(c.Request.Context(), targetID)
			if err == nil && ownerAccountID == claims.AccountID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
