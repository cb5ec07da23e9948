package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mie-portal/portal-api/internal/models"
)

func newGuardedRouter(claims *models.JWTClaims, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	})
	r.GET("/records/:id", guard, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func performGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRBACSelfMatchesAccountID(t *testing.T) {
	claims := &models.JWTClaims{AccountID: "2020-00001", Role: models.RoleStudent}
	r := newGuardedRouter(claims, RBAC(string(models.RoleAdmin), "SELF"))

	assert.Equal(t, http.StatusOK, performGet(r, "/records/2020-00001").Code)
	assert.Equal(t, http.StatusForbidden, performGet(r, "/records/2020-00002").Code)
}

func TestRBACRejectsMissingClaims(t *testing.T) {
	r := newGuardedRouter(nil, RBAC(string(models.RoleAdmin)))
	assert.Equal(t, http.StatusUnauthorized, performGet(r, "/records/2020-00001").Code)
}

func TestSelfOrRolesResolvesRecordOwnership(t *testing.T) {
	owner := func(ctx context.Context, ref string) (string, error) {
		if ref == "rec-7" {
			return "2020-00001", nil
		}
		return "2020-00099", nil
	}
	claims := &models.JWTClaims{AccountID: "2020-00001", Role: models.RoleTeacher}
	r := newGuardedRouter(claims, SelfOrRoles(owner, models.RoleAdmin))

	assert.Equal(t, http.StatusOK, performGet(r, "/records/rec-7").Code)
	assert.Equal(t, http.StatusForbidden, performGet(r, "/records/rec-8").Code)
}

func TestSelfOrRolesRoleBypassesResolver(t *testing.T) {
	owner := func(ctx context.Context, ref string) (string, error) {
		return "", errors.New("resolver must not run")
	}
	claims := &models.JWTClaims{AccountID: "2020-00050", Role: models.RoleAdmin}
	r := newGuardedRouter(claims, SelfOrRoles(owner, models.RoleAdmin))

	assert.Equal(t, http.StatusOK, performGet(r, "/records/rec-7").Code)
}

func TestSelfOrRolesResolverErrorDenies(t *testing.T) {
	owner := func(ctx context.Context, ref string) (string, error) {
		return "", errors.New("record not found")
	}
	claims := &models.JWTClaims{AccountID: "2020-00001", Role: models.RoleTeacher}
	r := newGuardedRouter(claims, SelfOrRoles(owner, models.RoleAdmin))

	assert.Equal(t, http.StatusForbidden, performGet(r, "/records/rec-7").Code)
}

func TestSelfOrRolesRejectsMissingClaims(t *testing.T) {
	r := newGuardedRouter(nil, SelfOrRoles(nil, models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, performGet(r, "/records/rec-7").Code)
}
