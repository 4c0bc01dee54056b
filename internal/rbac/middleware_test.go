package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"healthpay-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

func identity(userID, providerID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), userID, providerID, role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func TestRequireAnyRole_SuperAdminBypasses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", identity("u", "", RoleSuperAdmin), RequireAnyRole(RoleAdmin), func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireAnyRole_DeniesUnlistedRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", identity("u", "p1", RoleDoctor), RequireAnyRole(RoleAdmin), func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)
	if w.Code != 403 {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRequireProviderAccess_OwnLedgerOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/w/:provider_id", identity("u", "p1", RoleClinic), RequireProviderAccess(), func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/w/p1", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200 for own ledger, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/w/p2", nil))
	if w.Code != 403 {
		t.Fatalf("expected 403 for foreign ledger, got %d", w.Code)
	}
}

func TestRequireProviderAccess_AdminMayActOnAnyProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/w/:provider_id", identity("u", "", RoleAdmin), RequireProviderAccess(), func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/w/p2", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
