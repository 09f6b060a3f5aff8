package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinichq/admin-api/internal/config"
)

func testManager() *Manager {
	return NewManager(config.AuthConfig{
		CookieName:   "clinichq_session",
		CookieMaxAge: 3600,
		ServiceTokens: map[string]string{
			"tok-super":   RoleSuperAdmin,
			"tok-service": RoleService,
		},
		ImportSecret: "hook-secret",
	}, "http://localhost:8080")
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireRejectsAnonymous(t *testing.T) {
	m := testManager()
	rec := httptest.NewRecorder()
	m.Require(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clinics", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAcceptsSessionCookie(t *testing.T) {
	m := testManager()
	m.AddSession("sess-1", &Session{
		UserID:    "u1",
		Email:     "owner@x.com",
		Role:      RoleAdmin,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	var gotRole string
	handler := m.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = RoleFromContext(r.Context())
		require.NotNil(t, SessionFromContext(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/clinics", nil)
	req.AddCookie(&http.Cookie{Name: "clinichq_session", Value: "sess-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RoleAdmin, gotRole)
}

func TestExpiredSessionIsEvicted(t *testing.T) {
	m := testManager()
	m.AddSession("sess-old", &Session{ExpiresAt: time.Now().Add(-time.Minute)})

	req := httptest.NewRequest(http.MethodGet, "/api/clinics", nil)
	req.AddCookie(&http.Cookie{Name: "clinichq_session", Value: "sess-old"})
	assert.Nil(t, m.GetSession(req))
	assert.Nil(t, m.GetSession(req)) // stays gone
}

func TestRequireAcceptsServiceToken(t *testing.T) {
	m := testManager()
	var gotRole string
	handler := m.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/dedup/run", nil)
	req.Header.Set("Authorization", "Bearer tok-super")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RoleSuperAdmin, gotRole)
}

func TestRequireRoleForbidsLesserRoles(t *testing.T) {
	m := testManager()
	handler := m.Require(RequireRole(RoleSuperAdmin)(okHandler()))

	req := httptest.NewRequest(http.MethodPost, "/api/dedup/run", nil)
	req.Header.Set("Authorization", "Bearer tok-service")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.Header.Set("Authorization", "Bearer tok-super")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImportSecret(t *testing.T) {
	m := testManager()
	assert.True(t, m.CheckImportSecret("hook-secret"))
	assert.False(t, m.CheckImportSecret("wrong"))
	assert.False(t, m.CheckImportSecret(""))

	// Unconfigured secret never matches.
	empty := NewManager(config.AuthConfig{}, "")
	assert.False(t, empty.CheckImportSecret(""))
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", BearerToken(req))

	req.Header.Set("Authorization", "bearer xyz")
	assert.Equal(t, "xyz", BearerToken(req))
}
