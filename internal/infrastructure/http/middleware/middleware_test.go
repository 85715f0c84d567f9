package middleware

import (
	"context"
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/peopleops/errors"
	"github.com/johnquangdev/peopleops/pkg/jwt"
)

const (
	secretHeader = "X-Webhook-Secret"
	tenantHeader = "X-Tenant-Id"
)

func newContext(method string, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/v1/webhooks/meetings", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr errors.AppError
	require.True(t, stdErrors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.HTTPCode
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestRequireSecret(t *testing.T) {
	m := NewAuthMiddleware("s3cret", secretHeader, tenantHeader, nil)
	tenant := uuid.New()

	cases := []struct {
		name    string
		headers map[string]string
		status  int
	}{
		{"missing secret", map[string]string{tenantHeader: tenant.String()}, http.StatusUnauthorized},
		{"wrong secret", map[string]string{secretHeader: "nope", tenantHeader: tenant.String()}, http.StatusUnauthorized},
		{"missing tenant", map[string]string{secretHeader: "s3cret"}, http.StatusBadRequest},
		{"malformed tenant", map[string]string{secretHeader: "s3cret", tenantHeader: "acme"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, tc.headers)
			called := false
			err := m.RequireSecret(func(echo.Context) error { called = true; return nil })(c)
			assert.Equal(t, tc.status, statusOf(t, err))
			assert.False(t, called)
		})
	}

	t.Run("accepted", func(t *testing.T) {
		c, rec := newContext(http.MethodPost, map[string]string{secretHeader: "s3cret", tenantHeader: tenant.String()})
		require.NoError(t, m.RequireSecret(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		got, ok := TenantFromContext(c)
		assert.True(t, ok)
		assert.Equal(t, tenant, got)
	})

	t.Run("unconfigured secret", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, map[string]string{secretHeader: "", tenantHeader: tenant.String()})
		err := NewAuthMiddleware("", secretHeader, tenantHeader, nil).RequireSecret(okHandler)(c)
		assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	})
}

func TestRequireSecretOrBearer(t *testing.T) {
	tokens := jwt.NewManager("jwt-secret", "peopleops", time.Minute)
	m := NewAuthMiddleware("s3cret", secretHeader, tenantHeader, tokens)
	mw := m.RequireSecretOrBearer(jwt.ServiceScopeExtract)
	tenant := uuid.New()

	t.Run("bearer sets tenant from claims", func(t *testing.T) {
		token, err := tokens.GenerateServiceToken(tenant, jwt.ServiceScopeExtract)
		require.NoError(t, err)
		c, _ := newContext(http.MethodPost, map[string]string{echo.HeaderAuthorization: "Bearer " + token})
		require.NoError(t, mw(okHandler)(c))
		got, ok := TenantFromContext(c)
		assert.True(t, ok)
		assert.Equal(t, tenant, got)
		assert.Equal(t, AuthMethodBearer, c.Get(AuthMethodContextKey))
	})

	t.Run("bearer tenant mismatch", func(t *testing.T) {
		token, _ := tokens.GenerateServiceToken(tenant, jwt.ServiceScopeExtract)
		c, _ := newContext(http.MethodPost, map[string]string{
			echo.HeaderAuthorization: "Bearer " + token,
			tenantHeader:             uuid.NewString(),
		})
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, mw(okHandler)(c)))
	})

	t.Run("garbage bearer", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, map[string]string{echo.HeaderAuthorization: "Bearer abc.def.ghi"})
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, mw(okHandler)(c)))
	})

	t.Run("secret without tenant header leaves tenant to the body", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, map[string]string{secretHeader: "s3cret"})
		require.NoError(t, mw(okHandler)(c))
		_, ok := TenantFromContext(c)
		assert.False(t, ok)
	})

	t.Run("neither", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, nil)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, mw(okHandler)(c)))
	})
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func TestRateLimit(t *testing.T) {
	tenant := uuid.New()
	authed := func(method string) echo.Context {
		c, _ := newContext(http.MethodPost, nil)
		c.Set(TenantContextKey, tenant)
		c.Set(AuthMethodContextKey, method)
		return c
	}

	t.Run("rejects with 429", func(t *testing.T) {
		l := &stubLimiter{allow: false}
		err := RateLimit(l, nil, nil)(okHandler)(authed(AuthMethodSecret))
		assert.Equal(t, http.StatusTooManyRequests, statusOf(t, err))
		assert.Equal(t, []string{"secret:tenant:" + tenant.String()}, l.keys)
	})

	t.Run("bearer callers get their own bucket", func(t *testing.T) {
		l := &stubLimiter{allow: true}
		require.NoError(t, RateLimit(l, nil, nil)(okHandler)(authed(AuthMethodSecret)))
		require.NoError(t, RateLimit(l, nil, nil)(okHandler)(authed(AuthMethodBearer)))
		require.Len(t, l.keys, 2)
		assert.NotEqual(t, l.keys[0], l.keys[1])
		assert.Equal(t, "bearer:tenant:"+tenant.String(), l.keys[1])
	})

	t.Run("ignores an unauthenticated tenant header", func(t *testing.T) {
		l := &stubLimiter{allow: true}
		c, rec := newContext(http.MethodPost, map[string]string{tenantHeader: tenant.String()})
		require.NoError(t, RateLimit(l, nil, nil)(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, l.keys, 1)
		assert.Contains(t, l.keys[0], "anonymous:ip:")
	})

	t.Run("fails open on backend error", func(t *testing.T) {
		l := &stubLimiter{err: stdErrors.New("redis down")}
		c, rec := newContext(http.MethodPost, nil)
		require.NoError(t, RateLimit(l, nil, nil)(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPreflight(t *testing.T) {
	e := echo.New()
	e.Pre(Preflight([]string{"https://app.example.com"}, []string{"Content-Type", secretHeader, tenantHeader}))
	e.POST("/v1/webhooks/meetings", okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/v1/webhooks/meetings", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders), tenantHeader)

	t.Run("unknown path still answers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/anything", nil)
		req.Header.Set(echo.HeaderOrigin, "https://evil.example.com")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})
}
