package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookcrawl-backend/pkg/auth"
)

const testSecret = "test-secret"

func newValidator(t *testing.T) *auth.JWTValidator {
	t.Helper()
	v, err := auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     testSecret,
	})
	require.NoError(t, err)
	return v
}

func signToken(t *testing.T, subject string, groups []string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":            subject,
		"email":          subject + "@example.com",
		"cognito:groups": groups,
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

// capture records the user context seen by the downstream handler.
func capture(user **auth.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, err := auth.GetUserFromContext(r.Context()); err == nil {
			*user = u
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateAnonymousPassesThrough(t *testing.T) {
	var user *auth.UserContext
	handler := Authenticate(newValidator(t), nil, false, zap.NewNop())(capture(&user))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookshops", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, user, "no token means no user context")
}

func TestAuthenticateValidToken(t *testing.T) {
	var user *auth.UserContext
	handler := Authenticate(newValidator(t), nil, false, zap.NewNop())(capture(&user))

	req := httptest.NewRequest(http.MethodGet, "/bookshops", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", []string{"admin"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, "user-1", user.UserID)
	assert.True(t, user.IsAdmin())
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	handler := Authenticate(newValidator(t), nil, false, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	req := httptest.NewRequest(http.MethodGet, "/bookshops", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateTrustsAuthorizerHeaders(t *testing.T) {
	var user *auth.UserContext
	handler := Authenticate(newValidator(t), nil, true, zap.NewNop())(capture(&user))

	req := httptest.NewRequest(http.MethodGet, "/bookshops", nil)
	req.Header.Set("X-Authorizer-Validated", "true")
	req.Header.Set("X-User-ID", "user-2")
	req.Header.Set("X-User-Groups", "admin,editors")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, "user-2", user.UserID)
	assert.Equal(t, []string{"admin", "editors"}, user.Groups)
}

// Outside Lambda the authorizer headers are arbitrary client input and must
// not mint an identity: a tokenless request carrying them stays anonymous
// and is turned away by the admin gate.
func TestAuthenticateIgnoresAuthorizerHeadersOnHTTPServer(t *testing.T) {
	var user *auth.UserContext
	handler := Authenticate(newValidator(t), nil, false, zap.NewNop())(capture(&user))

	req := httptest.NewRequest(http.MethodDelete, "/bookshops/shop-1", nil)
	req.Header.Set("X-Authorizer-Validated", "true")
	req.Header.Set("X-User-ID", "intruder")
	req.Header.Set("X-User-Groups", "admin")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, user, "forged headers must not produce a user context")

	// Stacked with the admin gate the same request is rejected outright.
	gated := Authenticate(newValidator(t), nil, false, zap.NewNop())(
		RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("admin handler must not run")
		})))
	rec = httptest.NewRecorder()
	gated.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRateLimit(t *testing.T) {
	limiter := auth.NewTokenBucketLimiter(1, time.Minute)
	handler := Authenticate(newValidator(t), limiter, false, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/bookshops", nil)
	req.RemoteAddr = "10.0.0.1:4000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// No user context at all.
	rec := httptest.NewRecorder()
	RequireAdmin(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookshops", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authenticated but not admin.
	req := httptest.NewRequest(http.MethodPost, "/bookshops", nil)
	req = req.WithContext(auth.SetUserInContext(req.Context(), &auth.UserContext{UserID: "u1"}))
	rec = httptest.NewRecorder()
	RequireAdmin(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin.
	req = httptest.NewRequest(http.MethodPost, "/bookshops", nil)
	req = req.WithContext(auth.SetUserInContext(req.Context(),
		&auth.UserContext{UserID: "u2", Groups: []string{auth.AdminGroup}}))
	rec = httptest.NewRecorder()
	RequireAdmin(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, extractToken(req))

	req.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", extractToken(req))

	req.Header.Set("Authorization", "bearer abc123")
	assert.Equal(t, "abc123", extractToken(req))

	req.Header.Set("Authorization", "rawtoken")
	assert.Equal(t, "rawtoken", extractToken(req))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	assert.Equal(t, "192.0.2.10", clientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 198.51.100.7")
	assert.Equal(t, "203.0.113.5", clientIP(req))
}
