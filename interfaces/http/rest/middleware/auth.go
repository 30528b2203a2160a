// Package middleware contains the HTTP middleware stack: authentication,
// admin gating, and request logging.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bookcrawl-backend/pkg/auth"
)

// Authenticate validates the bearer token and attaches the caller to the
// request context. Requests without a token pass through anonymously; route
// groups that need an identity stack RequireAuth or RequireAdmin on top.
//
// trustAuthorizerHeaders enables the Lambda path: there the API Gateway JWT
// authorizer has already validated the token and the Lambda adapter rewrites
// its claims into X-Authorizer-* headers. The flag must stay off for the
// plain HTTP server, where those headers are attacker-controlled input.
func Authenticate(validator *auth.JWTValidator, limiter auth.RateLimiter, trustAuthorizerHeaders bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil {
				allowed, err := limiter.Allow(r.Context(), clientIP(r))
				if err != nil {
					logger.Error("Rate limiter error", zap.Error(err))
					respondWithError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				if !allowed {
					respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
					return
				}
			}

			if trustAuthorizerHeaders && r.Header.Get("X-Authorizer-Validated") == "true" {
				if userID := r.Header.Get("X-User-ID"); userID != "" {
					user := &auth.UserContext{
						UserID: userID,
						Email:  r.Header.Get("X-User-Email"),
					}
					if groups := r.Header.Get("X-User-Groups"); groups != "" {
						user.Groups = strings.Split(groups, ",")
					}
					next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
					return
				}
			}

			token := extractToken(r)
			if token == "" {
				// Anonymous; public routes serve the approved-only view.
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("ip", clientIP(r)),
					zap.String("path", r.URL.Path),
				)
				switch err {
				case auth.ErrExpiredToken:
					respondUnauthorized(w, "token has expired")
				case auth.ErrInvalidSignature:
					respondUnauthorized(w, "invalid token signature")
				default:
					respondUnauthorized(w, "invalid token")
				}
				return
			}

			user := &auth.UserContext{
				UserID: claims.UserID(),
				Email:  claims.Email,
				Groups: claims.Groups,
			}
			next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
		})
	}
}

// RequireAuth rejects requests that carry no authenticated caller.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.GetUserFromContext(r.Context()); err != nil {
			respondUnauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates the moderation and write endpoints behind the admin
// group.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.GetUserFromContext(r.Context())
		if err != nil {
			respondUnauthorized(w, "authentication required")
			return
		}
		if !user.IsAdmin() {
			respondWithError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken pulls the bearer token from the Authorization header.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return authHeader
}

// clientIP extracts the client IP address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	respondWithError(w, http.StatusUnauthorized, message)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    code,
	})
}
