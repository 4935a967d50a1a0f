package middleware

import (
	"errors"
	"strings"

	"recipe-sync/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	CtxUserIDKey = "user_id"
	CtxEmailKey  = "email"
)

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

// Middleware requires a valid bearer token and stores its subject under
// CtxUserIDKey. Without a jwt service it lets every request through.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if m == nil || m.jwt == nil {
			return c.Next()
		}

		token, ok := bearerToken(c)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}

		userID, err := claims.UserID()
		if err != nil {
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}

		c.Locals(CtxUserIDKey, userID)
		c.Locals(CtxEmailKey, claims.Email)

		return c.Next()
	}
}

// AuthenticatedUser returns the token subject set by AuthMiddleware.
func AuthenticatedUser(c fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(CtxUserIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// ResolveUserID reconciles a user id supplied by the client with the
// authenticated one. An empty requested id falls back to the token subject;
// a different one is rejected.
func ResolveUserID(c fiber.Ctx, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	authed, ok := AuthenticatedUser(c)
	if !ok {
		return requested, nil
	}
	if requested == "" {
		return authed.String(), nil
	}
	if parsed, err := uuid.Parse(requested); err != nil || parsed != authed {
		return "", NewAppError(fiber.StatusForbidden, "userId does not match token", nil, nil)
	}
	return authed.String(), nil
}

func bearerToken(c fiber.Ctx) (string, bool) {
	if t, ok := bearerTokenFromHeader(c.Get("Authorization")); ok {
		return t, true
	}
	// Browsers cannot set headers on websocket upgrades.
	if t := strings.TrimSpace(c.Query("access_token")); t != "" {
		return t, true
	}
	return "", false
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
