package middleware

import (
	"context"
	"errors"
	"strings"

	"job-board/internal/domain/access"
	"job-board/internal/domain/user"
	"job-board/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

const CtxActorKey = "actor"

// Authenticator resolves a bearer token to the user it was issued to.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (user.User, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Middleware only establishes identity. Role and ownership rules are checked
// by the operations themselves.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Not authenticated", []string{"missing bearer token"}, nil)
		}

		u, err := m.auth.Authenticate(c.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				return NewAppError(fiber.StatusUnauthorized, "Could not validate credentials", []string{"invalid token"}, err)
			}
			return NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}

		c.Locals(CtxActorKey, access.ActorOf(u))
		return c.Next()
	}
}

// ActorFrom returns the authenticated actor stored by the middleware.
func ActorFrom(c fiber.Ctx) (access.Actor, error) {
	a, ok := c.Locals(CtxActorKey).(access.Actor)
	if !ok {
		return access.Actor{}, NewAppError(fiber.StatusUnauthorized, "Not authenticated", nil, auth.ErrUnauthenticated)
	}
	return a, nil
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
