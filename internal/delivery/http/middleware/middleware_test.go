package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"job-board/internal/domain/user"
	"job-board/internal/pkg/response"
	"job-board/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	u   user.User
	err error
}

func (s stubAuth) Authenticate(_ context.Context, _ string) (user.User, error) {
	return s.u, s.err
}

func newApp(h fiber.Handler) *fiber.App {
	return newAppWith(nil, h)
}

func newAppWith(mw, h fiber.Handler) *fiber.App {
	errMw := NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))
	app := fiber.New(fiber.Config{ErrorHandler: errMw.ErrorHandler})
	app.Use(errMw.Middleware())
	if mw != nil {
		app.Use(mw)
	}
	app.Get("/x", h)
	return app
}

func call(t *testing.T, app *fiber.App, header string) (int, response.Envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env response.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestErrorMiddleware_RendersAppError(t *testing.T) {
	app := newApp(func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusConflict, "Already applied", []string{"duplicate application"}, nil)
	})

	status, env := call(t, app, "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Already applied", env.Message)
	assert.Equal(t, []string{"duplicate application"}, env.Errors)
}

func TestErrorMiddleware_HidesInternalDetails(t *testing.T) {
	app := newApp(func(c fiber.Ctx) error {
		return errors.New("pq: connection refused at 10.0.0.3")
	})

	status, env := call(t, app, "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, response.MessageInternalServerError, env.Message)
	assert.Empty(t, env.Errors)
}

func TestErrorMiddleware_RecoversPanic(t *testing.T) {
	app := newApp(func(c fiber.Ctx) error {
		panic("boom")
	})

	status, env := call(t, app, "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.False(t, env.Success)
}

func TestAuthMiddleware(t *testing.T) {
	id := uuid.New()
	ok := func(c fiber.Ctx) error {
		a, err := ActorFrom(c)
		if err != nil {
			return err
		}
		return response.Success(c, fiber.StatusOK, a.ID.String(), nil)
	}

	tests := []struct {
		name   string
		auth   stubAuth
		header string
		want   int
	}{
		{name: "missing header", header: "", want: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: fiber.StatusUnauthorized},
		{name: "rejected token", auth: stubAuth{err: auth.ErrUnauthenticated}, header: "Bearer t", want: fiber.StatusUnauthorized},
		{name: "store failure", auth: stubAuth{err: errors.New("db down")}, header: "Bearer t", want: fiber.StatusInternalServerError},
		{name: "accepted", auth: stubAuth{u: user.User{ID: id, Role: user.RoleApplicant}}, header: "bearer t", want: fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAppWith(NewAuthMiddleware(tt.auth).Middleware(), ok)
			status, env := call(t, app, tt.header)
			assert.Equal(t, tt.want, status)
			if tt.want == fiber.StatusOK {
				assert.Equal(t, id.String(), env.Message)
			}
		})
	}
}

func TestBearerTokenFromHeader(t *testing.T) {
	tok, ok := bearerTokenFromHeader("  Bearer   abc.def  ")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = bearerTokenFromHeader("Bearer ")
	assert.False(t, ok)
}
