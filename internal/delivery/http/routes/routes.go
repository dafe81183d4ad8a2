package routes

import (
	"job-board/internal/delivery/http/handler"
	"job-board/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Jobs         *handler.JobsHandler
	Applications *handler.ApplicationsHandler
}

type Registry struct {
	h    Handlers
	auth *middleware.AuthMiddleware
}

func NewRegistry(h Handlers, auth *middleware.AuthMiddleware) *Registry {
	return &Registry{h: h, auth: auth}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	r.h.Health.RegisterRoutes(app)
}

// registerAPI mounts the public auth routes and everything else behind the
// bearer token check.
func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")

	r.h.Auth.RegisterRoutes(api.Group("/auth"))

	protected := api.Group("", r.auth.Middleware())
	r.h.Users.RegisterRoutes(protected.Group("/users"))
	r.h.Jobs.RegisterRoutes(protected.Group("/jobs"))
	r.h.Applications.RegisterRoutes(protected.Group("/applications"))
}
