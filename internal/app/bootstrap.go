package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"job-board/internal/config"
	"job-board/internal/delivery/http/handler"
	"job-board/internal/delivery/http/middleware"
	"job-board/internal/delivery/http/routes"
	"job-board/internal/infrastructure/storage"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/static"
)

// bodyLimit leaves room for a resume plus the multipart framing.
const bodyLimit = handler.MaxResumeBytes + 1<<20

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	errMw := middleware.NewErrorMiddleware(c.Logger)

	f := fiber.New(fiber.Config{
		AppName:      c.Config.App.AppName,
		ErrorHandler: errMw.ErrorHandler,
		BodyLimit:    bodyLimit,
	})

	registerGlobalMiddleware(f, c, errMw)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container and HTTP app and starts the background
// workers. The returned cleanup drains them within its context.
func Bootstrap(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, func(context.Context) error, error) {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Start(ctx); err != nil {
		_ = c.Close(ctx)
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container, errMw *middleware.ErrorMiddleware) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
	app.Use(errMw.Middleware())

	if origins := splitOrigins(c.Config.App.CORSOrigin); len(origins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: origins,
			AllowHeaders: []string{fiber.HeaderAuthorization, fiber.HeaderContentType, middleware.HeaderRequestID},
		}))
	}
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	if local, ok := c.Store.(*storage.Local); ok {
		app.Get("/"+storage.LocalRoute+"/*", static.New(local.Dir()))
	}

	var db handler.Pinger
	if c.DB != nil {
		db = c.DB
	}
	var cacheStatus handler.CacheStatus
	if c.Cache != nil {
		cacheStatus = c.Cache
	}

	routes.NewRegistry(routes.Handlers{
		Health:       handler.NewHealthHandler(db, cacheStatus, c.Dispatcher),
		Auth:         handler.NewAuthHandler(c.Auth),
		Users:        handler.NewUserHandler(c.Users),
		Jobs:         handler.NewJobsHandler(c.Jobs),
		Applications: handler.NewApplicationsHandler(c.Applications),
	}, middleware.NewAuthMiddleware(c.Auth)).Register(app)
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
