package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"job-board/internal/config"
	"job-board/internal/database"
	"job-board/internal/database/migration"
	dbpostgres "job-board/internal/database/postgres"
	"job-board/internal/database/seeder"
	"job-board/internal/domain/application"
	"job-board/internal/domain/job"
	"job-board/internal/domain/user"
	"job-board/internal/infrastructure/cache"
	"job-board/internal/infrastructure/mailer"
	"job-board/internal/infrastructure/storage"
	"job-board/internal/notification"
	"job-board/internal/pkg/jwt"
	"job-board/internal/repository"
	appuc "job-board/internal/usecase/application"
	ucauth "job-board/internal/usecase/auth"
	jobuc "job-board/internal/usecase/job"
	useruc "job-board/internal/usecase/user"
)

type Repositories struct {
	Users        user.Repository
	Tokens       user.TokenRepository
	Jobs         job.Repository
	Applications application.Repository
}

// Dependencies are the externally backed collaborators of the services.
// DB may be nil when the repositories are not database backed.
type Dependencies struct {
	DB        database.DB
	Repos     Repositories
	Cache     *cache.Redis
	Store     storage.Store
	Transport mailer.Transport
}

type Container struct {
	Config config.Config
	Logger *slog.Logger

	DB         database.DB
	Cache      *cache.Redis
	Store      storage.Store
	Dispatcher *notification.Dispatcher

	Auth         *ucauth.Service
	Users        *useruc.Service
	Jobs         *jobuc.Service
	Applications *appuc.Service
}

// NewContainer connects to Postgres, applies migrations and builds every
// service from cfg.
func NewContainer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.Database.RunMigrations {
		if err := (migration.Runner{}).Run(ctx, db.SQLDB()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	if cfg.App.SeedDemo {
		if err := (seeder.Runner{Seeders: seeder.Defaults(cfg.App.DemoPassword), Logger: logger}).Run(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
		logger.Info("demo data seeded", "company", seeder.DemoCompanyEmail, "applicant", seeder.DemoApplicantEmail)
	}

	store, err := storage.New(cfg.Storage, cfg.App.PublicURL, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	return Assemble(cfg, logger, Dependencies{
		DB: db,
		Repos: Repositories{
			Users:        repository.NewPostgresUserRepository(db),
			Tokens:       repository.NewPostgresVerificationTokenRepository(db),
			Jobs:         repository.NewPostgresJobRepository(db),
			Applications: repository.NewPostgresApplicationRepository(db),
		},
		Cache:     cache.NewRedis(ctx, cfg.Redis, logger),
		Store:     store,
		Transport: mailer.New(cfg.SMTP, logger),
	}), nil
}

// Assemble wires the services over already constructed dependencies.
func Assemble(cfg config.Config, logger *slog.Logger, deps Dependencies) *Container {
	if logger == nil {
		logger = slog.Default()
	}

	dispatcher := notification.NewDispatcher(deps.Transport, cfg.Notification, logger)
	jwtSvc := jwt.NewHMACService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiresIn)

	var jobCache jobuc.Cache
	if deps.Cache != nil {
		jobCache = deps.Cache
	}

	return &Container{
		Config:     cfg,
		Logger:     logger,
		DB:         deps.DB,
		Cache:      deps.Cache,
		Store:      deps.Store,
		Dispatcher: dispatcher,

		Auth: ucauth.NewService(deps.Repos.Users, deps.Repos.Tokens, jwtSvc, dispatcher, ucauth.Config{
			VerificationTTL: cfg.Verification.TokenExpiresIn,
			PublicURL:       cfg.App.PublicURL,
		}, logger),
		Users:        useruc.NewService(deps.Repos.Users),
		Jobs:         jobuc.NewService(deps.Repos.Jobs, jobCache, logger),
		Applications: appuc.NewService(deps.Repos.Applications, deps.Repos.Jobs, deps.Repos.Users, deps.Store, dispatcher, logger),
	}
}

// Start launches the background workers.
func (c *Container) Start(ctx context.Context) error {
	return c.Dispatcher.Start(ctx)
}

// Close drains pending notifications within ctx, then releases the cache and
// the database.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var firstErr error
	if c.Dispatcher != nil {
		if err := c.Dispatcher.Stop(ctx); err != nil {
			firstErr = err
		}
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
