package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/mwhitney/taskloop-api/internal/config"
	"github.com/mwhitney/taskloop-api/internal/events"
	"github.com/mwhitney/taskloop-api/internal/platform/postgres"
	"github.com/mwhitney/taskloop-api/internal/scheduler"
	"github.com/mwhitney/taskloop-api/internal/service"
	"github.com/mwhitney/taskloop-api/internal/service/auth"
	"github.com/mwhitney/taskloop-api/internal/service/recurrence"
	"github.com/mwhitney/taskloop-api/internal/store"
	"github.com/mwhitney/taskloop-api/internal/worker"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore store.UserStore
	taskStore store.TaskStore
	tagStore  store.TagStore

	// Services
	jwtService  auth.JWTService
	userService service.UserService
	taskService service.TaskService
	tagService  service.TagService

	// Event system. publisher is a NoopPublisher when events are disabled;
	// asynqClient and subscriber are nil in that case.
	publisher   events.Publisher
	asynqClient *asynq.Client
	subscriber  *worker.Subscriber

	// Recurrence
	engine    *recurrence.Engine
	scheduler *scheduler.Scheduler
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.tagStore = postgres.NewPostgresTagStore(db, logger)

	app.publisher = app.setupPublisher()

	verifier := auth.NewBcryptVerifier()
	app.userService = service.NewUserService(app.userStore, db, app.jwtService, verifier, verifier, logger)
	app.taskService = service.NewTaskService(app.taskStore, app.tagStore, db, app.publisher, logger)
	app.tagService = service.NewTagService(app.tagStore, db, logger)

	app.engine = recurrence.NewEngine(db, app.taskStore, app.publisher, logger)
	app.scheduler = scheduler.New(cfg.Scheduler, app.engine, logger)

	if cfg.Events.Enabled {
		notifier := worker.NewLogNotifier(logger)
		router := worker.NewRouter(notifier, app.engine, logger)
		app.subscriber = worker.NewSubscriber(cfg.Events, router, logger)
	}

	logger.Info("application initialized")
	return app, nil
}

// setupPublisher returns the event publisher matching the events
// configuration. With events disabled it returns a no-op publisher so
// services can publish unconditionally.
func (app *application) setupPublisher() events.Publisher {
	if !app.config.Events.Enabled {
		app.logger.Info("event publishing disabled")
		return events.NoopPublisher{}
	}

	app.asynqClient = asynq.NewClient(asynq.RedisClientOpt{Addr: app.config.Events.RedisAddr})
	app.logger.Info("event publisher initialized",
		"redis_addr", app.config.Events.RedisAddr,
		"topic", app.config.Events.Topic)
	return events.NewAsynqPublisher(app.asynqClient, app.config.Events.Topic, app.logger)
}

// Run starts the background components and the HTTP server, blocking until
// shutdown completes.
func (app *application) Run(ctx context.Context) error {
	if app.subscriber != nil {
		go func() {
			if err := app.subscriber.Start(); err != nil {
				app.logger.Error("event subscriber stopped", "error", err)
			}
		}()
	}

	if err := app.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
// Stop order matters: the scheduler first so no new passes start, then the
// subscriber so in-flight events drain, then the publisher and database.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.subscriber != nil {
		app.subscriber.Shutdown()
	}

	if app.asynqClient != nil {
		if err := app.asynqClient.Close(); err != nil {
			app.logger.Error("error closing event publisher", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
