package worker

import (
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/mwhitney/taskloop-api/internal/config"
	"github.com/mwhitney/taskloop-api/internal/events"
)

// Subscriber runs the asynq server that consumes the todo-events topic and
// feeds each delivery through the Router.
type Subscriber struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// NewSubscriber creates a Subscriber for the configured topic.
func NewSubscriber(cfg config.EventsConfig, router *Router, log *slog.Logger) *Subscriber {
	if router == nil {
		panic("router cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = config.DefaultEventsConcurrency
	}

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{Concurrency: concurrency},
	)

	mux := asynq.NewServeMux()
	mux.Handle(events.TaskTypeForTopic(cfg.Topic), router)

	return &Subscriber{
		server: server,
		mux:    mux,
		logger: log.With(slog.String("component", "event_subscriber")),
	}
}

// Start runs the subscriber until Shutdown is called. It blocks, so callers
// typically run it in its own goroutine.
func (s *Subscriber) Start() error {
	s.logger.Info("event subscriber starting")
	return s.server.Run(s.mux)
}

// Shutdown stops the subscriber, waiting for in-flight deliveries to finish.
func (s *Subscriber) Shutdown() {
	s.logger.Info("event subscriber stopping")
	s.server.Shutdown()
}
