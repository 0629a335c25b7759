package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/triage-api/internal/config"
	"github.com/phrazzld/triage-api/internal/events"
	"github.com/phrazzld/triage-api/internal/feedback"
	"github.com/phrazzld/triage-api/internal/mail"
	"github.com/phrazzld/triage-api/internal/pipeline"
	"github.com/phrazzld/triage-api/internal/platform/gemini"
	"github.com/phrazzld/triage-api/internal/platform/gmailapi"
	"github.com/phrazzld/triage-api/internal/platform/postgres"
	"github.com/phrazzld/triage-api/internal/service/auth"
	"github.com/phrazzld/triage-api/internal/state"
	"github.com/phrazzld/triage-api/internal/store"
	"github.com/phrazzld/triage-api/internal/task"
	"github.com/phrazzld/triage-api/internal/ws"
)

// application holds the shared application dependencies so wiring and
// cleanup live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	operatorStore store.OperatorStore
	decisionStore store.DecisionLogStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	registry *ws.Registry
	states   *state.Store
	broker   *feedback.Broker

	eventEmitter events.EventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication wires every dependency of the server: stores, auth,
// the synchronization core, the mail and LLM platforms, and the
// background pipeline runner.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
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

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.operatorStore = postgres.NewPostgresOperatorStore(db, bcrypt.DefaultCost)
	app.decisionStore = postgres.NewPostgresDecisionStore(db, logger)

	// Synchronization core: connection registry, per-operator task state,
	// and the feedback rendezvous that routes prompts through the registry.
	app.registry = ws.NewRegistry(logger)
	app.states = state.NewStore(logger)
	app.broker = feedback.NewBroker(app.registry, logger)

	// Mail platform. One Gmail service backs the provider, retriever,
	// labeler and drafter.
	gmailService, err := gmailapi.NewService(ctx, cfg.Gmail)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mail service: %w", err)
	}
	provider := gmailapi.NewProvider(gmailService)
	retriever := gmailapi.NewRetriever(gmailService)
	labeler := gmailapi.NewLabeler(gmailService, logger)
	drafter := gmailapi.NewDrafter(gmailService, logger)

	source, err := mail.NewTieredSource(provider, mail.SourceConfig{
		Tiers:      mail.DefaultTiers(),
		Exclusions: mail.DefaultExclusions(),
		PageSize:   cfg.Pipeline.PageSize,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize thread source: %w", err)
	}

	engine, err := gemini.NewEngine(ctx, logger.With("component", "llm_engine"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM engine: %w", err)
	}
	logger.Info("LLM engine initialized", "model", cfg.LLM.ModelName)

	processor := pipeline.NewProcessor(
		pipeline.Config{
			ThreadCount:     cfg.Pipeline.ThreadCount,
			MessageCap:      cfg.Pipeline.MessageCap,
			FeedbackTimeout: time.Duration(cfg.Pipeline.FeedbackTimeoutSeconds) * time.Second,
		},
		source,
		retriever,
		engine,
		labeler,
		drafter,
		app.broker,
		app.states,
		app.registry,
		app.decisionStore,
		logger,
	)

	app.taskRunner = task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, logger)
	app.taskRunner.Start()

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewProcessEventHandler(
		pipeline.NewFactory(processor, logger),
		app.taskRunner,
		logger,
	))
	app.eventEmitter = emitter

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown completes.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
