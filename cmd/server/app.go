package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/studyrooms-api/internal/config"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/events"
	"github.com/phrazzld/studyrooms-api/internal/generation"
	"github.com/phrazzld/studyrooms-api/internal/platform/llm"
	"github.com/phrazzld/studyrooms-api/internal/platform/postgres"
	"github.com/phrazzld/studyrooms-api/internal/platform/telemetry"
	"github.com/phrazzld/studyrooms-api/internal/service"
	"github.com/phrazzld/studyrooms-api/internal/service/auth"
	"github.com/phrazzld/studyrooms-api/internal/source"
	"github.com/phrazzld/studyrooms-api/internal/store"
	"github.com/phrazzld/studyrooms-api/internal/task"
)

// appStores groups the persistence layer so tests can substitute it.
type appStores struct {
	lessons   store.LessonStore
	artifacts store.ArtifactStore
	claims    store.ClaimStore
	progress  store.ProgressStore
	tasks     task.TaskStore

	// registerRehydrator is set when the task store can rebuild persisted
	// tasks after a restart.
	registerRehydrator func(taskType string, fn task.Rehydrator)
}

func postgresStores(db *sql.DB, logger *slog.Logger) appStores {
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	return appStores{
		lessons:            postgres.NewPostgresLessonStore(db, logger),
		artifacts:          postgres.NewPostgresArtifactStore(db, logger),
		claims:             postgres.NewPostgresClaimStore(db, logger),
		progress:           postgres.NewPostgresProgressStore(db, logger),
		tasks:              taskStore,
		registerRehydrator: taskStore.RegisterRehydrator,
	}
}

// application holds the shared dependencies of the server and owns their
// shutdown.
type application struct {
	config *config.Config
	mode   domain.BackendMode
	logger *slog.Logger
	db     *sql.DB

	telemetry *telemetry.Provider
	stores    appStores

	jwtService auth.JWTService
	generator  *generation.Client

	lessonService   service.LessonService
	roomService     service.RoomService
	progressService service.ProgressService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication wires the application against Postgres.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	tp *telemetry.Provider,
) (*application, error) {
	return assembleApplication(ctx, cfg, logger, db, tp, postgresStores(db, logger))
}

// assembleApplication builds every service on top of stores and starts the
// task runner. Generation requests flow from the room service through the
// event emitter to the task factory and runner.
func assembleApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	tp *telemetry.Provider,
	stores appStores,
) (*application, error) {
	mode, err := domain.ParseBackendMode(cfg.Server.BackendMode)
	if err != nil {
		return nil, err
	}

	app := &application{
		config:    cfg,
		mode:      mode,
		logger:    logger,
		db:        db,
		telemetry: tp,
		stores:    stores,
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	metrics, err := telemetry.NewMetrics(tp.Meter())
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	primary, secondary, err := llm.NewProviders(ctx, mode, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM providers: %w", err)
	}
	app.generator, err = generation.NewClient(primary, secondary, generation.ClientConfig{
		Timeout:   cfg.LLM.Timeout(),
		MaxTokens: cfg.LLM.MaxTokens,
	}, logger, generation.WithRecorder(metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation client: %w", err)
	}
	logger.Info("generation client initialized",
		"backend_mode", string(mode),
		"providers", app.generator.String())

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	app.lessonService, err = service.NewLessonService(service.LessonServiceDeps{
		DB:        db,
		Lessons:   stores.lessons,
		Artifacts: stores.artifacts,
		Claims:    stores.claims,
		Sources:   source.NewExtractor(mode, logger),
		Generator: app.generator,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson service: %w", err)
	}

	app.roomService, err = service.NewRoomService(service.RoomServiceDeps{
		DB:         db,
		Lessons:    stores.lessons,
		Artifacts:  stores.artifacts,
		Claims:     stores.claims,
		Progress:   stores.progress,
		Events:     app.eventEmitter,
		StaleAfter: time.Duration(cfg.Task.StaleClaimMinutes) * time.Minute,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create room service: %w", err)
	}

	app.progressService, err = service.NewProgressService(db, stores.lessons, stores.progress, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress service: %w", err)
	}

	app.taskRunner = task.NewTaskRunner(stores.tasks, task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}, logger)
	app.taskRunner.SetTracer(tp.Tracer())
	app.taskRunner.SetCompletionHook(metrics.TaskFinished)

	factory := task.NewRoomGenerationTaskFactory(app.roomService, app.generator, logger)
	if stores.registerRehydrator != nil {
		stores.registerRehydrator(task.TaskTypeRoomGeneration, factory.Rehydrate)
	}
	app.eventEmitter.RegisterHandler(task.NewTaskFactoryEventHandler(factory, app.taskRunner, logger))

	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background work. Queued tasks stay pending in the store and
// are recovered on the next start.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
}
