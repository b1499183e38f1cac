package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dcreceiving/internal/config"
	"dcreceiving/internal/database"
	"dcreceiving/internal/domain/audit"
	"dcreceiving/internal/domain/auth"
	"dcreceiving/internal/domain/inventory"
	"dcreceiving/internal/domain/live"
	"dcreceiving/internal/domain/progress"
	"dcreceiving/internal/domain/upload"
	"dcreceiving/internal/domain/verification"
	"dcreceiving/internal/domain/workflow"
	"dcreceiving/internal/middleware"
	"dcreceiving/internal/pkg/jwt"
	"dcreceiving/internal/pkg/response"
)

// app holds every long-lived component of a running server.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *gorm.DB
	store    inventory.Store
	auth     *auth.Service
	sessions *workflow.SessionManager
	hub      *live.Hub
	router   *gin.Engine
}

// migrationModels returns the tables the configured store needs.
func migrationModels(cfg *config.Config) []any {
	models := append([]any{}, auth.Models()...)
	models = append(models, &upload.Upload{}, &audit.Entry{})
	if cfg.StoreDriver == config.StoreGorm {
		models = append(models, inventory.Models()...)
	}
	return models
}

func openDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db, migrationModels(cfg)...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// newInventoryStore picks the store named by STORE_DRIVER. The memory store
// is seeded from FIXTURE_PATH when one is configured.
func newInventoryStore(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) (inventory.Store, error) {
	if cfg.StoreDriver == config.StoreGorm {
		return inventory.NewGormStore(db), nil
	}

	store := inventory.NewMemoryStore()
	if cfg.FixturePath == "" {
		return store, nil
	}
	fixture, err := inventory.LoadFixtureFile(cfg.FixturePath)
	if err != nil {
		return nil, err
	}
	counts, err := fixture.Apply(ctx, inventory.NewService(store))
	if err != nil {
		return nil, fmt.Errorf("apply fixture: %w", err)
	}
	log.Info("memory store seeded",
		zap.String("fixture", cfg.FixturePath),
		zap.Int("projects", counts.Projects),
		zap.Int("equipment", counts.Equipment),
	)
	return store, nil
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	db, err := openDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	store, err := newInventoryStore(ctx, cfg, db, log)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	tokens := jwt.New(cfg.JWTSecret, cfg.JWTTTL)

	authService := auth.NewService(auth.NewRepository(db), tokens)
	inventoryService := inventory.NewService(store)
	uploadService := upload.NewService(upload.NewRepository(db), cfg.UploadsDir, cfg.UploadsURLBase, cfg.MaxPhotoBytes, log)
	auditService := audit.NewService(audit.NewRepository(db))
	aggregator := progress.NewAggregator(store)
	hub := live.NewHub(log)

	controller := workflow.NewController(workflow.Deps{
		Engine:     verification.NewEngine(store),
		Aggregator: aggregator,
		Store:      store,
		Evidence:   uploadService,
		Audit:      auditService,
		Publisher:  hub,
		Notifier:   workflow.NewLogNotifier(log),
		Log:        log,
	})
	sessions := workflow.NewSessionManager(controller, cfg.SessionIdleTTL, log)

	gin.SetMode(gin.ReleaseMode)
	if !cfg.IsProdLike() {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.RequestLogger(log),
		middleware.ErrorLogger(log),
	)
	r.Static(cfg.UploadsURLBase, cfg.UploadsDir)
	r.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "store": cfg.StoreDriver})
	})

	write := middleware.RequireRole(string(auth.RoleAdmin), string(auth.RoleOperator))
	admin := middleware.RequireRole(string(auth.RoleAdmin))

	v1 := r.Group("/api/v1")
	authHandler := auth.NewHandler(authService)
	authHandler.RegisterPublicRoutes(v1)
	live.NewHandler(hub, tokens, cfg.CORSAllowedOrigins, log).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(tokens))
	authHandler.RegisterProtectedRoutes(protected, admin)
	inventory.NewHandler(inventoryService).RegisterRoutes(protected, write)
	progress.NewHandler(aggregator).RegisterRoutes(protected)
	audit.NewHandler(auditService).RegisterRoutes(protected)
	upload.RegisterRoutes(protected, upload.NewHandler(uploadService))
	workflow.NewHandler(controller, sessions, uploadService).RegisterRoutes(protected, write)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		store:    store,
		auth:     authService,
		sessions: sessions,
		hub:      hub,
		router:   r,
	}, nil
}

func (a *app) close() {
	a.sessions.Stop()
	a.hub.Close()
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
