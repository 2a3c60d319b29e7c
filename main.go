package main

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/stimulus-api/internal/api"
	"github.com/Conceptual-Machines/stimulus-api/internal/buttons"
	"github.com/Conceptual-Machines/stimulus-api/internal/config"
	"github.com/Conceptual-Machines/stimulus-api/internal/database"
	"github.com/Conceptual-Machines/stimulus-api/internal/logger"
	"github.com/Conceptual-Machines/stimulus-api/internal/metrics"
	"github.com/Conceptual-Machines/stimulus-api/internal/rng"
	"github.com/Conceptual-Machines/stimulus-api/internal/services"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
	restoreTimeout        = 10 * time.Second
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "stimulus-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Debug:            cfg.Environment != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	// Database is optional; without it the RNG state lives in memory only
	var db *gorm.DB
	if cfg.HasDatabase() {
		var err error
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to connect to database:", err)
		}
		if err := database.Migrate(db); err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to run migrations:", err)
		}
	} else {
		log.Println("⚠️  Database not configured (DATABASE_URL not set), state will not persist")
	}

	store := restoreStore(db, cfg)
	board := buttons.NewBoard()

	cloudwatch, err := metrics.NewClient(context.Background(), cfg.Environment)
	if err != nil {
		log.Printf("Failed to initialize CloudWatch metrics: %v", err)
	}
	recorder := metrics.NewRecorder(cloudwatch)

	if cfg.Environment == environmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.SetupRouter(api.Dependencies{
		DB:       db,
		Config:   cfg,
		Store:    store,
		Board:    board,
		Recorder: recorder,
		Version:  GetVersion(),
	})

	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

// restoreStore loads the persisted snapshot when there is one and rebuilds
// the derived collections at the configured reference pitch
func restoreStore(db *gorm.DB, cfg *config.Config) *rng.Store {
	store := rng.NewStore()
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
		defer cancel()

		snap, err := services.NewStateService(db).Load(ctx, cfg.StateTag)
		switch {
		case err == nil:
			store.Restore(snap)
			logger.Info("Restored RNG state", logger.Fields{"tag": cfg.StateTag})
		case errors.Is(err, services.ErrStateNotFound):
			logger.Info("No saved RNG state, starting fresh", logger.Fields{"tag": cfg.StateTag})
		default:
			logger.Error("Failed to restore RNG state", err, logger.Fields{"tag": cfg.StateTag})
		}
	}

	if _, err := store.Rebuild(cfg.A4Hz); err != nil && !errors.Is(err, rng.ErrNoActiveTemplate) {
		logger.Error("Initial rebuild failed", err, logger.Fields{"template_id": store.Config().TemplateID})
	}
	return store
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
