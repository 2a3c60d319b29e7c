package api

import (
	"github.com/Conceptual-Machines/stimulus-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/stimulus-api/internal/api/middleware"
	"github.com/Conceptual-Machines/stimulus-api/internal/buttons"
	"github.com/Conceptual-Machines/stimulus-api/internal/config"
	"github.com/Conceptual-Machines/stimulus-api/internal/metrics"
	"github.com/Conceptual-Machines/stimulus-api/internal/rng"
	"github.com/Conceptual-Machines/stimulus-api/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are the long-lived objects shared by every handler.
// DB may be nil; persistence and sound routes are then not registered.
type Dependencies struct {
	DB       *gorm.DB
	Config   *config.Config
	Store    *rng.Store
	Board    *buttons.Board
	Recorder *metrics.Recorder
	Version  string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.Recorder))

	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.DB)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(deps.Version, deps.Store, deps.Board)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	v1 := router.Group("/api/v1")
	if cfg.IsGatewayMode() {
		v1.Use(apimiddleware.GatewayAuth())
	} else {
		v1.Use(apimiddleware.NoAuth())
	}

	rebuilder := handlers.NewRebuilder(deps.Store, deps.Board, cfg.A4Hz, deps.Recorder)

	var stateService *services.StateService
	if deps.DB != nil {
		stateService = services.NewStateService(deps.DB)
	}

	rngGroup := v1.Group("/rng")
	{
		rngHandler := handlers.NewRNGHandler(deps.Store, rebuilder, stateService, cfg.StateTag)
		rngGroup.GET("/state", rngHandler.GetState)
		rngGroup.PUT("/config", rngHandler.SetConfig)
		rngGroup.PUT("/template", rngHandler.SetTemplate)
		rngGroup.PUT("/selection", rngHandler.SetSelection)
		rngGroup.PUT("/octaves", rngHandler.SetOctaves)
		rngGroup.PUT("/polyphony", rngHandler.SetPolyphony)
		rngGroup.PUT("/models", rngHandler.SetModels)
		rngGroup.POST("/rebuild", rngHandler.Rebuild)

		rngGroup.GET("/items", rngHandler.GetItems)
		rngGroup.PUT("/items/:id/contour", rngHandler.SetItemContour)
		rngGroup.GET("/combos", rngHandler.GetCombos)
		rngGroup.GET("/combos/base", rngHandler.GetCombosBase)
		rngGroup.GET("/combos/base/:id/voicing", rngHandler.GetComboVoicing)
		rngGroup.PUT("/combos/base/:id/policy", rngHandler.SetComboPolicy)
		rngGroup.PUT("/combos/base/:id/contour", rngHandler.SetComboContour)

		if stateService != nil {
			rngGroup.POST("/save", rngHandler.Save)
			rngGroup.POST("/load", rngHandler.Load)
		}
	}

	templates := v1.Group("/templates")
	{
		templateHandler := handlers.NewTemplateHandler(deps.Store, rebuilder)
		templates.GET("", templateHandler.List)
		templates.POST("", templateHandler.Create)
		templates.GET("/:id", templateHandler.Get)
		templates.PATCH("/:id", templateHandler.Rename)
		templates.DELETE("/:id", templateHandler.Delete)
	}

	chords := v1.Group("/chords")
	{
		chordHandler := handlers.NewChordHandler(deps.Store, rebuilder)
		chords.GET("", chordHandler.List)
		chords.POST("", chordHandler.Create)
		chords.GET("/:id", chordHandler.Get)
		chords.PATCH("/:id", chordHandler.Update)
		chords.DELETE("/:id", chordHandler.Delete)
		chords.GET("/:id/voicing", chordHandler.GetVoicing)
		chords.PUT("/:id/policy", chordHandler.SetPolicy)
		chords.PUT("/:id/contour", chordHandler.SetContour)
	}

	assignHandler := handlers.NewAssignHandler(deps.Store)
	v1.POST("/assign", assignHandler.Assign)

	buttonGroup := v1.Group("/buttons")
	{
		buttonHandler := handlers.NewButtonHandler(deps.Store, deps.Board)
		buttonGroup.GET("", buttonHandler.List)
		buttonGroup.DELETE("", buttonHandler.Clear)
		buttonGroup.POST("/generate", buttonHandler.Generate)
		buttonGroup.POST("/layout", buttonHandler.Layout)
		buttonGroup.POST("/link", buttonHandler.Link)
		buttonGroup.GET("/export", buttonHandler.Export)
		buttonGroup.POST("/import", buttonHandler.Import)
		buttonGroup.PATCH("/:id", buttonHandler.Update)
		buttonGroup.DELETE("/:id", buttonHandler.Delete)
	}

	if deps.DB != nil {
		sounds := v1.Group("/sounds")
		soundHandler := handlers.NewSoundHandler(services.NewSoundBankService(deps.DB))
		sounds.GET("", soundHandler.List)
		sounds.POST("", soundHandler.Create)
		sounds.PATCH("/:id", soundHandler.Rename)
		sounds.DELETE("/:id", soundHandler.Delete)
	}

	previewHandler := handlers.NewPreviewHandler(deps.Store, cfg.PreviewSampleRate, deps.Recorder)
	v1.POST("/preview", previewHandler.Render)

	return router
}
