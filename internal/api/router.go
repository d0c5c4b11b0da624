package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/api/handler"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/api/middleware"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/config"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/logger"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/repository"
	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	cfg *config.ServerConfig,
	log *logger.Logger,
	store *repository.Store,
	ingestService *service.IngestService,
	searchService *service.SearchService,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	mealHandler := handler.NewMealHandler(store)
	ingestHandler := handler.NewIngestHandler(ingestService)
	searchHandler := handler.NewSearchHandler(searchService)
	reviewHandler := handler.NewReviewHandler(store)
	statsHandler := handler.NewStatsHandler(store)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Meals
		v1.GET("/meals", mealHandler.ListMeals)
		v1.GET("/meals/:id", mealHandler.GetMeal)
		v1.GET("/meals/:id/variants", mealHandler.ListVariants)
		v1.POST("/meals/ingest", ingestHandler.IngestMeal)

		// Search
		v1.POST("/search", searchHandler.Search)
		v1.GET("/search", searchHandler.SearchGet)
		v1.GET("/suggest", searchHandler.Suggest)

		// Review queue
		v1.GET("/review", reviewHandler.ListReviewQueue)
		v1.POST("/review/:id/resolve", reviewHandler.ResolveVariant)

		// Jobs and stats
		v1.GET("/jobs", statsHandler.ListJobs)
		v1.GET("/jobs/:id", statsHandler.GetJob)
		v1.GET("/stats", statsHandler.GetStats)
	}

	return r
}
