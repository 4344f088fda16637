package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ahmedbilal-7191/sre-bootcamp/internal/config"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/handler"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/metrics"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/middleware"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/response"
)

// SetupRouter configures the Gin engine: middleware chain, the /api/v1
// student routes and the operational endpoints.
func SetupRouter(
	studentHandler *handler.StudentHandler,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	log zerolog.Logger,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour

	router.Use(
		cors.New(corsConfig),
		response.RequestIDMiddleware(),
		middleware.RequestLogger(log),
		middleware.Metrics(m),
		gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
			log.Error().
				Interface("panic", recovered).
				Str("path", c.Request.URL.Path).
				Msg("Panic recovered")
			response.AbortError(c, http.StatusInternalServerError, "Internal server error")
		}),
	)

	// Prometheus exposition, outside the /api/v1 surface.
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	{
		api.GET("/health", handler.Health)
		api.GET("/healthcheck", handler.Health)

		api.POST("/students", studentHandler.Create)
		api.GET("/students", studentHandler.List)
		api.GET("/students/:id", studentHandler.Get)
		api.PUT("/students/:id", studentHandler.Update)
		api.DELETE("/students/:id", studentHandler.Delete)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Resource not found", nil)
	})

	return router
}
