package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pulseboard-dev/pulseboard/internal/handlers"
	pdsync "github.com/pulseboard-dev/pulseboard/internal/sync"
)

func NewRouter(syncer *pdsync.Syncer) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	syncHandler := &handlers.SyncHandler{Syncer: syncer}

	r.GET("/", handlers.Dashboard)
	r.GET("/download_csv/:report", handlers.DownloadCSV)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.POST("/sync", syncHandler.Trigger)

		api.GET("/teams", handlers.ListTeams)
		api.GET("/escalation_policies", handlers.ListEscalationPolicies)
		api.GET("/services", handlers.ListServices)
		api.GET("/services/:service_id/incidents", handlers.ServiceIncidents)
		api.GET("/incidents", handlers.ListIncidents)
	}

	return r
}
