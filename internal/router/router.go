package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/onegreenvn/ads-proposal-backend/internal/handlers"
	"github.com/onegreenvn/ads-proposal-backend/internal/middleware"
	"github.com/onegreenvn/ads-proposal-backend/internal/services"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/api_key"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/auth"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/excel"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/execution"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/impact"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/lifecycle"
)

// Dependencies are the services the HTTP layer is built on
type Dependencies struct {
	AuthService     *auth.AuthService
	APIKeyService   *api_key.Service
	ProposalService *services.ProposalService
	CampaignService *services.CampaignService
	ReportService   *services.ReportService
	Engine          *execution.Engine
	Tracker         *impact.Tracker
	ExcelService    *excel.Service
	Sweeper         *lifecycle.Sweeper
	Scheduler       *services.SweepScheduler
}

// SetupRouter configures the Gin router with the proposal API
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(deps.APIKeyService)
	bearerTokenMiddleware := middleware.NewBearerTokenMiddleware(deps.AuthService)

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	proposalHandler := handlers.NewProposalHandler(deps.ProposalService, deps.Engine)
	impactHandler := handlers.NewImpactHandler(deps.Tracker, deps.ExcelService)
	maintenanceHandler := handlers.NewMaintenanceHandler(deps.Sweeper, deps.Tracker, deps.Scheduler)
	campaignHandler := handlers.NewCampaignHandler(deps.CampaignService, deps.ReportService)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	logrus.Info("Swagger UI endpoint registered at /swagger/index.html")

	api := r.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})

		protected := api.Group("")
		protected.Use(apiKeyMiddleware.APIKeyAuthMiddleware(), bearerTokenMiddleware.BearerTokenAuthMiddleware())
		{
			authGroup := protected.Group("/auth")
			{
				authGroup.GET("/profile", authHandler.GetProfile)
				authGroup.POST("/token", middleware.RequireAPIKey(), authHandler.IssueToken)
			}

			proposals := protected.Group("/proposals")
			{
				proposals.GET("", proposalHandler.ListProposals)
				proposals.POST("", middleware.RequireAPIKey(), proposalHandler.CreateProposal)

				// static paths before :id
				proposals.GET("/impact/export", impactHandler.ExportImpact)
				proposals.POST("/cleanup", maintenanceHandler.CleanupInactive)
				proposals.POST("/collect-after-snapshots", maintenanceHandler.CollectAfterSnapshots)
				proposals.POST("/sweep/run", maintenanceHandler.RunSweep)
				proposals.GET("/sweep/status", maintenanceHandler.SweepStatus)

				proposals.GET("/:id", proposalHandler.GetProposal)
				proposals.GET("/:id/impact", impactHandler.GetImpact)
				proposals.POST("/:id/approve", proposalHandler.ApproveProposal)
				proposals.POST("/:id/reject", proposalHandler.RejectProposal)
				proposals.POST("/:id/execute", proposalHandler.ExecuteProposal)
				proposals.POST("/:id/rollback", proposalHandler.RollbackProposal)
				proposals.POST("/:id/safeguard-check", proposalHandler.SafeguardCheck)
			}

			campaigns := protected.Group("/campaigns")
			{
				campaigns.GET("", campaignHandler.GetCampaigns)
				campaigns.POST("/sync", middleware.RequireAPIKey(), campaignHandler.SyncCampaigns)
			}

			protected.POST("/reports", middleware.RequireAPIKey(), campaignHandler.CreateReport)
		}
	}

	return r
}
