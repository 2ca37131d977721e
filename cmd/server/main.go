package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/onegreenvn/ads-proposal-backend/docs"
	"github.com/onegreenvn/ads-proposal-backend/internal/app"
	"github.com/onegreenvn/ads-proposal-backend/internal/config"
	"github.com/onegreenvn/ads-proposal-backend/internal/router"
	"github.com/onegreenvn/ads-proposal-backend/internal/utils"
)

// @title Ads Proposal Backend API
// @version 1.0
// @description Review, approval, execution and rollback of ad-campaign improvement proposals

// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter `Bearer ` followed by a reviewer JWT or `ApiKey ` followed by the orchestrator key

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	docs.SwaggerInfo.BasePath = cfg.BasePath

	utils.ConfigureLogging(cfg.LogLevel, cfg.LogFile)
	utils.InitSentry(cfg.SentryDSN, cfg.Env)

	a, err := app.New(cfg)
	if err != nil {
		logrus.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	if cfg.Sweep.Enabled {
		a.Scheduler.Start()
		defer a.Scheduler.Stop()
	}

	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(a.RouterDependencies())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	go func() {
		logrus.Infof("Server starting on port %s", cfg.Port)
		logrus.Infof("API Health Check: http://localhost:%s/api/v1/health", cfg.Port)
		logrus.Infof("Swagger UI: http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
}
