// Package app assembles the services shared by the server and the CLI.
package app

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/onegreenvn/ads-proposal-backend/internal/config"
	"github.com/onegreenvn/ads-proposal-backend/internal/database"
	"github.com/onegreenvn/ads-proposal-backend/internal/database/repository"
	"github.com/onegreenvn/ads-proposal-backend/internal/router"
	"github.com/onegreenvn/ads-proposal-backend/internal/services"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/api_key"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/auth"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/excel"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/execution"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/impact"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/lifecycle"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/notification"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/reporting"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/service_platform"
)

// App holds the wired services
type App struct {
	Config config.Config
	DB     *gorm.DB

	Auth      *auth.AuthService
	APIKeys   *api_key.Service
	Proposals *services.ProposalService
	Campaigns *services.CampaignService
	Reports   *services.ReportService
	Reporting *reporting.Service
	Engine    *execution.Engine
	Tracker   *impact.Tracker
	Excel     *excel.Service
	Sweeper   *lifecycle.Sweeper
	Scheduler *services.SweepScheduler

	rabbitMQ *services.RabbitMQService
}

// New connects to and migrates the database, then wires every service
func New(cfg config.Config) (*App, error) {
	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return Wire(cfg, db)
}

// Wire builds the services on an open database
func Wire(cfg config.Config, db *gorm.DB) (*App, error) {
	a := &App{Config: cfg, DB: db}

	gateway, err := service_platform.NewGatewayFactory(cfg.Platform).CreateGateway(cfg.Platform.Type)
	if err != nil {
		return nil, err
	}
	logrus.WithField("platform", cfg.Platform.Type).Info("Mutation gateway ready")

	notifiers := []notification.Notifier{notification.LogNotifier{}}
	if cfg.Chatwork.Enabled() {
		notifiers = append(notifiers, notification.NewChatworkNotifier(cfg.Chatwork))
	}
	if cfg.RabbitMQ.Enabled {
		rabbitMQService, err := services.NewRabbitMQService(cfg.RabbitMQ)
		if err != nil {
			logrus.Warnf("Failed to initialize RabbitMQ: %v", err)
		} else {
			a.rabbitMQ = rabbitMQService
			notifiers = append(notifiers, notification.NewRabbitMQNotifier(rabbitMQService, cfg.RabbitMQ.Queue))
		}
	}

	proposalRepo := repository.NewProposalRepository(db)
	executionRepo := repository.NewExecutionRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	reportRepo := repository.NewWeeklyReportRepository(db)

	a.Reporting = reporting.NewService(reportRepo, campaignRepo)
	a.Auth = auth.NewAuthService(cfg.Auth)
	a.APIKeys = api_key.NewService(cfg.Auth.OrchestratorKeyHash)
	a.Proposals = services.NewProposalService(proposalRepo, executionRepo)
	a.Campaigns = services.NewCampaignService(campaignRepo)
	a.Reports = services.NewReportService(reportRepo)
	a.Tracker = impact.NewTracker(db, a.Reporting, cfg.Impact)
	a.Engine = execution.NewEngine(db, gateway, notification.NewMultiNotifier(notifiers...), a.Tracker, a.Reporting, cfg.Safeguard)
	a.Excel = excel.NewExcelService(proposalRepo, executionRepo, a.Tracker)
	a.Sweeper = lifecycle.NewSweeper(db, a.Reporting)
	a.Scheduler = services.NewSweepScheduler(a.Engine, a.Tracker, a.Sweeper, cfg.Sweep.CleanupDryRun)
	a.Scheduler.SetInterval(cfg.Sweep.Interval)

	return a, nil
}

// RouterDependencies returns the services the HTTP layer needs
func (a *App) RouterDependencies() router.Dependencies {
	return router.Dependencies{
		AuthService:     a.Auth,
		APIKeyService:   a.APIKeys,
		ProposalService: a.Proposals,
		CampaignService: a.Campaigns,
		ReportService:   a.Reports,
		Engine:          a.Engine,
		Tracker:         a.Tracker,
		ExcelService:    a.Excel,
		Sweeper:         a.Sweeper,
		Scheduler:       a.Scheduler,
	}
}

// Close releases the broker connection and the database pool
func (a *App) Close() {
	if a.rabbitMQ != nil {
		if err := a.rabbitMQ.Close(); err != nil {
			logrus.Warnf("Failed to close RabbitMQ: %v", err)
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
