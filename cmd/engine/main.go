// Package main provides the entry point for the edge engine daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/calibration"
	"github.com/yourusername/edge-engine/internal/config"
	"github.com/yourusername/edge-engine/internal/database"
	"github.com/yourusername/edge-engine/internal/edge"
	"github.com/yourusername/edge-engine/internal/engine"
	"github.com/yourusername/edge-engine/internal/ensemble"
	"github.com/yourusername/edge-engine/internal/health"
	applogger "github.com/yourusername/edge-engine/internal/logger"
	"github.com/yourusername/edge-engine/internal/metrics"
	"github.com/yourusername/edge-engine/internal/models"
	"github.com/yourusername/edge-engine/internal/repository"
	"github.com/yourusername/edge-engine/internal/risk"
	"github.com/yourusername/edge-engine/internal/staking"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.LoadWithDefaults(os.Getenv("EDGE_ENGINE_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := applogger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Edge engine starting")

	metrics.InitRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	if err := db.RunMigrations(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to run database migrations")
	}

	outcomeRepo := repository.NewPostgresOutcomeRepository(db)
	reportRepo := repository.NewPostgresReportRepository(db)

	// Base models and ensemble
	modelSet := make([]ensemble.Model, 0, len(cfg.Ensemble.Models))
	for _, mc := range cfg.Ensemble.Models {
		modelSet = append(modelSet, ensemble.NewRemoteModel(mc, appLog))
	}
	combiner, err := ensemble.NewCombiner(modelSet, cfg.ModelWeights(), cfg.Ensemble.Quorum, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to build ensemble combiner")
	}
	cachedCombiner := ensemble.NewCachedCombiner(combiner, time.Duration(cfg.Ensemble.CacheTTLSeconds)*time.Second)

	// Calibration: store, calibrator and the live refit loop
	store := calibration.NewStore()
	calibrator := calibration.NewCalibrator(store)
	fitter := calibration.NewFitter(cfg.Calibration.BinCount, cfg.Calibration.MinSamples)
	loop := calibration.NewLoop(store, fitter, outcomeRepo, reportRepo, calibration.LoopConfig{
		RefitInterval: time.Duration(cfg.Calibration.RefitIntervalSeconds) * time.Second,
		WindowSize:    cfg.Calibration.WindowSize,
	}, appLog)

	pipeline := engine.NewPipeline(
		cachedCombiner,
		calibrator,
		edge.NewDetector(cfg.Betting.MinEdge, cfg.Betting.MinConfidence, cfg.Betting.MaxDisagreement, appLog),
		staking.NewSizer(cfg.Betting.HardCapFraction, cfg.Betting.MinStake, appLog),
		risk.NewSimulator(cfg.Simulation.Trials, cfg.Simulation.SequenceLength,
			cfg.Simulation.Workers, cfg.Simulation.RuinThreshold, time.Now().UnixNano(), appLog),
		applogger.NewBetAuditLogger(appLog),
		appLog,
	)

	// Warm the calibration state from persisted outcomes before serving
	if err := loop.RunOnce(ctx); err != nil {
		appLog.WithError(err).Warn("Initial calibration refit did not commit, starting degraded")
	}
	if err := loop.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start calibration loop")
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        fmt.Sprintf("%d", cfg.Server.HealthPort),
		Logger:      appLog,
		DB:          db,
		Calibration: store,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, metrics.Handler())
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			appLog.WithField("addr", addr).Info("Metrics endpoint listening")
			if err := http.ListenAndServe(addr, mux); err != nil {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	ingress := engine.NewServer(pipeline, outcomeRepo, engine.ServerConfig{
		Port:            cfg.Server.Port,
		DefaultProfile:  models.RiskProfile(cfg.Betting.DefaultProfile),
		DefaultBankroll: cfg.Betting.Bankroll,
	}, appLog)

	go func() {
		if err := ingress.Start(); err != nil {
			appLog.WithError(err).Fatal("Ingress server error")
		}
	}()
	healthServer.SetReady(true)
	appLog.WithFields(logrus.Fields{
		"port":         cfg.Server.Port,
		"quorum":       cfg.Ensemble.Quorum,
		"base_models":  len(modelSet),
		"refit_period": cfg.Calibration.RefitIntervalSeconds,
	}).Info("Edge engine running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	cancel()

	if err := ingress.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error during ingress shutdown")
	}
	loop.Stop()

	appLog.Info("Edge engine shut down successfully")
}
