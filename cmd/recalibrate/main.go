// Package main provides a CLI for operating the calibration refit
// process outside the engine daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/edge-engine/internal/calibration"
	"github.com/yourusername/edge-engine/internal/config"
	"github.com/yourusername/edge-engine/internal/database"
	applogger "github.com/yourusername/edge-engine/internal/logger"
	"github.com/yourusername/edge-engine/internal/repository"
)

var (
	configFile  string
	reportLimit int

	logger      *logrus.Logger
	cfg         *config.Config
	db          *database.DB
	outcomeRepo repository.OutcomeRepository
	reportRepo  repository.ReportRepository
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	reportsCmd.Flags().IntVarP(&reportLimit, "limit", "n", 10, "Number of refit reports to show")
}

var rootCmd = &cobra.Command{
	Use:   "recalibrate",
	Short: "Operate the calibration refit process",
	Long:  `Run a one-off calibration refit, inspect the outcome window, or list recent refit reports.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var refitCmd = &cobra.Command{
	Use:   "refit",
	Short: "Run a one-off calibration refit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRefit(cmd.Context())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the outcome window and latest refit result",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List recent refit reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listReports(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(refitCmd, statusCmd, reportsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	return nil
}

func setupDependencies(ctx context.Context) error {
	logger = applogger.NewLogger(cfg.App.LogLevel)

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	outcomeRepo = repository.NewPostgresOutcomeRepository(db)
	reportRepo = repository.NewPostgresReportRepository(db)
	return nil
}

func runRefit(ctx context.Context) error {
	store := calibration.NewStore()
	fitter := calibration.NewFitter(cfg.Calibration.BinCount, cfg.Calibration.MinSamples)
	loop := calibration.NewLoop(store, fitter, outcomeRepo, reportRepo, calibration.LoopConfig{
		RefitInterval: time.Duration(cfg.Calibration.RefitIntervalSeconds) * time.Second,
		WindowSize:    cfg.Calibration.WindowSize,
	}, logger)

	err := loop.RunOnce(ctx)
	report := loop.LastReport()
	if report == nil {
		return fmt.Errorf("refit produced no report: %w", err)
	}

	if !report.Committed {
		fmt.Printf("Refit failed: %s\n", report.FailureReason)
		return err
	}

	fmt.Printf("Refit committed\n")
	fmt.Printf("  Version:           %d\n", report.Version)
	fmt.Printf("  Sample size:       %d\n", report.SampleSize)
	fmt.Printf("  Calibration error: %.4f\n", report.CalibrationError)
	return nil
}

func showStatus(ctx context.Context) error {
	count, err := outcomeRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count outcomes: %w", err)
	}

	fmt.Printf("Realized outcomes stored: %d\n", count)
	fmt.Printf("Refit window size:        %d\n", cfg.Calibration.WindowSize)
	fmt.Printf("Minimum samples:          %d\n", cfg.Calibration.MinSamples)

	reports, err := reportRepo.Recent(ctx, 1)
	if err != nil {
		return fmt.Errorf("failed to load refit reports: %w", err)
	}
	if len(reports) == 0 {
		fmt.Println("No refits recorded yet")
		return nil
	}

	latest := reports[0]
	state := "failed"
	if latest.Committed {
		state = "committed"
	}
	fmt.Printf("Latest refit:             version %d, %s at %s\n",
		latest.Version, state, latest.FittedAt.Format(time.RFC3339))
	if latest.Committed {
		fmt.Printf("Calibration error:        %.4f\n", latest.CalibrationError)
	} else {
		fmt.Printf("Failure reason:           %s\n", latest.FailureReason)
	}
	return nil
}

func listReports(ctx context.Context) error {
	reports, err := reportRepo.Recent(ctx, reportLimit)
	if err != nil {
		return fmt.Errorf("failed to load refit reports: %w", err)
	}
	if len(reports) == 0 {
		fmt.Println("No refits recorded yet")
		return nil
	}

	fmt.Printf("%-8s %-22s %-10s %-8s %-10s %s\n",
		"VERSION", "FITTED AT", "SAMPLES", "STATE", "CAL ERR", "FAILURE")
	for _, r := range reports {
		state := "failed"
		if r.Committed {
			state = "committed"
		}
		fmt.Printf("%-8d %-22s %-10d %-8s %-10.4f %s\n",
			r.Version, r.FittedAt.Format(time.RFC3339), r.SampleSize, state, r.CalibrationError, r.FailureReason)
	}
	return nil
}
