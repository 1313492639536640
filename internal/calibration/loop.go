package calibration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/metrics"
	"github.com/yourusername/edge-engine/internal/models"
	"github.com/yourusername/edge-engine/internal/repository"
)

// LoopState describes what the refit loop is currently doing
type LoopState string

// Loop states. Committed and Failed are transient: the loop returns to
// Idle after each refit and runs for the lifetime of the process.
const (
	StateIdle      LoopState = "idle"
	StateFitting   LoopState = "fitting"
	StateCommitted LoopState = "committed"
	StateFailed    LoopState = "failed"
)

// LoopConfig configures the live calibration loop
type LoopConfig struct {
	RefitInterval time.Duration
	WindowSize    int
	RefitTimeout  time.Duration
}

// Loop periodically refits the calibration curves from the rolling
// outcome window and atomically swaps the new snapshot into the store.
// It is the only writer of CalibrationState.
type Loop struct {
	store    *Store
	fitter   *Fitter
	outcomes repository.OutcomeRepository
	reports  repository.ReportRepository
	cfg      LoopConfig
	logger   *logrus.Logger

	cron  *cron.Cron
	refit sync.Mutex

	mu         sync.RWMutex
	state      LoopState
	lastReport *models.RefitReport
}

// NewLoop creates a calibration loop. The loop does not run until Start.
func NewLoop(store *Store, fitter *Fitter, outcomes repository.OutcomeRepository,
	reports repository.ReportRepository, cfg LoopConfig, logger *logrus.Logger) *Loop {

	if cfg.RefitTimeout <= 0 {
		cfg.RefitTimeout = 30 * time.Second
	}

	return &Loop{
		store:    store,
		fitter:   fitter,
		outcomes: outcomes,
		reports:  reports,
		cfg:      cfg,
		logger:   logger,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		state:    StateIdle,
	}
}

// Start schedules the periodic refit and begins running
func (l *Loop) Start() error {
	spec := fmt.Sprintf("@every %ds", int(l.cfg.RefitInterval.Seconds()))
	_, err := l.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), l.cfg.RefitTimeout)
		defer cancel()
		if err := l.RunOnce(ctx); err != nil {
			l.logger.WithError(err).Warn("Calibration refit did not commit")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refit job: %w", err)
	}

	l.cron.Start()
	l.logger.WithField("interval", l.cfg.RefitInterval.String()).Info("Calibration loop started")
	return nil
}

// Stop halts the schedule and waits for a running refit to finish
func (l *Loop) Stop() {
	<-l.cron.Stop().Done()
	l.refit.Lock()
	l.refit.Unlock()
	l.logger.Info("Calibration loop stopped")
}

// State returns the loop's current state
func (l *Loop) State() LoopState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// LastReport returns the most recent refit report, or nil before the
// first refit attempt.
func (l *Loop) LastReport() *models.RefitReport {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastReport
}

// RunOnce performs a single refit attempt. A refit already in progress
// makes this call a no-op; concurrent refits never race. On success the
// new snapshot is swapped in atomically; on failure the previous
// snapshot stays active and the failure is reported.
func (l *Loop) RunOnce(ctx context.Context) error {
	if !l.refit.TryLock() {
		l.logger.Debug("Refit already in progress, skipping")
		return nil
	}
	defer l.refit.Unlock()

	l.setState(StateFitting)
	start := time.Now()

	version := int64(1)
	if current := l.store.Current(); current != nil {
		version = current.Version + 1
	}

	report := models.RefitReport{Version: version, FittedAt: start.UTC()}

	window, err := l.outcomes.Window(ctx, l.cfg.WindowSize)
	if err == nil {
		report.SampleSize = len(window)
		var state *models.CalibrationState
		var calErr float64
		state, calErr, err = l.fitter.Fit(window, version)
		if err == nil {
			l.store.Swap(state)
			report.Committed = true
			report.CalibrationError = calErr

			metrics.CalibrationVersion.Set(float64(state.Version))
			metrics.CalibrationSampleSize.Set(float64(state.SampleSize))
			metrics.CalibrationError.Set(calErr)
		}
	}

	elapsed := time.Since(start)
	metrics.RecordRefit(report.Committed, elapsed.Seconds())

	if err != nil {
		report.FailureReason = err.Error()
		l.setState(StateFailed)
		l.logger.WithError(err).WithFields(logrus.Fields{
			"version":     version,
			"sample_size": report.SampleSize,
		}).Warn("Calibration refit failed, previous state retained")
	} else {
		l.setState(StateCommitted)
		l.logger.WithFields(logrus.Fields{
			"version":           version,
			"sample_size":       report.SampleSize,
			"calibration_error": report.CalibrationError,
			"duration":          elapsed.String(),
		}).Info("Calibration state committed")
	}

	l.finishReport(report)

	if saveErr := l.reports.Save(ctx, report); saveErr != nil {
		l.logger.WithError(saveErr).Error("Failed to persist refit report")
	}

	// Committed and Failed are transient; the loop rests at Idle
	l.setState(StateIdle)

	if err != nil {
		return fmt.Errorf("refit version %d: %w", version, err)
	}
	return nil
}

func (l *Loop) setState(state LoopState) {
	l.mu.Lock()
	l.state = state
	l.mu.Unlock()
}

func (l *Loop) finishReport(report models.RefitReport) {
	l.mu.Lock()
	l.lastReport = &report
	l.mu.Unlock()
}
