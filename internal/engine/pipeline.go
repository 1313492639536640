// Package engine orchestrates the synchronous evaluation pipeline:
// ensemble, calibration, edge detection, staking and risk simulation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/calibration"
	"github.com/yourusername/edge-engine/internal/edge"
	"github.com/yourusername/edge-engine/internal/logger"
	"github.com/yourusername/edge-engine/internal/metrics"
	"github.com/yourusername/edge-engine/internal/models"
	"github.com/yourusername/edge-engine/internal/risk"
	"github.com/yourusername/edge-engine/internal/staking"
)

// Combiner is the ensemble contract the pipeline depends on; both the
// plain and the cached combiner satisfy it.
type Combiner interface {
	Combine(ctx context.Context, features models.FeatureVector) (*models.EnsemblePrediction, error)
}

// Pipeline wires the evaluation stages together. It holds no mutable
// state of its own; the only shared state is the calibration snapshot,
// which each request reads once.
type Pipeline struct {
	combiner   Combiner
	calibrator *calibration.Calibrator
	detector   *edge.Detector
	sizer      *staking.Sizer
	simulator  *risk.Simulator
	audit      *logger.BetAuditLogger
	logger     *logrus.Logger
}

// NewPipeline creates the evaluation pipeline
func NewPipeline(combiner Combiner, calibrator *calibration.Calibrator, detector *edge.Detector,
	sizer *staking.Sizer, simulator *risk.Simulator, audit *logger.BetAuditLogger,
	log *logrus.Logger) *Pipeline {

	return &Pipeline{
		combiner:   combiner,
		calibrator: calibrator,
		detector:   detector,
		sizer:      sizer,
		simulator:  simulator,
		audit:      audit,
		logger:     log,
	}
}

// Evaluate runs one match through the full pipeline.
//
// Ensemble failure (quorum not met) fails the whole request. Odds
// errors are isolated per bookmaker. In degraded mode (uncalibrated
// snapshot or missing base models) the raw prediction is still
// returned but no value bets are emitted.
func (p *Pipeline) Evaluate(ctx context.Context, req Request) (*Response, error) {
	if len(req.Features) == 0 {
		return nil, fmt.Errorf("empty feature vector")
	}
	if req.Bankroll <= 0 {
		return nil, fmt.Errorf("bankroll must be positive, got %v", req.Bankroll)
	}

	start := time.Now()

	ep, err := p.combiner.Combine(ctx, req.Features)
	if err != nil {
		return nil, err
	}

	cp := p.calibrator.Apply(ep)
	degraded := cp.Uncalibrated || !ep.FullQuorum()

	resp := &Response{
		MatchID:       req.MatchID,
		Prediction:    cp,
		Votes:         ep.Votes,
		Disagreement:  ep.Disagreement,
		MissingModels: ep.Missing,
		Degraded:      degraded,
		Bets:          []BetEvaluation{},
	}

	if degraded {
		reason := "missing base models"
		if cp.Uncalibrated {
			reason = "no calibration state"
		}
		for _, odds := range req.Odds {
			p.audit.LogSuppressedBet(req.MatchID.String(), odds.Bookmaker, reason)
		}
		metrics.RecordPrediction(true, time.Since(start).Seconds())
		return resp, nil
	}

	for _, odds := range req.Odds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		eval, err := p.evaluateBookmaker(ctx, req, cp, ep, odds)
		if err != nil {
			return nil, err
		}
		if eval != nil {
			resp.Bets = append(resp.Bets, *eval)
		}
	}

	metrics.RecordPrediction(false, time.Since(start).Seconds())
	return resp, nil
}

// evaluateBookmaker runs detection, sizing and simulation for one
// bookmaker's odds. Invalid odds are swallowed after logging; they
// must not fail the other bookmakers.
func (p *Pipeline) evaluateBookmaker(ctx context.Context, req Request, cp models.CalibratedPrediction,
	ep *models.EnsemblePrediction, odds models.MarketOdds) (*BetEvaluation, error) {

	bet, err := p.detector.Detect(req.MatchID, cp, ep, odds)
	if err != nil {
		if errors.Is(err, models.ErrInvalidOdds) {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"match_id":  req.MatchID.String(),
				"bookmaker": odds.Bookmaker,
			}).Warn("Skipping bookmaker with invalid odds")
			return nil, nil
		}
		return nil, err
	}
	if bet == nil {
		return nil, nil
	}

	rec, err := p.sizer.Size(*bet, req.Bankroll, req.Profile)
	if err != nil {
		return nil, fmt.Errorf("sizing %s bet: %w", odds.Bookmaker, err)
	}
	p.audit.LogStakeDecision(rec, req.Bankroll)

	eval := &BetEvaluation{Bet: *bet, Recommendation: rec}
	if !rec.ShouldBet {
		return eval, nil
	}

	result, err := p.simulator.Simulate(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("simulating %s bet: %w", odds.Bookmaker, err)
	}
	eval.Simulation = &result

	return eval, nil
}
