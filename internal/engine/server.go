package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/models"
	"github.com/yourusername/edge-engine/internal/repository"
)

// ServerConfig configures the JSON ingress for the engine daemon
type ServerConfig struct {
	Port            int
	DefaultProfile  models.RiskProfile
	DefaultBankroll float64
}

// Server exposes the evaluation pipeline and outcome ingestion over
// HTTP. The serving layer proper lives elsewhere; this is the minimal
// ingress the daemon needs to be driven.
type Server struct {
	pipeline *Pipeline
	outcomes repository.OutcomeRepository
	cfg      ServerConfig
	logger   *logrus.Logger
	server   *http.Server
}

// NewServer creates the engine ingress server
func NewServer(pipeline *Pipeline, outcomes repository.OutcomeRepository, cfg ServerConfig, logger *logrus.Logger) *Server {
	return &Server{
		pipeline: pipeline,
		outcomes: outcomes,
		cfg:      cfg,
		logger:   logger,
	}
}

// Routes returns the ingress handler, exposed separately for tests
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/predict", s.handlePredict)
	mux.HandleFunc("/v1/outcomes", s.handleOutcome)
	return mux
}

// Start runs the ingress server, blocking until it stops
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.WithField("port", s.cfg.Port).Info("Engine ingress listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the ingress server gracefully
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// handlePredict runs one match through the pipeline
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	if req.MatchID == uuid.Nil {
		req.MatchID = uuid.New()
	}
	if req.Profile == "" {
		req.Profile = s.cfg.DefaultProfile
	}
	if req.Bankroll == 0 {
		req.Bankroll = s.cfg.DefaultBankroll
	}

	resp, err := s.pipeline.Evaluate(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientModels) {
			s.logger.WithError(err).Warn("Evaluation aborted, quorum not met")
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		s.logger.WithError(err).Error("Evaluation failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// outcomePayload is the wire format for recording a realized outcome
type outcomePayload struct {
	MatchID uuid.UUID              `json:"match_id"`
	Raw     models.ModelPrediction `json:"raw"`
	Result  string                 `json:"result"`
}

// handleOutcome appends a realized outcome to the calibration window
func (s *Server) handleOutcome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload outcomePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	result, err := models.ParseOutcome(payload.Result)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := payload.Raw.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if payload.MatchID == uuid.Nil {
		http.Error(w, "match_id is required", http.StatusBadRequest)
		return
	}

	outcome := models.RealizedOutcome{
		MatchID:    payload.MatchID,
		Raw:        payload.Raw,
		Result:     result,
		RecordedAt: time.Now().UTC(),
	}

	if err := s.outcomes.Append(r.Context(), outcome); err != nil {
		s.logger.WithError(err).Error("Failed to record realized outcome")
		http.Error(w, "failed to record outcome", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
