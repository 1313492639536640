// Package ensemble provides the HTTP adapter for remote base models.
package ensemble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/edge-engine/internal/config"
	"github.com/yourusername/edge-engine/internal/models"
)

// RemoteModelDefaults holds recommended HTTP client settings
const (
	defaultMaxRetries        = 3
	defaultRetryWaitMin      = 100 * time.Millisecond
	defaultRetryWaitMax      = 2 * time.Second
	defaultCircuitBreakerMax = 5
)

// RemoteModel implements the Model contract against an external
// inference service speaking JSON over HTTP.
type RemoteModel struct {
	name    string
	baseURL string
	apiKey  string
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  *logrus.Logger

	mu                sync.Mutex
	consecutiveErrors int
	circuitOpen       bool
	lastError         error
}

// predictRequest is the wire payload sent to the inference service
type predictRequest struct {
	Features []float64 `json:"features"`
}

// predictResponse is the wire payload returned by the inference service
type predictResponse struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// NewRemoteModel creates a rate-limited, retrying HTTP base model client
func NewRemoteModel(cfg config.BaseModelConfig, logger *logrus.Logger) *RemoteModel {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = time.Duration(cfg.TimeoutMillis) * time.Millisecond
	retryClient.RetryMax = defaultMaxRetries
	retryClient.RetryWaitMin = defaultRetryWaitMin
	retryClient.RetryWaitMax = defaultRetryWaitMax

	// Don't log verbose retry info
	retryClient.Logger = nil

	return &RemoteModel{
		name:    cfg.Name,
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:  logger,
	}
}

// Name returns the model name
func (m *RemoteModel) Name() string {
	return m.name
}

// Predict posts the feature vector to the inference service and decodes
// the probability triple. Requests are rate limited; consecutive
// failures beyond a threshold open a circuit until a request succeeds.
func (m *RemoteModel) Predict(ctx context.Context, features models.FeatureVector) (models.ModelPrediction, error) {
	m.mu.Lock()
	if m.circuitOpen {
		lastErr := m.lastError
		m.mu.Unlock()
		return models.ModelPrediction{}, fmt.Errorf("circuit breaker open for model %s: %v", m.name, lastErr)
	}
	m.mu.Unlock()

	if err := m.limiter.Wait(ctx); err != nil {
		return models.ModelPrediction{}, fmt.Errorf("rate limiter error: %w", err)
	}

	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return models.ModelPrediction{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/predict", bytes.NewReader(body))
	if err != nil {
		return models.ModelPrediction{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		m.recordFailure(err)
		return models.ModelPrediction{}, fmt.Errorf("model %s request failed: %w", m.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("model %s returned status %d: %s", m.name, resp.StatusCode, string(respBody))
		m.recordFailure(err)
		return models.ModelPrediction{}, err
	}

	var decoded predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		m.recordFailure(err)
		return models.ModelPrediction{}, fmt.Errorf("model %s returned malformed response: %w", m.name, err)
	}

	m.recordSuccess()

	pred := models.ModelPrediction{Home: decoded.Home, Draw: decoded.Draw, Away: decoded.Away}
	if err := pred.Validate(); err != nil {
		return models.ModelPrediction{}, fmt.Errorf("model %s returned invalid distribution: %w", m.name, err)
	}
	return pred, nil
}

func (m *RemoteModel) recordFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.consecutiveErrors++
	m.lastError = err
	if m.consecutiveErrors >= defaultCircuitBreakerMax && !m.circuitOpen {
		m.circuitOpen = true
		m.logger.WithError(err).WithFields(logrus.Fields{
			"model":              m.name,
			"consecutive_errors": m.consecutiveErrors,
		}).Warn("Circuit breaker opened for base model")
	}
}

func (m *RemoteModel) recordSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.consecutiveErrors = 0
	m.circuitOpen = false
}
