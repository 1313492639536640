package ensemble

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yourusername/edge-engine/internal/config"
	"github.com/yourusername/edge-engine/internal/models"
)

func remoteModelConfig(url string) config.BaseModelConfig {
	return config.BaseModelConfig{
		Name:          "forest",
		URL:           url,
		Weight:        1.0,
		TimeoutMillis: 2000,
		RateLimit:     100,
	}
}

func TestRemoteModelPredict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/predict" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Features) != 3 {
			t.Errorf("expected 3 features, got %d", len(req.Features))
		}
		json.NewEncoder(w).Encode(predictResponse{Home: 0.5, Draw: 0.3, Away: 0.2})
	}))
	defer server.Close()

	model := NewRemoteModel(remoteModelConfig(server.URL), quietLogger())

	pred, err := model.Predict(context.Background(), models.FeatureVector{1, 2, 3})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if pred.Home != 0.5 || pred.Draw != 0.3 || pred.Away != 0.2 {
		t.Errorf("unexpected prediction %+v", pred)
	}
}

func TestRemoteModelRejectsInvalidDistribution(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(predictResponse{Home: 0.9, Draw: 0.9, Away: 0.9})
	}))
	defer server.Close()

	model := NewRemoteModel(remoteModelConfig(server.URL), quietLogger())

	if _, err := model.Predict(context.Background(), models.FeatureVector{1}); err == nil {
		t.Fatal("expected error for distribution not summing to 1")
	}
}

func TestRemoteModelSendsAPIKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(predictResponse{Home: 0.4, Draw: 0.3, Away: 0.3})
	}))
	defer server.Close()

	cfg := remoteModelConfig(server.URL)
	cfg.APIKey = "secret-key"
	model := NewRemoteModel(cfg, quietLogger())

	if _, err := model.Predict(context.Background(), models.FeatureVector{1}); err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
}

func TestRemoteModelCircuitBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	model := NewRemoteModel(remoteModelConfig(server.URL), quietLogger())

	for i := 0; i < defaultCircuitBreakerMax; i++ {
		if _, err := model.Predict(context.Background(), models.FeatureVector{1}); err == nil {
			t.Fatal("expected error from failing server")
		}
	}

	model.mu.Lock()
	open := model.circuitOpen
	model.mu.Unlock()
	if !open {
		t.Fatal("expected circuit breaker to open after consecutive failures")
	}
}
