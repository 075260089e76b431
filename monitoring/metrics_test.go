package monitoring

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsclf/inference"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return string(body)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{inference.ErrInvalidInput, OutcomeInvalidInput},
		{fmt.Errorf("wrapped: %w", inference.ErrModelsNotReady), OutcomeNotReady},
		{&inference.PredictionError{Stage: "decode", Err: assert.AnError}, OutcomeFailed},
		{assert.AnError, OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestMetrics_Export(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest(http.MethodPost, "POST /predict", http.StatusOK, 12*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	m.ObservePrediction("Sports", nil)
	m.ObservePrediction("Sports", nil)
	m.ObservePrediction("", inference.ErrInvalidInput)
	m.ObserveEvent(inference.Event{
		Type:   inference.EventReloaded,
		Health: inference.HealthStatus{Status: inference.StatusHealthy, Version: 4},
	})
	m.ObserveEvent(inference.Event{
		Type:   inference.EventReloadFailed,
		Health: inference.HealthStatus{Status: inference.StatusHealthy, Version: 4},
	})

	out := scrape(t, m)

	assert.Contains(t, out, `newsclf_http_requests_total{method="POST",route="POST /predict",status="200"} 1`)
	assert.Contains(t, out, `newsclf_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, out, `newsclf_predictions_total{category="Sports"} 2`)
	assert.Contains(t, out, `newsclf_prediction_requests_total{outcome="invalid_input"} 1`)
	assert.Contains(t, out, `newsclf_model_reloads_total{result="success"} 1`)
	assert.Contains(t, out, `newsclf_model_reloads_total{result="failure"} 1`)
	assert.Contains(t, out, "newsclf_model_bundle_version 4")
	assert.Contains(t, out, "newsclf_models_ready 1")
	assert.Contains(t, out, "go_goroutines")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.ObservePrediction("Sports", nil)
		m.ObserveEvent(inference.Event{})
		m.SetBundle(inference.HealthStatus{})
	})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
