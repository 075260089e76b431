package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"newsclf/inference"
	"newsclf/monitoring"
)

// RootMessage is the liveness message returned by GET /.
const RootMessage = "Nepali News Classifier API is running"

type RootResponse struct {
	Message      string `json:"message"`
	Status       string `json:"status"`
	ModelsLoaded bool   `json:"models_loaded"`
}

type PredictRequest struct {
	Text string `json:"text"`
}

type ReloadResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Handlers serves the classifier API from a shared inference.Service.
type Handlers struct {
	svc     *inference.Service
	metrics *monitoring.Metrics
	log     *zap.Logger
}

func NewHandlers(svc *inference.Service, metrics *monitoring.Metrics, log *zap.Logger) *Handlers {
	return &Handlers{svc: svc, metrics: metrics, log: log}
}

// Register mounts the API routes on mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("POST /predict", h.handlePredict)
	mux.HandleFunc("POST /reload-models", h.handleReload)
	mux.Handle("GET /metrics", h.metrics.Handler())
}

func (h *Handlers) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Message:      RootMessage,
		Status:       "active",
		ModelsLoaded: h.svc.ModelsLoaded(),
	})
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Health())
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	pred, err := h.svc.Predict(r.Context(), req.Text)
	h.metrics.ObservePrediction(pred.Category, err)
	if err != nil {
		resp := MapPredictError(err)
		respondError(w, resp.StatusCode, resp.Detail)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

func (h *Handlers) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reload(); err != nil {
		respondError(w, http.StatusInternalServerError, "Error reloading models: "+err.Error())
		return
	}
	h.log.Info("Models reloaded via API", zap.String("request_id", GetRequestID(r.Context())))
	writeJSON(w, http.StatusOK, ReloadResponse{
		Message: "Models reloaded successfully",
		Status:  "success",
	})
}
