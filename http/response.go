package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"newsclf/inference"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// ErrorResponse is the HTTP form of a service error.
type ErrorResponse struct {
	StatusCode int
	Detail     string
}

// MapPredictError maps inference errors from Predict to an HTTP response.
func MapPredictError(err error) ErrorResponse {
	var perr *inference.PredictionError
	switch {
	case errors.Is(err, inference.ErrInvalidInput):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Detail:     "News text cannot be empty",
		}
	case errors.Is(err, inference.ErrModelsNotReady):
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Detail:     "ML models not loaded. Please check the backend logs.",
		}
	case errors.As(err, &perr):
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Detail:     "Error during prediction: " + perr.Error(),
		}
	default:
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Detail:     "Error during prediction: " + err.Error(),
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorBody{Detail: detail})
}
