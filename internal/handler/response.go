package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-user-service/internal/model"
	"go-user-service/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(w, status, model.APIResponse{
		Status:  model.StatusSuccess,
		Message: message,
		Data:    data,
	})
}

func writeSuccessCount(w http.ResponseWriter, status int, message string, count int64, data any) {
	writeEnvelope(w, status, model.APIResponse{
		Status:  model.StatusSuccess,
		Message: message,
		Count:   &count,
		Data:    data,
	})
}

// writeError maps internal failures onto the coarse client-facing
// taxonomy. Store and crypto detail stays in logs, never in responses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Unexpected server error"

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		message = apiErr.Message
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found"
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusConflict
		message = "User email already exists"
	case errors.Is(err, model.ErrInvalidCredentials), errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "User unauthorized"
	case errors.Is(err, model.ErrInvalidToken), errors.Is(err, model.ErrTokenExpired):
		status = http.StatusUnauthorized
		message = "Invalid token"
	case errors.Is(err, model.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
		message = "Service unavailable"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		message = "Invalid input"
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeEnvelope(w, status, model.APIResponse{
		Status:  model.StatusFail,
		Message: message,
	})
}

func writeEnvelope(w http.ResponseWriter, status int, body model.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
