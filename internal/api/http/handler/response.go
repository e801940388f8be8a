package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dtroode/userkeeper-server/internal/apierrors"
	"github.com/dtroode/userkeeper-server/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code the same way the gRPC handlers map it
// to a status. Unknown errors are hidden behind a generic message.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.HTTPStatus, errorResponse{Error: apiErr.Message})
		return
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "record not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
