package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/models"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondError maps domain errors onto status codes. Anything unrecognised
// becomes an opaque 500; the cause only reaches the log.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "validation failed", Field: verr.Field, Reason: verr.Reason})
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidArgument):
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrDuplicate):
		respondJSON(ctx, w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		logging.FromContext(ctx).Error("unhandled error", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return &models.ValidationError{Field: "body", Reason: "invalid request body"}
	}
	return nil
}

// pathID reads a positive integer route parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &models.ValidationError{Field: name, Reason: fmt.Sprintf("must be a positive integer, got %q", raw)}
	}
	return id, nil
}

// pathIDs reads several route parameters in order, stopping at the first bad one.
func pathIDs(r *http.Request, names ...string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, err := pathID(r, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
