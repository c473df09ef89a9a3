package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/avolkhin/shortener/internal/policy"
	"github.com/avolkhin/shortener/internal/service"
)

type Handler struct {
	service *service.ShortenerService
	logger  *zap.Logger
}

func NewHandler(service *service.ShortenerService, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) writeJSON(rw http.ResponseWriter, status int, payload any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	if err := json.NewEncoder(rw).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps service errors to HTTP statuses. Missing, expired
// and inactive links all answer 404 on the paths where that applies;
// the uniformity is deliberate.
func (h *Handler) writeError(rw http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyURL),
		errors.Is(err, service.ErrInvalidURL),
		errors.Is(err, policy.ErrInvalidPagination):
		http.Error(rw, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrUnauthenticated):
		http.Error(rw, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		http.Error(rw, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	case errors.Is(err, service.ErrNotFound):
		http.Error(rw, "Short URL not found", http.StatusNotFound)
	default:
		h.logger.Error("Unhandled service error", zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
