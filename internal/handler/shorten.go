package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/avolkhin/shortener/internal/auth"
	"github.com/avolkhin/shortener/internal/models"
)

func (h *Handler) ShortenHandler(rw http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		http.Error(rw, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}

	var req models.ShortenRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		http.Error(rw, "Invalid JSON", http.StatusBadRequest)
		return
	}

	ident := auth.IdentityFromContext(r.Context())

	link, err := h.service.CreateShortURL(r.Context(), req, ident)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	h.logger.Info("Short URL created",
		zap.String("code", link.Code),
		zap.String("sourceType", string(link.SourceType)),
	)

	h.writeJSON(rw, http.StatusCreated, models.ShortenResponse{
		Code:        link.Code,
		ShortURL:    h.service.ShortURL(link.Code),
		OriginalURL: link.OriginalURL,
	})
}
