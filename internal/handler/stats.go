package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avolkhin/shortener/internal/auth"
	"github.com/avolkhin/shortener/internal/models"
	"github.com/avolkhin/shortener/internal/policy"
)

func (h *Handler) StatsHandler(rw http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	ident := auth.IdentityFromContext(r.Context())

	link, tier, err := h.service.Stats(r.Context(), code, ident)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	if tier == policy.TierFull {
		h.writeJSON(rw, http.StatusOK, models.NewFullStats(link))
		return
	}
	h.writeJSON(rw, http.StatusOK, models.NewPublicStats(link))
}
