package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avolkhin/shortener/internal/auth"
	"github.com/avolkhin/shortener/internal/models"
)

func (h *Handler) UpdateLinkHandler(rw http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	ident := auth.IdentityFromContext(r.Context())

	var upd models.LinkUpdate
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&upd); err != nil {
		http.Error(rw, "Invalid JSON", http.StatusBadRequest)
		return
	}

	link, err := h.service.UpdateLink(r.Context(), code, ident, upd)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	h.writeJSON(rw, http.StatusOK, models.NewFullStats(link))
}
