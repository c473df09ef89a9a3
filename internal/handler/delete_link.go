package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avolkhin/shortener/internal/auth"
	"github.com/avolkhin/shortener/internal/models"
)

// DeleteLinkHandler soft-deletes a link by flipping is_active off.
// The record stays in storage but stops resolving and hides from
// stats. Owner-only, like PATCH.
func (h *Handler) DeleteLinkHandler(rw http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	ident := auth.IdentityFromContext(r.Context())

	inactive := false
	if _, err := h.service.UpdateLink(r.Context(), code, ident, models.LinkUpdate{IsActive: &inactive}); err != nil {
		h.writeError(rw, err)
		return
	}

	rw.WriteHeader(http.StatusNoContent)
}
