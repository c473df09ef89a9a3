package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) RedirectHandler(rw http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		http.Error(rw, "Empty short code", http.StatusBadRequest)
		return
	}

	originalURL, err := h.service.Resolve(r.Context(), code)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	// 307: the client keeps its method on the follow-up request
	rw.Header().Set("Location", originalURL)
	rw.WriteHeader(http.StatusTemporaryRedirect)
}
