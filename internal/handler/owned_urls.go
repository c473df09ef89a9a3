package handler

import (
	"net/http"
	"strconv"

	"github.com/avolkhin/shortener/internal/auth"
	"github.com/avolkhin/shortener/internal/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

func (h *Handler) OwnedURLsHandler(rw http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	page, ok := queryInt(r, "page", defaultPage)
	if !ok {
		http.Error(rw, "page must be an integer", http.StatusBadRequest)
		return
	}
	pageSize, ok := queryInt(r, "page_size", defaultPageSize)
	if !ok {
		http.Error(rw, "page_size must be an integer", http.StatusBadRequest)
		return
	}

	links, total, err := h.service.ListOwned(r.Context(), ident, page, pageSize)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	items := make([]models.OwnedURLItem, 0, len(links))
	for _, link := range links {
		items = append(items, models.OwnedURLItem{
			Code:        link.Code,
			ShortURL:    h.service.ShortURL(link.Code),
			OriginalURL: link.OriginalURL,
			Clicks:      link.Clicks,
			CreatedAt:   link.CreatedAt,
			IsActive:    link.IsActive,
			ExpiresAt:   link.ExpiresAt,
		})
	}

	h.writeJSON(rw, http.StatusOK, models.OwnedURLsResponse{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

func queryInt(r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
