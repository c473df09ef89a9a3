package models

import "time"

type SourceType string

const (
	SourceHuman     SourceType = "human"
	SourceService   SourceType = "service"
	SourceAnonymous SourceType = "anonymous"
	SourceUnknown   SourceType = "unknown"
)

// DefaultOwnerClientID is stored when no authenticated client is known.
const DefaultOwnerClientID = "unknown"

// Link is the persisted short-link record. Code and OriginalURL are
// immutable after creation; Clicks only ever grows.
type Link struct {
	ID              string         `db:"id" json:"id"`
	Code            string         `db:"code" json:"code"`
	OriginalURL     string         `db:"original_url" json:"original_url"`
	OwnerClientID   string         `db:"owner_client_id" json:"owner_client_id"`
	CreatedByUserID string         `db:"created_by_user_id" json:"created_by_user_id,omitempty"`
	SourceType      SourceType     `db:"source_type" json:"source_type"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	ExpiresAt       *time.Time     `db:"expires_at" json:"expires_at,omitempty"`
	IsActive        bool           `db:"is_active" json:"is_active"`
	Clicks          int64          `db:"clicks" json:"clicks"`
	Extras          map[string]any `db:"extras" json:"extras,omitempty"`
}

// Expired reports whether the link has an expiry at or before now.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

type ShortenRequest struct {
	URL       string         `json:"url"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	Extras    map[string]any `json:"extras,omitempty"`
}

type ShortenResponse struct {
	Code        string `json:"code"`
	ShortURL    string `json:"short_url"`
	OriginalURL string `json:"original_url"`
}

// PublicStats is the projection shown to callers who do not own the
// record. Clicks and ownership fields are absent from the payload, not
// merely zeroed.
type PublicStats struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// FullStats is the owner projection (also served to everyone when auth
// is disabled).
type FullStats struct {
	Code            string         `json:"code"`
	OriginalURL     string         `json:"original_url"`
	OwnerClientID   string         `json:"owner_client_id"`
	CreatedByUserID string         `json:"created_by_user_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	ExpiresAt       *time.Time     `json:"expires_at,omitempty"`
	IsActive        bool           `json:"is_active"`
	SourceType      SourceType     `json:"source_type"`
	Clicks          int64          `json:"clicks"`
	Extras          map[string]any `json:"extras,omitempty"`
}

func NewPublicStats(l *Link) PublicStats {
	return PublicStats{
		Code:        l.Code,
		OriginalURL: l.OriginalURL,
		CreatedAt:   l.CreatedAt,
	}
}

func NewFullStats(l *Link) FullStats {
	return FullStats{
		Code:            l.Code,
		OriginalURL:     l.OriginalURL,
		OwnerClientID:   l.OwnerClientID,
		CreatedByUserID: l.CreatedByUserID,
		CreatedAt:       l.CreatedAt,
		ExpiresAt:       l.ExpiresAt,
		IsActive:        l.IsActive,
		SourceType:      l.SourceType,
		Clicks:          l.Clicks,
		Extras:          l.Extras,
	}
}

// LinkUpdate carries the owner-mutable fields. Nil means "leave as
// is", so an expiry can be moved but not cleared back to null through
// this type.
type LinkUpdate struct {
	IsActive  *bool      `json:"is_active,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type OwnedURLItem struct {
	Code        string     `json:"code"`
	ShortURL    string     `json:"short_url"`
	OriginalURL string     `json:"original_url"`
	Clicks      int64      `json:"clicks"`
	CreatedAt   time.Time  `json:"created_at"`
	IsActive    bool       `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type OwnedURLsResponse struct {
	Items    []OwnedURLItem `json:"items"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Total    int            `json:"total"`
}
