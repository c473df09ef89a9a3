package repository

import (
	"context"
	"errors"
	"time"

	"github.com/avolkhin/shortener/internal/models"
)

var (
	// ErrNotFound covers missing records, and for IncrementClicks also
	// inactive and expired ones: callers must not be able to tell the
	// three apart.
	ErrNotFound = errors.New("link not found")

	// ErrCodeTaken is returned when an insert loses the race on the
	// code unique constraint. The creation path retries with a fresh
	// code; the error never reaches a caller.
	ErrCodeTaken = errors.New("code already taken")
)

// Store is the durable home of link records.
type Store interface {
	Insert(ctx context.Context, link *models.Link) error
	FindByCode(ctx context.Context, code string) (*models.Link, error)
	CodeExists(ctx context.Context, code string) (bool, error)

	// IncrementClicks applies the liveness check and the click
	// increment against a single snapshot of the record and returns
	// the original URL on success.
	IncrementClicks(ctx context.Context, code string, now time.Time) (string, error)

	Update(ctx context.Context, code string, upd models.LinkUpdate) (*models.Link, error)
	ListByOwner(ctx context.Context, userID string, offset, limit int) ([]models.Link, int, error)

	Ping(ctx context.Context) error
	Close() error
}
