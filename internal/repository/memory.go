package repository

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avolkhin/shortener/internal/models"
)

// MemoryStore keeps link records in process memory, optionally
// snapshotted to a JSON file so a restart does not lose them. Used when
// no database DSN is configured, and by tests.
type MemoryStore struct {
	mu     sync.RWMutex
	saveMu sync.Mutex
	links  map[string]*models.Link

	storagePath string
	logger      *zap.Logger
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(storagePath string, logger *zap.Logger) *MemoryStore {
	s := &MemoryStore{
		links:       make(map[string]*models.Link),
		storagePath: storagePath,
		logger:      logger,
	}
	s.loadFromFile()
	return s
}

func (s *MemoryStore) Insert(ctx context.Context, link *models.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.links[link.Code]; exists {
		return ErrCodeTaken
	}

	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	link.CreatedAt = time.Now().UTC()

	stored := *link
	s.links[link.Code] = &stored

	s.scheduleSave()
	return nil
}

func (s *MemoryStore) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, exists := s.links[code]
	if !exists {
		return nil, ErrNotFound
	}

	found := *link
	return &found, nil
}

func (s *MemoryStore) CodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.links[code]
	return exists, nil
}

// IncrementClicks checks liveness and bumps the counter under a single
// lock acquisition, mirroring the atomic UPDATE of the Postgres store.
func (s *MemoryStore) IncrementClicks(ctx context.Context, code string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, exists := s.links[code]
	if !exists || !link.IsActive || link.Expired(now) {
		return "", ErrNotFound
	}

	link.Clicks++
	s.scheduleSave()
	return link.OriginalURL, nil
}

func (s *MemoryStore) Update(ctx context.Context, code string, upd models.LinkUpdate) (*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, exists := s.links[code]
	if !exists {
		return nil, ErrNotFound
	}

	if upd.IsActive != nil {
		link.IsActive = *upd.IsActive
	}
	if upd.ExpiresAt != nil {
		expiresAt := *upd.ExpiresAt
		link.ExpiresAt = &expiresAt
	}

	s.scheduleSave()

	updated := *link
	return &updated, nil
}

func (s *MemoryStore) ListByOwner(ctx context.Context, userID string, offset, limit int) ([]models.Link, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []models.Link
	for _, link := range s.links {
		if userID != "" && link.CreatedByUserID == userID {
			owned = append(owned, *link)
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	total := len(owned)
	if offset >= total {
		return []models.Link{}, total, nil
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return owned[offset:end], total, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	s.saveToFile()
	return nil
}

func (s *MemoryStore) scheduleSave() {
	if s.storagePath == "" {
		return
	}
	go s.saveToFile()
}

func (s *MemoryStore) saveToFile() {
	if s.storagePath == "" {
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	records := make([]models.Link, 0, len(s.links))
	for _, link := range s.links {
		records = append(records, *link)
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		s.logger.Error("Failed to marshal links for saving", zap.Error(err))
		return
	}

	if err := os.WriteFile(s.storagePath, data, 0644); err != nil {
		s.logger.Error("Failed to write storage file", zap.Error(err))
	}
}

func (s *MemoryStore) loadFromFile() {
	if s.storagePath == "" {
		return
	}

	data, err := os.ReadFile(s.storagePath)
	if err != nil {
		return
	}

	var records []models.Link
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Error("Failed to parse storage file", zap.Error(err))
		return
	}

	s.mu.Lock()
	for i := range records {
		link := records[i]
		s.links[link.Code] = &link
	}
	s.mu.Unlock()
}
