package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/avolkhin/shortener/internal/auth"
	"github.com/avolkhin/shortener/internal/generator"
	"github.com/avolkhin/shortener/internal/models"
	"github.com/avolkhin/shortener/internal/policy"
	"github.com/avolkhin/shortener/internal/repository"
)

var (
	ErrEmptyURL        = errors.New("empty url")
	ErrInvalidURL      = errors.New("invalid url")
	ErrNotFound        = errors.New("link not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not the owner of this link")
)

// ShortenerService wires the code generator, the access policy and the
// store into the operations the handlers expose.
type ShortenerService struct {
	store       repository.Store
	gen         *generator.Generator
	baseURL     string
	authEnabled bool
	logger      *zap.Logger
}

func NewShortenerService(store repository.Store, gen *generator.Generator, baseURL string, authEnabled bool, logger *zap.Logger) *ShortenerService {
	return &ShortenerService{
		store:       store,
		gen:         gen,
		baseURL:     baseURL,
		authEnabled: authEnabled,
		logger:      logger,
	}
}

// ShortURL returns the fully-qualified redirect URL for a code.
func (s *ShortenerService) ShortURL(code string) string {
	full, err := url.JoinPath(s.baseURL, code)
	if err != nil {
		return s.baseURL + "/" + code
	}
	return full
}

// CreateShortURL validates the destination, derives ownership from the
// caller's identity and persists a fully-formed record under a fresh
// code. A lost race on the code unique constraint is absorbed by
// drawing again; it is never surfaced to the caller.
func (s *ShortenerService) CreateShortURL(ctx context.Context, req models.ShortenRequest, ident *auth.Identity) (*models.Link, error) {
	if req.URL == "" {
		s.logger.Warn("Attempt to create short URL for empty string")
		return nil, ErrEmptyURL
	}

	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		s.logger.Warn("Invalid URL provided", zap.String("url", req.URL))
		return nil, ErrInvalidURL
	}

	ownerClientID := models.DefaultOwnerClientID
	createdByUserID := ""
	if ident != nil {
		if ident.ClientID != "" {
			ownerClientID = ident.ClientID
		}
		createdByUserID = ident.Subject
	}

	for {
		code, err := s.gen.Generate(ctx, s.store.CodeExists)
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}

		link := &models.Link{
			Code:            code,
			OriginalURL:     req.URL,
			OwnerClientID:   ownerClientID,
			CreatedByUserID: createdByUserID,
			SourceType:      policy.DeriveSourceType(s.authEnabled, ident),
			ExpiresAt:       req.ExpiresAt,
			IsActive:        true,
			Extras:          req.Extras,
		}

		err = s.store.Insert(ctx, link)
		if errors.Is(err, repository.ErrCodeTaken) {
			s.logger.Info("Code collision on insert, regenerating",
				zap.String("code", code))
			continue
		}
		if err != nil {
			s.logger.Error("Failed to save link", zap.Error(err))
			return nil, err
		}

		return link, nil
	}
}

// Resolve returns the destination for a live code and counts the
// click. Missing, inactive and expired codes are indistinguishable to
// the caller.
func (s *ShortenerService) Resolve(ctx context.Context, code string) (string, error) {
	originalURL, err := s.store.IncrementClicks(ctx, code, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		s.logger.Error("Failed to resolve code", zap.String("code", code), zap.Error(err))
		return "", err
	}
	return originalURL, nil
}

// Stats loads a record and decides the caller's visibility tier.
// Inactive and expired records hide like unknown codes, even from
// their owner.
func (s *ShortenerService) Stats(ctx context.Context, code string, ident *auth.Identity) (*models.Link, policy.Tier, error) {
	link, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, policy.TierPublic, ErrNotFound
		}
		s.logger.Error("Failed to load link", zap.String("code", code), zap.Error(err))
		return nil, policy.TierPublic, err
	}

	if !link.IsActive || link.Expired(time.Now().UTC()) {
		return nil, policy.TierPublic, ErrNotFound
	}

	return link, policy.Evaluate(link, s.authEnabled, ident), nil
}

// ListOwned returns one page of the caller's links, newest first,
// together with the total count of owned links.
func (s *ShortenerService) ListOwned(ctx context.Context, ident *auth.Identity, page, pageSize int) ([]models.Link, int, error) {
	if ident == nil || ident.Subject == "" {
		return nil, 0, ErrUnauthenticated
	}

	if err := policy.ValidatePagination(page, pageSize); err != nil {
		return nil, 0, err
	}

	links, total, err := s.store.ListByOwner(ctx, ident.Subject, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("Failed to list owned links",
			zap.String("userID", ident.Subject),
			zap.Error(err))
		return nil, 0, err
	}

	return links, total, nil
}

// UpdateLink applies owner-only mutations of the active flag and the
// expiry deadline.
func (s *ShortenerService) UpdateLink(ctx context.Context, code string, ident *auth.Identity, upd models.LinkUpdate) (*models.Link, error) {
	if ident == nil || ident.Subject == "" {
		return nil, ErrUnauthenticated
	}

	link, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !policy.IsOwner(link, ident) {
		return nil, ErrForbidden
	}

	updated, err := s.store.Update(ctx, code, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("Failed to update link", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Link updated",
		zap.String("code", code),
		zap.String("userID", ident.Subject))

	return updated, nil
}

func (s *ShortenerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
