package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/akarpov/shortly/internal/cache"
	"github.com/akarpov/shortly/internal/database"
	"github.com/akarpov/shortly/internal/models"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrMaxRetriesExceeded is returned when the maximum number of retries for generating a slug is exceeded.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating slug")

// slugAlphabet keeps generated slugs URL-safe without nanoid's default
// '-' and '_' so they read cleanly in short links.
const slugAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// URLRepository defines the URL store operations required by URLService.
type URLRepository interface {
	// Create inserts a new shortened URL.
	// Returns database.ErrSlugExists when the slug is already taken.
	Create(ctx context.Context, url *models.URL) (*models.URL, error)

	// GetForUser retrieves a URL by uuid scoped to its owner.
	// Returns database.ErrURLNotFound for both a missing record and a
	// record owned by another user.
	GetForUser(ctx context.Context, userID int64, uuid string) (*models.URL, error)

	// ListForUser retrieves all URLs owned by the user, oldest first.
	ListForUser(ctx context.Context, userID int64) ([]*models.URL, error)

	// DeleteForUser removes a URL by uuid scoped to its owner.
	// Returns database.ErrURLNotFound under the same rule as GetForUser.
	DeleteForUser(ctx context.Context, userID int64, uuid string) error

	// ResolveSlug returns the URL for a slug and atomically counts the visit.
	ResolveSlug(ctx context.Context, slug string) (*models.URL, error)

	// IncrementClicks counts a visit without fetching the record.
	IncrementClicks(ctx context.Context, slug string) error
}

// URLService provides ownership-scoped URL shortening operations and
// slug resolution for redirects.
type URLService struct {
	repo       URLRepository
	cache      cache.ResolveCache
	domain     string
	slugLength int
}

// NewURLService creates a URLService. The cache may be nil, in which case
// every redirect hits the repository.
func NewURLService(repo URLRepository, resolveCache cache.ResolveCache, domain string, slugLength int) *URLService {
	return &URLService{
		repo:       repo,
		cache:      resolveCache,
		domain:     domain,
		slugLength: slugLength,
	}
}

// Shorten creates a shortened URL owned by the user. With an empty alias a
// random slug is generated, retrying on collisions up to a maximum number of
// attempts. A non-empty alias is used as the slug; if it is already taken,
// database.ErrSlugExists is returned.
func (s *URLService) Shorten(ctx context.Context, userID int64, originalURL, alias string) (*models.URL, error) {
	const op = "service.URLService.Shorten"
	const maxRetries = 5

	if alias != "" {
		url, err := s.repo.Create(ctx, &models.URL{
			UUID:        uuid.NewString(),
			OriginalURL: originalURL,
			Slug:        alias,
			Domain:      s.domain,
			UserID:      userID,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	for i := 0; i < maxRetries; i++ {
		slug, err := gonanoid.Generate(slugAlphabet, s.slugLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate slug: %w", op, err)
		}

		url, err := s.repo.Create(ctx, &models.URL{
			UUID:        uuid.NewString(),
			OriginalURL: originalURL,
			Slug:        slug,
			Domain:      s.domain,
			UserID:      userID,
		})
		if err != nil {
			if errors.Is(err, database.ErrSlugExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// List retrieves all URLs owned by the user.
func (s *URLService) List(ctx context.Context, userID int64) ([]*models.URL, error) {
	const op = "service.URLService.List"

	urls, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list urls: %w", op, err)
	}

	return urls, nil
}

// Get retrieves a URL by uuid scoped to its owner.
func (s *URLService) Get(ctx context.Context, userID int64, uuid string) (*models.URL, error) {
	const op = "service.URLService.Get"

	url, err := s.repo.GetForUser(ctx, userID, uuid)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	return url, nil
}

// Delete removes a URL by uuid scoped to its owner and drops any cached
// resolution of its slug.
func (s *URLService) Delete(ctx context.Context, userID int64, uuid string) error {
	const op = "service.URLService.Delete"

	url, err := s.repo.GetForUser(ctx, userID, uuid)
	if err != nil {
		return fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	if err := s.repo.DeleteForUser(ctx, userID, uuid); err != nil {
		return fmt.Errorf("%s: failed to delete url: %w", op, err)
	}

	if s.cache != nil {
		// Best effort: a stale entry expires with its TTL anyway.
		_ = s.cache.Invalidate(ctx, url.Slug)
	}

	return nil
}

// Resolve returns the target URL for a slug and counts the visit. Cached
// resolutions skip the repository lookup but still count the click.
func (s *URLService) Resolve(ctx context.Context, slug string) (string, error) {
	const op = "service.URLService.Resolve"

	if s.cache != nil {
		targetURL, err := s.cache.Get(ctx, slug)
		if err == nil {
			if err := s.repo.IncrementClicks(ctx, slug); err != nil {
				return "", fmt.Errorf("%s: failed to count click: %w", op, err)
			}

			return targetURL, nil
		}
	}

	url, err := s.repo.ResolveSlug(ctx, slug)
	if err != nil {
		return "", fmt.Errorf("%s: failed to resolve slug: %w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, slug, url.OriginalURL)
	}

	return url.OriginalURL, nil
}
