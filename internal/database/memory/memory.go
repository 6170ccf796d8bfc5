// Package memory provides mutex-guarded in-memory implementations of the
// repositories, used in tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/akarpov/shortly/internal/database"
	"github.com/akarpov/shortly/internal/models"
)

type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]*models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*models.User),
	}
}

func (r *UserRepository) Create(ctx context.Context, username, passwordHash, token string) (*models.User, error) {
	const op = "database.memory.UserRepository.Create"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrUsernameExists)
	}

	r.nextID++
	user := &models.User{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		Token:        token,
		CreatedAt:    time.Now().UTC(),
	}
	r.users[username] = user

	copied := *user
	return &copied, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "database.memory.UserRepository.GetByUsername"

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
	}

	copied := *user
	return &copied, nil
}

func (r *UserRepository) GetByToken(ctx context.Context, token string) (*models.User, error) {
	const op = "database.memory.UserRepository.GetByToken"

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Token == token {
			copied := *user
			return &copied, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, database.ErrTokenNotFound)
}

type URLRepository struct {
	mu   sync.RWMutex
	urls map[string]*models.URL
}

func NewURLRepository() *URLRepository {
	return &URLRepository{
		urls: make(map[string]*models.URL),
	}
}

func (r *URLRepository) Create(ctx context.Context, url *models.URL) (*models.URL, error) {
	const op = "database.memory.URLRepository.Create"

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.urls {
		if existing.Slug == url.Slug && existing.Domain == url.Domain {
			return nil, fmt.Errorf("%s: %w", op, database.ErrSlugExists)
		}
	}

	now := time.Now().UTC()
	copied := *url
	copied.CreatedAt = now
	copied.UpdatedAt = now
	r.urls[url.UUID] = &copied

	result := copied
	return &result, nil
}

func (r *URLRepository) GetForUser(ctx context.Context, userID int64, uuid string) (*models.URL, error) {
	const op = "database.memory.URLRepository.GetForUser"

	r.mu.RLock()
	defer r.mu.RUnlock()

	url, ok := r.urls[uuid]
	if !ok || url.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	copied := *url
	return &copied, nil
}

func (r *URLRepository) ListForUser(ctx context.Context, userID int64) ([]*models.URL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make([]*models.URL, 0)
	for _, url := range r.urls {
		if url.UserID == userID {
			copied := *url
			urls = append(urls, &copied)
		}
	}

	sort.SliceStable(urls, func(i, j int) bool {
		return urls[i].CreatedAt.Before(urls[j].CreatedAt)
	})
	return urls, nil
}

func (r *URLRepository) DeleteForUser(ctx context.Context, userID int64, uuid string) error {
	const op = "database.memory.URLRepository.DeleteForUser"

	r.mu.Lock()
	defer r.mu.Unlock()

	url, ok := r.urls[uuid]
	if !ok || url.UserID != userID {
		return fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	delete(r.urls, uuid)
	return nil
}

func (r *URLRepository) ResolveSlug(ctx context.Context, slug string) (*models.URL, error) {
	const op = "database.memory.URLRepository.ResolveSlug"

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, url := range r.urls {
		if url.Slug == slug {
			url.Clicks++
			url.UpdatedAt = time.Now().UTC()

			copied := *url
			return &copied, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
}

func (r *URLRepository) IncrementClicks(ctx context.Context, slug string) error {
	const op = "database.memory.URLRepository.IncrementClicks"

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, url := range r.urls {
		if url.Slug == slug {
			url.Clicks++
			url.UpdatedAt = time.Now().UTC()
			break
		}
	}

	return nil
}
