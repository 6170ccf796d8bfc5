package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarpov/shortly/internal/database"
	"github.com/akarpov/shortly/internal/models"
)

func TestUserRepository(t *testing.T) {
	t.Run("create and lookup", func(t *testing.T) {
		repo := NewUserRepository()

		created, err := repo.Create(context.TODO(), "alice", "hash1", "token1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)

		byName, err := repo.GetByUsername(context.TODO(), "alice")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byName.ID)

		byToken, err := repo.GetByToken(context.TODO(), "token1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byToken.ID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo := NewUserRepository()

		_, err := repo.Create(context.TODO(), "alice", "hash1", "token1")
		require.NoError(t, err)

		user, err := repo.Create(context.TODO(), "alice", "hash2", "token2")
		assert.ErrorIs(t, err, database.ErrUsernameExists)
		assert.Nil(t, user)
	})

	t.Run("unknown username", func(t *testing.T) {
		repo := NewUserRepository()

		user, err := repo.GetByUsername(context.TODO(), "bob")
		assert.ErrorIs(t, err, database.ErrUserNotFound)
		assert.Nil(t, user)
	})

	t.Run("unknown token", func(t *testing.T) {
		repo := NewUserRepository()

		user, err := repo.GetByToken(context.TODO(), "bad-token")
		assert.ErrorIs(t, err, database.ErrTokenNotFound)
		assert.Nil(t, user)
	})
}

func TestURLRepository(t *testing.T) {
	newURL := func(uuid, slug string, userID int64) *models.URL {
		return &models.URL{
			UUID:        uuid,
			OriginalURL: "https://example.com",
			Slug:        slug,
			Domain:      "sh.example.com",
			UserID:      userID,
		}
	}

	t.Run("create and get", func(t *testing.T) {
		repo := NewURLRepository()

		created, err := repo.Create(context.TODO(), newURL("u1", "abc1234", 1))
		require.NoError(t, err)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := repo.GetForUser(context.TODO(), 1, "u1")
		require.NoError(t, err)
		assert.Equal(t, "abc1234", got.Slug)
		assert.Zero(t, got.Clicks)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		repo := NewURLRepository()

		_, err := repo.Create(context.TODO(), newURL("u1", "abc1234", 1))
		require.NoError(t, err)

		url, err := repo.Create(context.TODO(), newURL("u2", "abc1234", 2))
		assert.ErrorIs(t, err, database.ErrSlugExists)
		assert.Nil(t, url)
	})

	t.Run("ownership scoping", func(t *testing.T) {
		repo := NewURLRepository()

		_, err := repo.Create(context.TODO(), newURL("u1", "abc1234", 1))
		require.NoError(t, err)

		url, err := repo.GetForUser(context.TODO(), 2, "u1")
		assert.ErrorIs(t, err, database.ErrURLNotFound)
		assert.Nil(t, url)

		err = repo.DeleteForUser(context.TODO(), 2, "u1")
		assert.ErrorIs(t, err, database.ErrURLNotFound)
	})

	t.Run("list is scoped and ordered", func(t *testing.T) {
		repo := NewURLRepository()

		_, err := repo.Create(context.TODO(), newURL("u1", "abc1234", 1))
		require.NoError(t, err)
		_, err = repo.Create(context.TODO(), newURL("u2", "def5678", 1))
		require.NoError(t, err)
		_, err = repo.Create(context.TODO(), newURL("u3", "ghi9012", 2))
		require.NoError(t, err)

		urls, err := repo.ListForUser(context.TODO(), 1)
		require.NoError(t, err)
		require.Len(t, urls, 2)
		assert.Equal(t, "u1", urls[0].UUID)
		assert.Equal(t, "u2", urls[1].UUID)
	})

	t.Run("delete", func(t *testing.T) {
		repo := NewURLRepository()

		_, err := repo.Create(context.TODO(), newURL("u1", "abc1234", 1))
		require.NoError(t, err)

		require.NoError(t, repo.DeleteForUser(context.TODO(), 1, "u1"))

		url, err := repo.GetForUser(context.TODO(), 1, "u1")
		assert.ErrorIs(t, err, database.ErrURLNotFound)
		assert.Nil(t, url)
	})

	t.Run("resolve counts clicks", func(t *testing.T) {
		repo := NewURLRepository()

		_, err := repo.Create(context.TODO(), newURL("u1", "abc1234", 1))
		require.NoError(t, err)

		resolved, err := repo.ResolveSlug(context.TODO(), "abc1234")
		require.NoError(t, err)
		assert.Equal(t, int64(1), resolved.Clicks)
		assert.Equal(t, "https://example.com", resolved.OriginalURL)

		require.NoError(t, repo.IncrementClicks(context.TODO(), "abc1234"))

		got, err := repo.GetForUser(context.TODO(), 1, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Clicks)
	})

	t.Run("count unknown slug", func(t *testing.T) {
		repo := NewURLRepository()

		require.NoError(t, repo.IncrementClicks(context.TODO(), "missing"))
	})

	t.Run("resolve unknown slug", func(t *testing.T) {
		repo := NewURLRepository()

		url, err := repo.ResolveSlug(context.TODO(), "missing")
		assert.ErrorIs(t, err, database.ErrURLNotFound)
		assert.Nil(t, url)
	})
}
