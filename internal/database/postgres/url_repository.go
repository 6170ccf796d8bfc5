package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/akarpov/shortly/internal/database"
	"github.com/akarpov/shortly/internal/models"
)

type urlRecord struct {
	UUID        string    `db:"uuid"`
	OriginalURL string    `db:"original_url"`
	Slug        string    `db:"slug"`
	Domain      string    `db:"domain"`
	Clicks      int64     `db:"clicks"`
	UserID      int64     `db:"user_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *urlRecord) ToURL() *models.URL {
	return &models.URL{
		UUID:        r.UUID,
		OriginalURL: r.OriginalURL,
		Slug:        r.Slug,
		Domain:      r.Domain,
		Clicks:      r.Clicks,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

func (r *URLRepository) Create(ctx context.Context, url *models.URL) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Create"

	rec := new(urlRecord)
	query := `INSERT INTO urls(uuid, original_url, slug, domain, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, url.UUID, url.OriginalURL, url.Slug, url.Domain, url.UserID)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrSlugExists)
		}

		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

func (r *URLRepository) GetForUser(ctx context.Context, userID int64, uuid string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetForUser"

	rec := new(urlRecord)
	query := `SELECT * FROM urls
		WHERE uuid = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, rec, query, uuid, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

func (r *URLRepository) ListForUser(ctx context.Context, userID int64) ([]*models.URL, error) {
	const op = "database.postgres.URLRepository.ListForUser"

	var recs []urlRecord
	query := `SELECT * FROM urls
		WHERE user_id = $1
		ORDER BY created_at`

	if err := r.db.SelectContext(ctx, &recs, query, userID); err != nil {
		return nil, fmt.Errorf("%s: failed to list url records: %w", op, err)
	}

	urls := make([]*models.URL, 0, len(recs))
	for i := range recs {
		urls = append(urls, recs[i].ToURL())
	}

	return urls, nil
}

func (r *URLRepository) DeleteForUser(ctx context.Context, userID int64, uuid string) error {
	const op = "database.postgres.URLRepository.DeleteForUser"

	query := `DELETE FROM urls
		WHERE uuid = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, uuid, userID)
	if err != nil {
		return fmt.Errorf("%s: failed to delete url record: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	return nil
}

// ResolveSlug returns the URL for a slug and counts the visit in the same
// statement, keeping the increment atomic under concurrent redirects.
func (r *URLRepository) ResolveSlug(ctx context.Context, slug string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.ResolveSlug"

	rec := new(urlRecord)
	query := `UPDATE urls
		SET clicks = clicks + 1
		WHERE slug = $1
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to resolve slug: %w", op, err)
	}

	return rec.ToURL(), nil
}

// IncrementClicks counts a visit served from the resolve cache.
func (r *URLRepository) IncrementClicks(ctx context.Context, slug string) error {
	const op = "database.postgres.URLRepository.IncrementClicks"

	query := `UPDATE urls
		SET clicks = clicks + 1
		WHERE slug = $1`

	if _, err := r.db.ExecContext(ctx, query, slug); err != nil {
		return fmt.Errorf("%s: failed to increment clicks: %w", op, err)
	}

	return nil
}
