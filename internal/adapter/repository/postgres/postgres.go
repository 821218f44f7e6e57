package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortly/internal/entity"
)

const (
	uniqueViolationErrCode = "23505"

	// Constraint names come from migrations/000001_create_urls_table.up.sql.
	shortCodeConstraint   = "urls_short_code_key"
	originalURLConstraint = "urls_original_url_active_key"

	defaultQueryTimeout = 3 * time.Second
)

const urlColumns = `id, short_code, original_url, clicks, created_by, is_active, created_at, last_accessed`

// uniqueViolation reports the violated constraint when err is a unique violation.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationErrCode {
		return pgErr.ConstraintName, true
	}
	return "", false
}

type urlDB struct {
	ID           int64        `db:"id"`
	ShortCode    string       `db:"short_code"`
	OriginalURL  string       `db:"original_url"`
	Clicks       int64        `db:"clicks"`
	CreatedBy    string       `db:"created_by"`
	IsActive     bool         `db:"is_active"`
	CreatedAt    time.Time    `db:"created_at"`
	LastAccessed sql.NullTime `db:"last_accessed"`
}

func (u *urlDB) toEntity() *entity.URL {
	url := &entity.URL{
		ID:          u.ID,
		ShortCode:   u.ShortCode,
		OriginalURL: u.OriginalURL,
		URLStats: entity.URLStats{
			Clicks: u.Clicks,
		},
		CreatedBy: u.CreatedBy,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}

	if u.LastAccessed.Valid {
		lastAccessed := u.LastAccessed.Time
		url.LastAccessed = &lastAccessed
	}

	return url
}

type Option func(*URLRepository)

// WithQueryTimeout bounds every statement issued by the repository.
func WithQueryTimeout(d time.Duration) Option {
	return func(r *URLRepository) {
		if d > 0 {
			r.queryTimeout = d
		}
	}
}

type URLRepository struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

func NewURLRepository(db *sqlx.DB, opts ...Option) *URLRepository {
	r := &URLRepository{
		db:           db,
		queryTimeout: defaultQueryTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *URLRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.queryTimeout)
}

func (r *URLRepository) Save(ctx context.Context, url *entity.URL) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.Save"
	const query = `INSERT INTO urls(short_code, original_url, created_by, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING ` + urlColumns

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var row urlDB

	err := r.db.GetContext(ctx, &row, query,
		url.ShortCode, url.OriginalURL, url.CreatedBy, url.IsActive, url.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == originalURLConstraint {
				return nil, fmt.Errorf("%s: %w", op, entity.ErrOriginalURLExists)
			}

			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into urls table: %w", op, err)
	}

	return row.toEntity(), nil
}

// ShortCodeExists checks inactive records too, so a soft-deleted code is never reissued.
func (r *URLRepository) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	const op = "adapter.repository.postgres.URLRepository.ShortCodeExists"
	const query = `SELECT EXISTS(SELECT 1 FROM urls WHERE short_code = $1)`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool

	if err := r.db.GetContext(ctx, &exists, query, shortCode); err != nil {
		return false, fmt.Errorf("%s: failed to check short code: %w", op, err)
	}

	return exists, nil
}

func (r *URLRepository) RetrieveByOriginalURL(ctx context.Context, originalURL string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveByOriginalURL"
	const query = `SELECT ` + urlColumns + ` FROM urls WHERE original_url = $1 AND is_active`

	return r.getOne(ctx, op, query, originalURL)
}

func (r *URLRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveByShortCode"
	const query = `SELECT ` + urlColumns + ` FROM urls WHERE short_code = $1 AND is_active`

	return r.getOne(ctx, op, query, shortCode)
}

// RetrieveAndUpdateStats increments clicks and stamps last_accessed in one statement.
func (r *URLRepository) RetrieveAndUpdateStats(ctx context.Context, shortCode string, accessedAt time.Time) (*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.RetrieveAndUpdateStats"
	const query = `UPDATE urls SET clicks = clicks + 1, last_accessed = $2
		WHERE short_code = $1 AND is_active RETURNING ` + urlColumns

	return r.getOne(ctx, op, query, shortCode, accessedAt)
}

func (r *URLRepository) getOne(ctx context.Context, op, query string, args ...any) (*entity.URL, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var row urlDB

	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	return row.toEntity(), nil
}
