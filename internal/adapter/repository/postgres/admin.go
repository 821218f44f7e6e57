package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/vadimbarashkov/shortly/internal/entity"
)

var sortColumns = map[entity.SortField]string{
	entity.SortByCreatedAt:    "created_at",
	entity.SortByClicks:       "clicks",
	entity.SortByLastAccessed: "last_accessed",
	entity.SortByOriginalURL:  "original_url",
	entity.SortByShortCode:    "short_code",
}

func orderBy(params entity.ListParams) string {
	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = sortColumns[entity.SortByCreatedAt]
	}

	direction := "DESC"
	if params.SortOrder == entity.SortAsc {
		direction = "ASC"
	}

	return fmt.Sprintf("%s %s NULLS LAST, id ASC", column, direction)
}

// List returns one page of active records. params is expected to be normalized.
func (r *URLRepository) List(ctx context.Context, params entity.ListParams) ([]*entity.URL, error) {
	const op = "adapter.repository.postgres.URLRepository.List"

	query := `SELECT ` + urlColumns + ` FROM urls WHERE is_active ORDER BY ` + orderBy(params) + ` LIMIT $1 OFFSET $2`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rows []urlDB

	if err := r.db.SelectContext(ctx, &rows, query, params.Limit, params.Offset()); err != nil {
		return nil, fmt.Errorf("%s: failed to select from urls table: %w", op, err)
	}

	urls := make([]*entity.URL, 0, len(rows))
	for i := range rows {
		urls = append(urls, rows[i].toEntity())
	}

	return urls, nil
}

type totalsDB struct {
	URLs         int64 `db:"urls"`
	Clicks       int64 `db:"clicks"`
	CreatedSince int64 `db:"created_since"`
}

func (r *URLRepository) Totals(ctx context.Context, since time.Time) (entity.Totals, error) {
	const op = "adapter.repository.postgres.URLRepository.Totals"
	const query = `SELECT
		COUNT(*) AS urls,
		COALESCE(SUM(clicks), 0) AS clicks,
		COUNT(*) FILTER (WHERE created_at >= $1) AS created_since
		FROM urls WHERE is_active`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var totals totalsDB

	if err := r.db.GetContext(ctx, &totals, query, since); err != nil {
		return entity.Totals{}, fmt.Errorf("%s: failed to aggregate urls table: %w", op, err)
	}

	return entity.Totals(totals), nil
}

// Deactivate soft-deletes an active record. An already inactive record is reported as not found.
func (r *URLRepository) Deactivate(ctx context.Context, id int64) error {
	const op = "adapter.repository.postgres.URLRepository.Deactivate"
	const query = `UPDATE urls SET is_active = FALSE WHERE id = $1 AND is_active`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: failed to update urls table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	return nil
}
