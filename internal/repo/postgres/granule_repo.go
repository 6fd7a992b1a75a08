package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vbjayanti/cumulus/internal/domain/granules"
	"github.com/vbjayanti/cumulus/internal/domain/pdrs"
	"github.com/vbjayanti/cumulus/internal/usecase"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GranuleRepo struct {
	Pool *pgxpool.Pool
}

func NewGranuleRepo(pool *pgxpool.Pool) *GranuleRepo {
	return &GranuleRepo{Pool: pool}
}

const granuleColumns = `granule_id, collection_id, status, published, cmr_link, execution_arn, pdr_name, files, error, created_at, updated_at`

func (r *GranuleRepo) Create(ctx context.Context, granule granules.Granule) (granules.Granule, error) {
	if r == nil || r.Pool == nil {
		return granules.Granule{}, fmt.Errorf("db not configured")
	}
	files, err := json.Marshal(granule.Files)
	if err != nil {
		return granules.Granule{}, fmt.Errorf("encode files: %w", err)
	}
	query := `
INSERT INTO granules (granule_id, collection_id, status, published, cmr_link, execution_arn, pdr_name, files, error, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.Pool.Exec(ctx, query,
		granule.GranuleID,
		granule.CollectionID,
		string(granule.Status),
		granule.Published,
		granule.CmrLink,
		granule.ExecutionArn,
		granule.PdrName,
		files,
		granule.Error,
		granule.CreatedAt,
		granule.UpdatedAt,
	)
	if err != nil {
		return granules.Granule{}, err
	}
	return granule, nil
}

func (r *GranuleRepo) Get(ctx context.Context, granuleID string) (granules.Granule, error) {
	if r == nil || r.Pool == nil {
		return granules.Granule{}, fmt.Errorf("db not configured")
	}
	query := `SELECT ` + granuleColumns + ` FROM granules WHERE granule_id = $1`
	return scanGranule(r.Pool.QueryRow(ctx, query, granuleID))
}

func (r *GranuleRepo) Update(ctx context.Context, granule granules.Granule) (granules.Granule, error) {
	if r == nil || r.Pool == nil {
		return granules.Granule{}, fmt.Errorf("db not configured")
	}
	files, err := json.Marshal(granule.Files)
	if err != nil {
		return granules.Granule{}, fmt.Errorf("encode files: %w", err)
	}
	query := `
UPDATE granules
SET collection_id = $2, status = $3, published = $4, cmr_link = $5, execution_arn = $6,
    pdr_name = $7, files = $8, error = $9, updated_at = $10
WHERE granule_id = $1`
	tag, err := r.Pool.Exec(ctx, query,
		granule.GranuleID,
		granule.CollectionID,
		string(granule.Status),
		granule.Published,
		granule.CmrLink,
		granule.ExecutionArn,
		granule.PdrName,
		files,
		granule.Error,
		granule.UpdatedAt,
	)
	if err != nil {
		return granules.Granule{}, err
	}
	if tag.RowsAffected() == 0 {
		return granules.Granule{}, granules.ErrNotFound
	}
	return granule, nil
}

func (r *GranuleRepo) Delete(ctx context.Context, granuleID string) error {
	if r == nil || r.Pool == nil {
		return fmt.Errorf("db not configured")
	}
	tag, err := r.Pool.Exec(ctx, `DELETE FROM granules WHERE granule_id = $1`, granuleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return granules.ErrNotFound
	}
	return nil
}

func (r *GranuleRepo) List(ctx context.Context, filter usecase.GranuleListFilter) ([]granules.Granule, int, error) {
	if r == nil || r.Pool == nil {
		return nil, 0, fmt.Errorf("db not configured")
	}

	var conditions []string
	var args []any
	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, strings.Replace(clause, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if filter.Status != "" {
		addCondition("status = ?", filter.Status)
	}
	if filter.CollectionID != "" {
		addCondition("collection_id = ?", filter.CollectionID)
	}
	if filter.Prefix != "" {
		addCondition("granule_id LIKE ?", filter.Prefix+"%")
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := r.Pool.QueryRow(ctx, `SELECT count(*) FROM granules`+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	query := `SELECT ` + granuleColumns + ` FROM granules` + where +
		` ORDER BY updated_at DESC LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(offset)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []granules.Granule
	for rows.Next() {
		granule, err := scanGranule(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, granule)
	}
	return results, count, rows.Err()
}

func (r *GranuleRepo) StatusTally(ctx context.Context, pdrName string) (pdrs.Stats, error) {
	if r == nil || r.Pool == nil {
		return pdrs.Stats{}, fmt.Errorf("db not configured")
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT status, count(*) FROM granules WHERE pdr_name = $1 GROUP BY status`, pdrName)
	if err != nil {
		return pdrs.Stats{}, err
	}
	defer rows.Close()

	var stats pdrs.Stats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return pdrs.Stats{}, err
		}
		switch granules.Status(status) {
		case granules.StatusRunning:
			stats.Running = count
		case granules.StatusCompleted:
			stats.Completed = count
		case granules.StatusFailed:
			stats.Failed = count
		}
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGranule(row rowScanner) (granules.Granule, error) {
	var granule granules.Granule
	var status string
	var files []byte
	if err := row.Scan(
		&granule.GranuleID,
		&granule.CollectionID,
		&status,
		&granule.Published,
		&granule.CmrLink,
		&granule.ExecutionArn,
		&granule.PdrName,
		&files,
		&granule.Error,
		&granule.CreatedAt,
		&granule.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return granules.Granule{}, granules.ErrNotFound
		}
		return granules.Granule{}, err
	}
	granule.Status = granules.Status(status)
	if len(files) > 0 {
		if err := json.Unmarshal(files, &granule.Files); err != nil {
			return granules.Granule{}, fmt.Errorf("decode files: %w", err)
		}
	}
	return granule, nil
}
