package postgres

import (
	"context"
	"fmt"

	"github.com/vbjayanti/cumulus/internal/domain/pdrs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PdrRepo struct {
	Pool *pgxpool.Pool
}

func NewPdrRepo(pool *pgxpool.Pool) *PdrRepo {
	return &PdrRepo{Pool: pool}
}

func (r *PdrRepo) Save(ctx context.Context, pdr pdrs.Pdr) error {
	if r == nil || r.Pool == nil {
		return fmt.Errorf("db not configured")
	}
	query := `
INSERT INTO pdrs (pdr_name, collection_id, status, running, completed, failed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (pdr_name)
DO UPDATE SET status = EXCLUDED.status,
              running = EXCLUDED.running,
              completed = EXCLUDED.completed,
              failed = EXCLUDED.failed,
              updated_at = EXCLUDED.updated_at`
	_, err := r.Pool.Exec(ctx, query,
		pdr.PdrName,
		pdr.CollectionID,
		string(pdr.Status),
		pdr.Stats.Running,
		pdr.Stats.Completed,
		pdr.Stats.Failed,
		pdr.CreatedAt,
		pdr.UpdatedAt,
	)
	return err
}

func (r *PdrRepo) Get(ctx context.Context, pdrName string) (pdrs.Pdr, error) {
	if r == nil || r.Pool == nil {
		return pdrs.Pdr{}, fmt.Errorf("db not configured")
	}
	query := `
SELECT pdr_name, collection_id, status, running, completed, failed, created_at, updated_at
FROM pdrs
WHERE pdr_name = $1`
	row := r.Pool.QueryRow(ctx, query, pdrName)
	var pdr pdrs.Pdr
	var status string
	if err := row.Scan(
		&pdr.PdrName,
		&pdr.CollectionID,
		&status,
		&pdr.Stats.Running,
		&pdr.Stats.Completed,
		&pdr.Stats.Failed,
		&pdr.CreatedAt,
		&pdr.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return pdrs.Pdr{}, pdrs.ErrNotFound
		}
		return pdrs.Pdr{}, err
	}
	pdr.Status = pdrs.Status(status)
	return pdr, nil
}
