package postgres

import (
	"context"
	"fmt"

	"github.com/vbjayanti/cumulus/internal/domain/granules"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CollectionRepo struct {
	Pool *pgxpool.Pool
}

func NewCollectionRepo(pool *pgxpool.Pool) *CollectionRepo {
	return &CollectionRepo{Pool: pool}
}

func (r *CollectionRepo) Get(ctx context.Context, name, version string) (granules.Collection, error) {
	if r == nil || r.Pool == nil {
		return granules.Collection{}, fmt.Errorf("db not configured")
	}
	query := `
SELECT name, version, duplicate_handling, workflow_name, created_at, updated_at
FROM collections
WHERE name = $1 AND version = $2`
	row := r.Pool.QueryRow(ctx, query, name, version)
	var collection granules.Collection
	var handling string
	if err := row.Scan(
		&collection.Name,
		&collection.Version,
		&handling,
		&collection.WorkflowName,
		&collection.CreatedAt,
		&collection.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return granules.Collection{}, granules.ErrNotFound
		}
		return granules.Collection{}, err
	}
	collection.DuplicateHandling = granules.DuplicateHandling(handling)
	return collection, nil
}

func (r *CollectionRepo) Save(ctx context.Context, collection granules.Collection) error {
	if r == nil || r.Pool == nil {
		return fmt.Errorf("db not configured")
	}
	query := `
INSERT INTO collections (name, version, duplicate_handling, workflow_name, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name, version)
DO UPDATE SET duplicate_handling = EXCLUDED.duplicate_handling,
              workflow_name = EXCLUDED.workflow_name,
              updated_at = EXCLUDED.updated_at`
	_, err := r.Pool.Exec(ctx, query,
		collection.Name,
		collection.Version,
		string(collection.DuplicateHandling),
		collection.WorkflowName,
		collection.CreatedAt,
		collection.UpdatedAt,
	)
	return err
}
