package postgres

import (
	"context"
	"fmt"

	"github.com/vbjayanti/cumulus/internal/domain/executions"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExecutionRepo struct {
	Pool *pgxpool.Pool
}

func NewExecutionRepo(pool *pgxpool.Pool) *ExecutionRepo {
	return &ExecutionRepo{Pool: pool}
}

func (r *ExecutionRepo) Save(ctx context.Context, execution executions.Execution) error {
	if r == nil || r.Pool == nil {
		return fmt.Errorf("db not configured")
	}
	query := `
INSERT INTO executions (arn, name, workflow, status, parent_arn, error, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (arn)
DO UPDATE SET status = EXCLUDED.status,
              error = EXCLUDED.error,
              updated_at = EXCLUDED.updated_at`
	_, err := r.Pool.Exec(ctx, query,
		execution.Arn,
		execution.Name,
		execution.Workflow,
		string(execution.Status),
		execution.ParentArn,
		execution.Error,
		execution.CreatedAt,
		execution.UpdatedAt,
	)
	return err
}

func (r *ExecutionRepo) Get(ctx context.Context, arn string) (executions.Execution, error) {
	if r == nil || r.Pool == nil {
		return executions.Execution{}, fmt.Errorf("db not configured")
	}
	query := `
SELECT arn, name, workflow, status, parent_arn, error, created_at, updated_at
FROM executions
WHERE arn = $1`
	row := r.Pool.QueryRow(ctx, query, arn)
	var execution executions.Execution
	var status string
	if err := row.Scan(
		&execution.Arn,
		&execution.Name,
		&execution.Workflow,
		&status,
		&execution.ParentArn,
		&execution.Error,
		&execution.CreatedAt,
		&execution.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return executions.Execution{}, executions.ErrNotFound
		}
		return executions.Execution{}, err
	}
	execution.Status = executions.Status(status)
	return execution, nil
}
