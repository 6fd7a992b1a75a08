package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/vbjayanti/cumulus/internal/domain/granules"
)

type BulkOperationStatus string

const (
	BulkStatusRunning   BulkOperationStatus = "RUNNING"
	BulkStatusSucceeded BulkOperationStatus = "SUCCEEDED"
	BulkStatusFailed    BulkOperationStatus = "FAILED"
)

// BulkOperation tracks one asynchronous bulk workflow run across many
// granules.
type BulkOperation struct {
	ID          string              `json:"id"`
	Description string              `json:"description"`
	Operation   string              `json:"operationType"`
	Status      BulkOperationStatus `json:"status"`
	Succeeded   []string            `json:"succeeded,omitempty"`
	Failed      []string            `json:"failed,omitempty"`
	Error       string              `json:"error,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type BulkRequest struct {
	WorkflowName string         `json:"workflowName"`
	IDs          []string       `json:"ids,omitempty"`
	Query        map[string]any `json:"query,omitempty"`
	Index        string         `json:"index,omitempty"`
}

// StartBulk validates the request, registers a running operation, and kicks
// off the per-granule workflow launches in the background. The returned
// operation is what the caller polls.
func (s *GranuleService) StartBulk(ctx context.Context, req BulkRequest) (BulkOperation, error) {
	if req.WorkflowName == "" {
		return BulkOperation{}, fmt.Errorf("%w: workflowName is required", granules.ErrInvalidArgument)
	}
	if len(req.IDs) == 0 && req.Query == nil {
		return BulkOperation{}, fmt.Errorf("%w: One of ids or query is required", granules.ErrInvalidArgument)
	}
	if req.Query != nil && s.Metrics == nil {
		return BulkOperation{}, fmt.Errorf("%w: %v", granules.ErrInvalidArgument, granules.ErrMetricsUnavailable)
	}
	if req.Query != nil && req.Index == "" {
		return BulkOperation{}, fmt.Errorf("%w: Index is required if query is sent", granules.ErrInvalidArgument)
	}

	ids := req.IDs
	if req.Query != nil {
		resolved, err := s.Metrics.GranuleIDs(ctx, req.Index, req.Query)
		if err != nil {
			return BulkOperation{}, fmt.Errorf("resolve bulk query: %w", err)
		}
		ids = resolved
	}

	now := s.Clock()
	op := BulkOperation{
		ID:          uuid.NewString(),
		Description: fmt.Sprintf("Bulk run %s on %d granules", req.WorkflowName, len(ids)),
		Operation:   "Bulk Granules",
		Status:      BulkStatusRunning,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.BulkOps.Save(ctx, op); err != nil {
		return BulkOperation{}, fmt.Errorf("%w: %v", granules.ErrWorkflowLaunch, err)
	}

	go s.runBulk(context.WithoutCancel(ctx), op, req.WorkflowName, ids)
	return op, nil
}

func (s *GranuleService) GetBulk(ctx context.Context, id string) (BulkOperation, error) {
	return s.BulkOps.Get(ctx, id)
}

func (s *GranuleService) runBulk(ctx context.Context, op BulkOperation, workflow string, ids []string) {
	for _, granuleID := range ids {
		if _, err := s.ApplyWorkflow(ctx, granuleID, workflow); err != nil {
			log.Printf("bulk %s: granule %s: %v", op.ID, granuleID, err)
			op.Failed = append(op.Failed, granuleID)
			op.Error = err.Error()
			continue
		}
		op.Succeeded = append(op.Succeeded, granuleID)
	}

	op.Status = BulkStatusSucceeded
	if len(op.Failed) > 0 {
		op.Status = BulkStatusFailed
	}
	op.UpdatedAt = s.Clock()
	if err := s.BulkOps.Save(ctx, op); err != nil {
		log.Printf("bulk %s: persist final state: %v", op.ID, err)
	}
}
