package usecase

import (
	"context"

	"github.com/vbjayanti/cumulus/internal/domain/executions"
	"github.com/vbjayanti/cumulus/internal/domain/granules"
	"github.com/vbjayanti/cumulus/internal/domain/pdrs"
)

type GranuleStore interface {
	Create(ctx context.Context, granule granules.Granule) (granules.Granule, error)
	Get(ctx context.Context, granuleID string) (granules.Granule, error)
	Update(ctx context.Context, granule granules.Granule) (granules.Granule, error)
	Delete(ctx context.Context, granuleID string) error
	List(ctx context.Context, filter GranuleListFilter) ([]granules.Granule, int, error)
	StatusTally(ctx context.Context, pdrName string) (pdrs.Stats, error)
}

type CollectionStore interface {
	Get(ctx context.Context, name, version string) (granules.Collection, error)
}

type ExecutionStore interface {
	Save(ctx context.Context, execution executions.Execution) error
	Get(ctx context.Context, arn string) (executions.Execution, error)
}

type PdrStore interface {
	Save(ctx context.Context, pdr pdrs.Pdr) error
	Get(ctx context.Context, pdrName string) (pdrs.Pdr, error)
}

// ObjectStore is the blob store holding granule file bytes. Delete treats a
// missing object as already satisfied.
type ObjectStore interface {
	Exists(ctx context.Context, bucket, key string) (bool, error)
	Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	Delete(ctx context.Context, bucket, key string) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte) error
}

// WorkflowStart describes one execution of the external state-machine
// runtime against a single granule.
type WorkflowStart struct {
	Workflow   string
	Granule    granules.Granule
	Collection granules.Collection
}

type WorkflowRunner interface {
	Start(ctx context.Context, start WorkflowStart) (executionArn string, err error)
}

// Catalog is the external metadata search-and-discovery service granule
// metadata is published to.
type Catalog interface {
	DeleteGranule(ctx context.Context, granuleID string) error
	PublishGranule(ctx context.Context, granuleID string, doc []byte, format string) error
}

type BulkStore interface {
	Save(ctx context.Context, op BulkOperation) error
	Get(ctx context.Context, id string) (BulkOperation, error)
}

// MetricsSearch resolves a bulk-request query into granule ids. It is nil
// when no metrics backend is configured.
type MetricsSearch interface {
	GranuleIDs(ctx context.Context, index string, query map[string]any) ([]string, error)
}

type GranuleListFilter struct {
	Status       string
	CollectionID string
	Prefix       string
	Limit        int
	Page         int
}
