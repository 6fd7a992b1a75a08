package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vbjayanti/cumulus/internal/domain/granules"
)

// Action is the set of mutations PUT /granules/{id} accepts. Dispatch is an
// exhaustive switch over these variants; anything else is rejected at parse
// time.
type Action string

const (
	ActionReingest      Action = "reingest"
	ActionApplyWorkflow Action = "applyWorkflow"
	ActionRemoveFromCmr Action = "removeFromCmr"
	ActionMove          Action = "move"
)

func ParseAction(raw string) (Action, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: Action is missing", granules.ErrInvalidArgument)
	}
	switch action := Action(raw); action {
	case ActionReingest, ActionApplyWorkflow, ActionRemoveFromCmr, ActionMove:
		return action, nil
	default:
		return "", fmt.Errorf(`%w: Action is not supported. Choices are "applyWorkflow", "move", "reingest", or "removeFromCmr"`, granules.ErrUnsupportedAction)
	}
}

// ActionResult is the public contract every granule action returns on
// success.
type ActionResult struct {
	GranuleID string `json:"granuleId"`
	Action    string `json:"action"`
	Status    string `json:"status"`
	Warning   string `json:"warning,omitempty"`
}

const actionSuccess = "SUCCESS"

// GranuleService owns the granule lifecycle state machine: it is the only
// writer of granule status, reacting to workflow execution reports and to
// direct API actions.
type GranuleService struct {
	Granules    GranuleStore
	Collections CollectionStore
	Executions  ExecutionStore
	Pdrs        PdrStore
	Objects     ObjectStore
	Workflows   WorkflowRunner
	Catalog     Catalog
	BulkOps     BulkStore
	Metrics     MetricsSearch

	IngestWorkflow       string
	DistributionEndpoint string
	Clock                func() time.Time
}

type GranuleServiceDeps struct {
	Granules    GranuleStore
	Collections CollectionStore
	Executions  ExecutionStore
	Pdrs        PdrStore
	Objects     ObjectStore
	Workflows   WorkflowRunner
	Catalog     Catalog
	BulkOps     BulkStore
	Metrics     MetricsSearch

	IngestWorkflow       string
	DistributionEndpoint string
}

func NewGranuleService(deps GranuleServiceDeps) *GranuleService {
	return &GranuleService{
		Granules:             deps.Granules,
		Collections:          deps.Collections,
		Executions:           deps.Executions,
		Pdrs:                 deps.Pdrs,
		Objects:              deps.Objects,
		Workflows:            deps.Workflows,
		Catalog:              deps.Catalog,
		BulkOps:              deps.BulkOps,
		Metrics:              deps.Metrics,
		IngestWorkflow:       deps.IngestWorkflow,
		DistributionEndpoint: deps.DistributionEndpoint,
		Clock:                time.Now,
	}
}

func (s *GranuleService) Get(ctx context.Context, granuleID string) (granules.Granule, error) {
	return s.Granules.Get(ctx, granuleID)
}

func (s *GranuleService) List(ctx context.Context, filter GranuleListFilter) ([]granules.Granule, int, error) {
	return s.Granules.List(ctx, filter)
}

// Reingest re-runs the ingest workflow for an already-ingested granule.
// When the owning collection does not replace duplicates, the result
// carries a non-fatal warning that existing files may be overwritten.
func (s *GranuleService) Reingest(ctx context.Context, granuleID string) (ActionResult, error) {
	granule, err := s.Granules.Get(ctx, granuleID)
	if err != nil {
		return ActionResult{}, err
	}
	if !granules.ValidTransition(granule.Status, granules.StatusRunning) {
		return ActionResult{}, fmt.Errorf("%w: cannot reingest granule in status %q",
			granules.ErrInvalidTransition, granule.Status)
	}
	name, version, err := granules.DeconstructCollectionID(granule.CollectionID)
	if err != nil {
		return ActionResult{}, err
	}
	collection, err := s.Collections.Get(ctx, name, version)
	if err != nil {
		return ActionResult{}, err
	}

	workflow := collection.WorkflowName
	if workflow == "" {
		workflow = s.IngestWorkflow
	}
	if _, err := s.startWorkflow(ctx, workflow, granule, collection); err != nil {
		return ActionResult{}, err
	}

	result := ActionResult{
		GranuleID: granule.GranuleID,
		Action:    string(ActionReingest),
		Status:    actionSuccess,
	}
	if collection.DuplicateHandling != granules.DuplicateReplace {
		result.Warning = "The granule files may be overwritten"
	}
	return result, nil
}

// ApplyWorkflow runs an arbitrary named workflow against the granule
// in-place, without restarting full ingest.
func (s *GranuleService) ApplyWorkflow(ctx context.Context, granuleID, workflow string) (ActionResult, error) {
	if workflow == "" {
		return ActionResult{}, fmt.Errorf("%w: workflow is required", granules.ErrInvalidArgument)
	}
	granule, err := s.Granules.Get(ctx, granuleID)
	if err != nil {
		return ActionResult{}, err
	}
	if !granules.ValidTransition(granule.Status, granules.StatusRunning) {
		return ActionResult{}, fmt.Errorf("%w: cannot apply workflow to granule in status %q",
			granules.ErrInvalidTransition, granule.Status)
	}
	collection := s.collectionFor(ctx, granule)
	if _, err := s.startWorkflow(ctx, workflow, granule, collection); err != nil {
		return ActionResult{}, err
	}
	return ActionResult{
		GranuleID: granule.GranuleID,
		Action:    fmt.Sprintf("%s %s", ActionApplyWorkflow, workflow),
		Status:    actionSuccess,
	}, nil
}

// RemoveFromCmr unpublishes the granule's metadata from the catalog and
// clears its catalog link. Status is untouched.
func (s *GranuleService) RemoveFromCmr(ctx context.Context, granuleID string) (ActionResult, error) {
	granule, err := s.Granules.Get(ctx, granuleID)
	if err != nil {
		return ActionResult{}, err
	}
	if !granule.Published {
		return ActionResult{}, fmt.Errorf("granule %s: %w", granuleID, granules.ErrNotPublished)
	}
	if err := s.Catalog.DeleteGranule(ctx, granule.GranuleID); err != nil {
		return ActionResult{}, &granules.CatalogError{Op: "unpublish", Err: err}
	}
	granule.Published = false
	granule.CmrLink = ""
	granule.UpdatedAt = s.Clock()
	if _, err := s.Granules.Update(ctx, granule); err != nil {
		return ActionResult{}, err
	}
	return ActionResult{
		GranuleID: granule.GranuleID,
		Action:    string(ActionRemoveFromCmr),
		Status:    actionSuccess,
	}, nil
}

// Delete removes a granule's files and its record. A granule that is still
// published to the catalog cannot be deleted. Objects already absent from
// the store are treated as deleted.
func (s *GranuleService) Delete(ctx context.Context, granuleID string) error {
	granule, err := s.Granules.Get(ctx, granuleID)
	if err != nil {
		return err
	}
	if granule.Published {
		return granules.ErrDeletePublished
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, file := range granule.Files {
		group.Go(func() error {
			return s.Objects.Delete(groupCtx, file.Bucket, file.Key)
		})
	}
	if err := group.Wait(); err != nil {
		return fmt.Errorf("delete granule %s files: %w", granuleID, err)
	}

	return s.Granules.Delete(ctx, granuleID)
}

func (s *GranuleService) startWorkflow(ctx context.Context, workflow string, granule granules.Granule, collection granules.Collection) (string, error) {
	arn, err := s.Workflows.Start(ctx, WorkflowStart{
		Workflow:   workflow,
		Granule:    granule,
		Collection: collection,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", granules.ErrWorkflowLaunch, err)
	}
	granule.Status = granules.StatusRunning
	granule.ExecutionArn = arn
	granule.Error = ""
	granule.UpdatedAt = s.Clock()
	if _, err := s.Granules.Update(ctx, granule); err != nil {
		return "", err
	}
	return arn, nil
}

// collectionFor is best-effort: applyWorkflow can proceed without the
// collection record, the runner just gets an empty one.
func (s *GranuleService) collectionFor(ctx context.Context, granule granules.Granule) granules.Collection {
	name, version, err := granules.DeconstructCollectionID(granule.CollectionID)
	if err != nil {
		return granules.Collection{}
	}
	collection, err := s.Collections.Get(ctx, name, version)
	if err != nil {
		return granules.Collection{}
	}
	return collection
}
