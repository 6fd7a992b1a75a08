package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vbjayanti/cumulus/internal/domain/executions"
	"github.com/vbjayanti/cumulus/internal/domain/granules"
	"github.com/vbjayanti/cumulus/internal/domain/pdrs"
)

// ExecutionReport is the event the external workflow runtime emits when an
// execution starts, completes a step, or finishes. It feeds the lifecycle
// state machine.
type ExecutionReport struct {
	Arn       string            `json:"arn"`
	ParentArn string            `json:"parentArn,omitempty"`
	Workflow  string            `json:"workflow,omitempty"`
	Status    executions.Status `json:"status"`
	Error     string            `json:"error,omitempty"`
	PdrName   string            `json:"pdrName,omitempty"`
	Granules  []GranuleReport   `json:"granules,omitempty"`
}

type GranuleReport struct {
	GranuleID    string          `json:"granuleId"`
	CollectionID string          `json:"collectionId"`
	Files        []granules.File `json:"files,omitempty"`
	Published    bool            `json:"published,omitempty"`
	CmrLink      string          `json:"cmrLink,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// RecordExecutionEvent applies a workflow report to the durable state: the
// execution record is upserted, each reported granule is created as running
// at workflow start or finalized when the execution finishes, and the
// owning PDR's tally is recomputed. Concurrent reports for the same granule
// resolve last-write-wins; nothing here serializes them.
func (s *GranuleService) RecordExecutionEvent(ctx context.Context, report ExecutionReport) error {
	if report.Arn == "" {
		return fmt.Errorf("%w: execution arn is required", granules.ErrInvalidArgument)
	}
	switch report.Status {
	case executions.StatusRunning, executions.StatusCompleted, executions.StatusFailed:
	default:
		return fmt.Errorf("%w: unknown execution status %q", granules.ErrInvalidArgument, report.Status)
	}

	now := s.Clock()
	if err := s.Executions.Save(ctx, executions.Execution{
		Arn:       report.Arn,
		Workflow:  report.Workflow,
		Status:    report.Status,
		ParentArn: report.ParentArn,
		Error:     report.Error,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("save execution %s: %w", report.Arn, err)
	}

	for _, reported := range report.Granules {
		if err := s.applyGranuleReport(ctx, report, reported, now); err != nil {
			return err
		}
	}

	if report.PdrName != "" {
		if err := s.retallyPdr(ctx, report.PdrName, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *GranuleService) applyGranuleReport(ctx context.Context, report ExecutionReport, reported GranuleReport, now time.Time) error {
	if reported.GranuleID == "" {
		return fmt.Errorf("%w: granuleId is required", granules.ErrInvalidArgument)
	}
	status := granuleStatusFor(report.Status)

	existing, err := s.Granules.Get(ctx, reported.GranuleID)
	if err != nil {
		if !errors.Is(err, granules.ErrNotFound) {
			return err
		}
		_, err := s.Granules.Create(ctx, granules.Granule{
			GranuleID:    reported.GranuleID,
			CollectionID: reported.CollectionID,
			Status:       status,
			Published:    reported.Published,
			CmrLink:      reported.CmrLink,
			ExecutionArn: report.Arn,
			PdrName:      report.PdrName,
			Files:        reported.Files,
			Error:        reported.Error,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		return err
	}

	existing.Status = status
	existing.ExecutionArn = report.Arn
	existing.Error = reported.Error
	if reported.CollectionID != "" {
		existing.CollectionID = reported.CollectionID
	}
	if len(reported.Files) > 0 {
		existing.Files = reported.Files
	}
	if reported.Published {
		existing.Published = true
		existing.CmrLink = reported.CmrLink
	}
	if report.PdrName != "" {
		existing.PdrName = report.PdrName
	}
	existing.UpdatedAt = now
	_, err = s.Granules.Update(ctx, existing)
	return err
}

func (s *GranuleService) retallyPdr(ctx context.Context, pdrName string, now time.Time) error {
	stats, err := s.Granules.StatusTally(ctx, pdrName)
	if err != nil {
		return fmt.Errorf("tally pdr %s: %w", pdrName, err)
	}
	pdr, err := s.Pdrs.Get(ctx, pdrName)
	if err != nil {
		if !errors.Is(err, pdrs.ErrNotFound) {
			return err
		}
		pdr = pdrs.Pdr{PdrName: pdrName, CreatedAt: now}
	}
	pdr.Stats = stats
	pdr.Status = stats.Status()
	pdr.UpdatedAt = now
	return s.Pdrs.Save(ctx, pdr)
}

func granuleStatusFor(status executions.Status) granules.Status {
	switch status {
	case executions.StatusCompleted:
		return granules.StatusCompleted
	case executions.StatusFailed:
		return granules.StatusFailed
	default:
		return granules.StatusRunning
	}
}
