// Package workflows starts Step Functions executions for granule
// processing workflows.
package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/google/uuid"

	"github.com/vbjayanti/cumulus/internal/config"
	"github.com/vbjayanti/cumulus/internal/usecase"
)

type sfnAPI interface {
	StartExecution(ctx context.Context, in *sfn.StartExecutionInput, optFns ...func(*sfn.Options)) (*sfn.StartExecutionOutput, error)
}

// Runner maps workflow names onto state machine ARNs under a fixed prefix
// and starts executions with a cumulus-message input payload.
type Runner struct {
	sfn                sfnAPI
	stateMachinePrefix string
	stackName          string
	systemBucket       string
}

func New(ctx context.Context, cfg config.Config) (*Runner, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Runner{
		sfn:                sfn.NewFromConfig(awsCfg),
		stateMachinePrefix: cfg.StateMachinePrefix,
		stackName:          cfg.StackName,
		systemBucket:       cfg.SystemBucket,
	}, nil
}

// executionInput is the message handed to the state machine. The shape
// mirrors what downstream workflow tasks expect in their event.
type executionInput struct {
	Cumulus cumulusMeta   `json:"cumulus_meta"`
	Meta    workflowMeta  `json:"meta"`
	Payload workflowInput `json:"payload"`
}

type cumulusMeta struct {
	ExecutionName   string `json:"execution_name"`
	StateMachine    string `json:"state_machine"`
	SystemBucket    string `json:"system_bucket"`
	WorkflowStartAt string `json:"workflow_start_time"`
}

type workflowMeta struct {
	Stack      string            `json:"stack"`
	Workflow   string            `json:"workflow_name"`
	Collection collectionPayload `json:"collection"`
}

type collectionPayload struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	DuplicateHandling string `json:"duplicateHandling,omitempty"`
}

type workflowInput struct {
	Granules []granulePayload `json:"granules"`
}

type granulePayload struct {
	GranuleID string        `json:"granuleId"`
	Files     []filePayload `json:"files"`
}

type filePayload struct {
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
}

func (r *Runner) Start(ctx context.Context, start usecase.WorkflowStart) (string, error) {
	if start.Workflow == "" {
		return "", fmt.Errorf("workflow name is empty")
	}
	stateMachineArn := r.stateMachinePrefix + start.Workflow
	executionName := uuid.NewString()

	files := make([]filePayload, 0, len(start.Granule.Files))
	for _, f := range start.Granule.Files {
		files = append(files, filePayload{Bucket: f.Bucket, Key: f.Key, FileName: f.FileName, Size: f.Size})
	}
	input := executionInput{
		Cumulus: cumulusMeta{
			ExecutionName:   executionName,
			StateMachine:    stateMachineArn,
			SystemBucket:    r.systemBucket,
			WorkflowStartAt: time.Now().UTC().Format(time.RFC3339),
		},
		Meta: workflowMeta{
			Stack:    r.stackName,
			Workflow: start.Workflow,
			Collection: collectionPayload{
				Name:              start.Collection.Name,
				Version:           start.Collection.Version,
				DuplicateHandling: string(start.Collection.DuplicateHandling),
			},
		},
		Payload: workflowInput{
			Granules: []granulePayload{{GranuleID: start.Granule.GranuleID, Files: files}},
		},
	}
	body, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("marshal execution input: %w", err)
	}

	out, err := r.sfn.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(stateMachineArn),
		Name:            aws.String(executionName),
		Input:           aws.String(string(body)),
	})
	if err != nil {
		return "", fmt.Errorf("start execution of %s: %w", start.Workflow, err)
	}
	return aws.ToString(out.ExecutionArn), nil
}
