package executions

import (
	"errors"
	"time"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Execution is one run of the external state-machine pipeline. ParentArn is
// set when the run was triggered from an enclosing workflow, which lets
// callers walk the ancestry chain.
type Execution struct {
	Arn       string
	Name      string
	Workflow  string
	Status    Status
	ParentArn string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e Execution) Duration() time.Duration {
	if e.UpdatedAt.Before(e.CreatedAt) {
		return 0
	}
	return e.UpdatedAt.Sub(e.CreatedAt)
}

var ErrNotFound = errors.New("execution not found")
