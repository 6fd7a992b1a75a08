package pdrs

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

// Stats tallies the statuses of every granule parsed from one delivery
// manifest. A PDR is terminal only when no granule remains running.
type Stats struct {
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

func (s Stats) Total() int {
	return s.Running + s.Completed + s.Failed
}

func (s Stats) Status() Status {
	if s.Running > 0 {
		return StatusRunning
	}
	if s.Failed > 0 {
		return StatusFailed
	}
	return StatusCompleted
}

type Pdr struct {
	PdrName      string
	CollectionID string
	Status       Status
	Stats        Stats
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var ErrNotFound = errors.New("pdr not found")
