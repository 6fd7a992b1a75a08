package granules

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type FileType string

const (
	FileTypeData     FileType = "data"
	FileTypeMetadata FileType = "metadata"
	FileTypeBrowse   FileType = "browse"
)

type DuplicateHandling string

const (
	DuplicateReplace DuplicateHandling = "replace"
	DuplicateError   DuplicateHandling = "error"
	DuplicateSkip    DuplicateHandling = "skip"
	DuplicateVersion DuplicateHandling = "version"
)

// File is owned by exactly one granule; it has no identity of its own
// outside the granule record.
type File struct {
	Bucket   string   `json:"bucket"`
	Key      string   `json:"key"`
	FileName string   `json:"fileName"`
	Size     int64    `json:"size,omitempty"`
	Checksum string   `json:"checksum,omitempty"`
	Type     FileType `json:"type,omitempty"`

	// DuplicateFound is set when a move step overwrote an object that the
	// collision check had not pre-detected (racing writer).
	DuplicateFound bool `json:"duplicate_found,omitempty"`
}

type Location struct {
	Bucket string
	Key    string
}

func (f File) Location() Location {
	return Location{Bucket: f.Bucket, Key: f.Key}
}

// Destination routes files whose name matches Regex to Bucket/Filepath.
// Destinations are evaluated in caller-supplied order; first match wins.
type Destination struct {
	Regex    string `json:"regex"`
	Bucket   string `json:"bucket"`
	Filepath string `json:"filepath"`
}

type Granule struct {
	GranuleID    string
	CollectionID string
	Status       Status
	Published    bool
	CmrLink      string
	ExecutionArn string
	PdrName      string
	Files        []File
	Error        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (g Granule) Duration() time.Duration {
	if g.UpdatedAt.Before(g.CreatedAt) {
		return 0
	}
	return g.UpdatedAt.Sub(g.CreatedAt)
}

type Collection struct {
	Name              string
	Version           string
	DuplicateHandling DuplicateHandling
	WorkflowName      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const collectionIDSeparator = "___"

func (c Collection) ID() string {
	return CollectionID(c.Name, c.Version)
}

func CollectionID(name, version string) string {
	return name + collectionIDSeparator + version
}

func DeconstructCollectionID(id string) (name, version string, err error) {
	parts := strings.SplitN(id, collectionIDSeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: malformed collection id %q", ErrInvalidArgument, id)
	}
	return parts[0], parts[1], nil
}

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrConflict           = errors.New("conflict")
	ErrUnsupportedAction  = errors.New("unsupported action")
	ErrDeletePublished    = errors.New("You cannot delete a granule that is published to CMR. Remove it from CMR first")
	ErrNotPublished       = errors.New("granule is not published to CMR")
	ErrWorkflowLaunch     = errors.New("failed to launch workflow execution")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrMetricsUnavailable = errors.New("metrics search backend not configured")
)

// ValidTransition reports whether an API action may drive a granule from
// one status to another. Workflow event intake is last-write-wins and does
// not consult this table.
func ValidTransition(from, to Status) bool {
	switch to {
	case StatusRunning:
		return from == StatusCompleted || from == StatusFailed
	case StatusCompleted, StatusFailed:
		return from == StatusRunning
	default:
		return false
	}
}

// ConflictError reports destination objects that already exist, in the
// order the granule's files were inspected.
type ConflictError struct {
	FileNames []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"Cannot move granule because the following files would be overwritten at the destination location: %s. Delete the existing files or reingest the source files.",
		strings.Join(e.FileNames, ", "),
	)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// MoveError carries per-file progress for a move that failed partway.
// Moves are not rolled back; the caller retries with the same destinations
// and already-relocated files are skipped.
type MoveError struct {
	GranuleID string
	Moved     []string
	Remaining []string
	Err       error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move of granule %s failed after relocating %d of %d files: %v",
		e.GranuleID, len(e.Moved), len(e.Moved)+len(e.Remaining), e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

// CatalogError marks failures against the metadata catalog, distinct from
// object-store failures: files may already sit at their new location while
// the catalog still points at the old one.
type CatalogError struct {
	Op  string
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("cmr %s: %v", e.Op, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// S3URI renders the canonical object URI used in CMR metadata documents.
func S3URI(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}
