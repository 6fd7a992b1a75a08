package common

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vbjayanti/cumulus/internal/domain/executions"
	"github.com/vbjayanti/cumulus/internal/domain/granules"
	"github.com/vbjayanti/cumulus/internal/domain/pdrs"
)

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ListMeta is the envelope header every list endpoint carries.
type ListMeta struct {
	Stack string `json:"stack"`
	Table string `json:"table"`
	Count int    `json:"count"`
}

type GranuleResponse struct {
	GranuleID    string          `json:"granuleId"`
	CollectionID string          `json:"collectionId"`
	Status       string          `json:"status"`
	Published    bool            `json:"published"`
	CmrLink      string          `json:"cmrLink,omitempty"`
	ExecutionArn string          `json:"execution,omitempty"`
	PdrName      string          `json:"pdrName,omitempty"`
	Files        []granules.File `json:"files"`
	Error        string          `json:"error,omitempty"`
	Duration     float64         `json:"duration"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt"`
}

type ExecutionResponse struct {
	Arn       string `json:"arn"`
	Name      string `json:"name,omitempty"`
	Workflow  string `json:"type,omitempty"`
	Status    string `json:"status"`
	ParentArn string `json:"parentArn,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type PdrResponse struct {
	PdrName   string `json:"pdrName"`
	Status    string `json:"status"`
	Running   int    `json:"running"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	Total     int    `json:"total"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Authenticator interface {
	Authenticate(*gin.Context) error
}

func AuthMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticator == nil {
			c.Next()
			return
		}
		if err := authenticator.Authenticate(c); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication failed"})
			return
		}
		c.Next()
	}
}

func RequiredParam(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Param(name))
	if value == "" {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", name+" is required")
		return "", false
	}
	return value, true
}

func QueryInt(c *gin.Context, name string) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

func ToGranuleResponse(g granules.Granule) GranuleResponse {
	files := g.Files
	if files == nil {
		files = []granules.File{}
	}
	return GranuleResponse{
		GranuleID:    g.GranuleID,
		CollectionID: g.CollectionID,
		Status:       string(g.Status),
		Published:    g.Published,
		CmrLink:      g.CmrLink,
		ExecutionArn: g.ExecutionArn,
		PdrName:      g.PdrName,
		Files:        files,
		Error:        g.Error,
		Duration:     g.Duration().Seconds(),
		CreatedAt:    g.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    g.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func ToExecutionResponse(e executions.Execution) ExecutionResponse {
	return ExecutionResponse{
		Arn:       e.Arn,
		Name:      e.Name,
		Workflow:  e.Workflow,
		Status:    string(e.Status),
		ParentArn: e.ParentArn,
		Error:     e.Error,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: e.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func ToPdrResponse(p pdrs.Pdr) PdrResponse {
	return PdrResponse{
		PdrName:   p.PdrName,
		Status:    string(p.Stats.Status()),
		Running:   p.Stats.Running,
		Completed: p.Stats.Completed,
		Failed:    p.Stats.Failed,
		Total:     p.Stats.Total(),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// WriteError maps domain errors onto HTTP statuses. Messages come from the
// errors themselves so clients see the exact validation and conflict text.
func WriteError(c *gin.Context, err error) {
	var conflict *granules.ConflictError
	var catalog *granules.CatalogError
	var moveErr *granules.MoveError
	switch {
	case errors.As(err, &conflict):
		WriteErrorCode(c, http.StatusConflict, "CONFLICT", conflict.Error())
	case errors.As(err, &moveErr):
		WriteErrorCode(c, http.StatusInternalServerError, "MOVE_INCOMPLETE", moveErr.Error())
	case errors.As(err, &catalog):
		WriteErrorCode(c, http.StatusInternalServerError, "CATALOG", catalog.Error())
	case errors.Is(err, granules.ErrDeletePublished):
		WriteErrorCode(c, http.StatusBadRequest, "DELETE_PUBLISHED", granules.ErrDeletePublished.Error())
	case errors.Is(err, granules.ErrNotFound):
		WriteErrorCode(c, http.StatusNotFound, "NOT_FOUND", "Granule not found")
	case errors.Is(err, executions.ErrNotFound):
		WriteErrorCode(c, http.StatusNotFound, "NOT_FOUND", "Execution not found")
	case errors.Is(err, pdrs.ErrNotFound):
		WriteErrorCode(c, http.StatusNotFound, "NOT_FOUND", "PDR not found")
	case errors.Is(err, granules.ErrUnsupportedAction),
		errors.Is(err, granules.ErrInvalidArgument),
		errors.Is(err, granules.ErrInvalidTransition),
		errors.Is(err, granules.ErrNotPublished):
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	case errors.Is(err, granules.ErrConflict):
		WriteErrorCode(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, granules.ErrWorkflowLaunch):
		WriteErrorCode(c, http.StatusServiceUnavailable, "WORKFLOW_LAUNCH", err.Error())
	default:
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func WriteErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}
