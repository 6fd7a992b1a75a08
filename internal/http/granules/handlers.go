package granules

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vbjayanti/cumulus/internal/domain/granules"
	"github.com/vbjayanti/cumulus/internal/http/common"
	"github.com/vbjayanti/cumulus/internal/usecase"
)

type Handler struct {
	Service *usecase.GranuleService
	Stack   string
}

func NewHandler(service *usecase.GranuleService, stack string) *Handler {
	return &Handler{Service: service, Stack: stack}
}

type listResponse struct {
	Meta    common.ListMeta          `json:"meta"`
	Results []common.GranuleResponse `json:"results"`
}

func (h *Handler) HandleList(c *gin.Context) {
	filter := usecase.GranuleListFilter{
		Status:       strings.TrimSpace(c.Query("status")),
		CollectionID: strings.TrimSpace(c.Query("collectionId")),
		Prefix:       strings.TrimSpace(c.Query("prefix")),
		Limit:        common.QueryInt(c, "limit"),
		Page:         common.QueryInt(c, "page"),
	}
	items, count, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	results := make([]common.GranuleResponse, 0, len(items))
	for _, item := range items {
		results = append(results, common.ToGranuleResponse(item))
	}
	c.JSON(http.StatusOK, listResponse{
		Meta:    common.ListMeta{Stack: h.Stack, Table: "granule", Count: count},
		Results: results,
	})
}

func (h *Handler) HandleGet(c *gin.Context) {
	granuleID, ok := common.RequiredParam(c, "granuleId")
	if !ok {
		return
	}
	granule, err := h.Service.Get(c.Request.Context(), granuleID)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.ToGranuleResponse(granule))
}

// HandleAction dispatches PUT /granules/:granuleId on the request body's
// action field.
func (h *Handler) HandleAction(c *gin.Context) {
	granuleID, ok := common.RequiredParam(c, "granuleId")
	if !ok {
		return
	}
	var req struct {
		Action       string                 `json:"action"`
		Workflow     string                 `json:"workflow,omitempty"`
		Destinations []granules.Destination `json:"destinations,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	action, err := usecase.ParseAction(req.Action)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	ctx := c.Request.Context()
	switch action {
	case usecase.ActionReingest:
		result, err := h.Service.Reingest(ctx, granuleID)
		if err != nil {
			common.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	case usecase.ActionApplyWorkflow:
		result, err := h.Service.ApplyWorkflow(ctx, granuleID, req.Workflow)
		if err != nil {
			common.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	case usecase.ActionRemoveFromCmr:
		result, err := h.Service.RemoveFromCmr(ctx, granuleID)
		if err != nil {
			common.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	case usecase.ActionMove:
		if len(req.Destinations) == 0 {
			common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "destinations is required")
			return
		}
		granule, err := h.Service.Move(ctx, granuleID, req.Destinations)
		if err != nil {
			common.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, usecase.ActionResult{
			GranuleID: granule.GranuleID,
			Action:    string(usecase.ActionMove),
			Status:    "SUCCESS",
		})
	}
}

func (h *Handler) HandleDelete(c *gin.Context) {
	granuleID, ok := common.RequiredParam(c, "granuleId")
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), granuleID); err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Record deleted"})
}

func (h *Handler) HandleBulk(c *gin.Context) {
	var req usecase.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	op, err := h.Service.StartBulk(c.Request.Context(), req)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, op)
}

func (h *Handler) HandleGetBulk(c *gin.Context) {
	id, ok := common.RequiredParam(c, "id")
	if !ok {
		return
	}
	op, err := h.Service.GetBulk(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, granules.ErrNotFound) {
			common.WriteErrorCode(c, http.StatusNotFound, "NOT_FOUND", "Bulk operation not found")
			return
		}
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}
