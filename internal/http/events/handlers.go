// Package events receives workflow execution reports and folds them into
// granule, execution, and PDR state.
package events

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vbjayanti/cumulus/internal/http/common"
	"github.com/vbjayanti/cumulus/internal/usecase"
)

type Handler struct {
	Service *usecase.GranuleService
}

func NewHandler(service *usecase.GranuleService) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) HandleReport(c *gin.Context) {
	var report usecase.ExecutionReport
	if err := c.ShouldBindJSON(&report); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if err := h.Service.RecordExecutionEvent(c.Request.Context(), report); err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Report recorded"})
}
