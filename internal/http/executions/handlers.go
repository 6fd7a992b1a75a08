package executions

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vbjayanti/cumulus/internal/http/common"
	"github.com/vbjayanti/cumulus/internal/usecase"
)

type Handler struct {
	Executions usecase.ExecutionStore
}

func NewHandler(store usecase.ExecutionStore) *Handler {
	return &Handler{Executions: store}
}

func (h *Handler) HandleGet(c *gin.Context) {
	arn, ok := common.RequiredParam(c, "arn")
	if !ok {
		return
	}
	execution, err := h.Executions.Get(c.Request.Context(), arn)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.ToExecutionResponse(execution))
}
