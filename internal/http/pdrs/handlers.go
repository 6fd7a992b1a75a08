package pdrs

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vbjayanti/cumulus/internal/http/common"
	"github.com/vbjayanti/cumulus/internal/usecase"
)

type Handler struct {
	Pdrs usecase.PdrStore
}

func NewHandler(store usecase.PdrStore) *Handler {
	return &Handler{Pdrs: store}
}

func (h *Handler) HandleGet(c *gin.Context) {
	pdrName, ok := common.RequiredParam(c, "pdrName")
	if !ok {
		return
	}
	pdr, err := h.Pdrs.Get(c.Request.Context(), pdrName)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.ToPdrResponse(pdr))
}
