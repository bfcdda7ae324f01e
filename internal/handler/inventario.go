package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/pablini31/papelria/internal/service"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// ObtenerAlertas godoc
// @Summary Productos agotados o bajo el minimo
// @Tags inventario
// @Produce json
// @Success 200 {array} dto.AlertaStockResponse
// @Router /inventario/alertas [get]
func (h *InventarioHandler) ObtenerAlertas(c *gin.Context) {
	resp, err := h.svc.ObtenerAlertas(c.Request.Context())
	respondList(c, resp, err)
}
