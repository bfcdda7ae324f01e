package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pablini31/papelria/internal/service"
)

// ConsultaPreciosHandler serves the counter price check. Read-only; the cache
// lives in the service.
type ConsultaPreciosHandler struct{ svc service.ProductoService }

func NewConsultaPreciosHandler(svc service.ProductoService) *ConsultaPreciosHandler {
	return &ConsultaPreciosHandler{svc: svc}
}

// GetPrecioPorBarcode godoc
// @Summary Consulta de precio por codigo de barras
// @Tags precio
// @Produce json
// @Param barcode path string true "Codigo de barras"
// @Success 200 {object} dto.ConsultaPreciosResponse
// @Failure 404 {object} apierror.APIError
// @Failure 503 {object} apierror.APIError
// @Router /precio/{barcode} [get]
func (h *ConsultaPreciosHandler) GetPrecioPorBarcode(c *gin.Context) {
	resp, err := h.svc.ConsultarPrecio(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
