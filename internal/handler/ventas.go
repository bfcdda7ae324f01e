package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/service"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// Listar godoc
// @Summary      Listar ventas
// @Description  Ventas con su cliente, más recientes primero. Devuelve [] si la base no responde.
// @Tags         ventas
// @Produce      json
// @Param        estado     query string false "completada | pendiente | cancelada"
// @Param        cliente_id query int    false "ID del cliente"
// @Param        desde      query string false "YYYY-MM-DD"
// @Param        hasta      query string false "YYYY-MM-DD"
// @Param        limit      query int    false "Máximo de registros (default 100)"
// @Success      200 {array}  dto.VentaResponse
// @Failure      400 {object} apierror.APIError
// @Router       /sales [get]
func (h *VentasHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	respondList(c, resp, err)
}

// Crear godoc
// @Summary      Registrar una venta
// @Description  Crea cabecera, líneas y descuenta stock en una sola transacción.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        body body     dto.VentaRequest true "Venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      400  {object} apierror.ValidationError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /sales [post]
func (h *VentasHandler) Crear(c *gin.Context) {
	var req dto.VentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ObtenerPorID godoc
// @Summary      Obtener venta
// @Tags         ventas
// @Produce      json
// @Param        id  path     int true "ID de la venta"
// @Success      200 {object} dto.VentaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /sales/{id} [get]
func (h *VentasHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary      Actualizar venta
// @Description  Devuelve el stock de las líneas anteriores y aplica las nuevas en la misma transacción.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        id   path     int              true "ID de la venta"
// @Param        body body     dto.VentaRequest true "Venta"
// @Success      200  {object} dto.VentaResponse
// @Failure      400  {object} apierror.ValidationError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /sales/{id} [put]
func (h *VentasHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.VentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar venta
// @Description  Restaura el stock de cada línea y borra la venta.
// @Tags         ventas
// @Produce      json
// @Param        id  path     int true "ID de la venta"
// @Success      200 {object} successResponse
// @Failure      404 {object} apierror.APIError
// @Router       /sales/{id} [delete]
func (h *VentasHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true, Message: "Venta eliminada"})
}

// Items godoc
// @Summary      Líneas de una venta
// @Tags         ventas
// @Produce      json
// @Param        id  path    int true "ID de la venta"
// @Success      200 {array} dto.ItemVentaResponse
// @Router       /sales/{id}/items [get]
func (h *VentasHandler) Items(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Items(c.Request.Context(), id)
	respondList(c, resp, err)
}

// Recibo godoc
// @Summary      Recibo PDF
// @Tags         ventas
// @Produce      application/pdf
// @Param        id  path     int true "ID de la venta"
// @Success      200 {file}   binary
// @Failure      404 {object} apierror.APIError
// @Router       /sales/{id}/receipt [get]
func (h *VentasHandler) Recibo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	pdf, err := h.svc.Recibo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+pdf.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf.Contenido)
}

// EnviarRecibo godoc
// @Summary      Enviar recibo por correo
// @Description  Encola el envío. Sin body usa el email del cliente de la venta.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        id   path     int                      true  "ID de la venta"
// @Param        body body     dto.EnviarReciboRequest  false "Destinatario"
// @Success      202  {object} successResponse
// @Failure      400  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /sales/{id}/receipt/email [post]
func (h *VentasHandler) EnviarRecibo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.EnviarReciboRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.EnviarRecibo(c.Request.Context(), id, req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, successResponse{Success: true, Message: "Recibo en cola de envío"})
}
