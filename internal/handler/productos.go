package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/service"
)

type ProductosHandler struct {
	svc        service.ProductoService
	inventario service.InventarioService
}

func NewProductosHandler(svc service.ProductoService, inventario service.InventarioService) *ProductosHandler {
	return &ProductosHandler{svc: svc, inventario: inventario}
}

func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
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

func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	respondList(c, resp, err)
}

func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
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

func (h *ProductosHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarProductoRequest
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

func (h *ProductosHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true, Message: "Producto eliminado"})
}

// ReponerStock godoc
// @Summary      Reponer stock
// @Description  Suma unidades al stock y registra un movimiento de reposición.
// @Tags         productos
// @Accept       json
// @Produce      json
// @Param        id   path     int                     true "ID del producto"
// @Param        body body     dto.ReponerStockRequest true "Cantidad a agregar"
// @Success      200  {object} dto.ReponerStockResponse
// @Failure      400  {object} apierror.ValidationError
// @Failure      404  {object} apierror.APIError
// @Router       /products/{id}/stock [patch]
func (h *ProductosHandler) ReponerStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ReponerStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.inventario.Reponer(c.Request.Context(), id, req.Cantidad)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimientos lists the ledger entries of one product, newest first.
func (h *ProductosHandler) Movimientos(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	filter.ProductoID = id
	resp, err := h.inventario.ListarMovimientos(c.Request.Context(), filter)
	respondList(c, resp, err)
}
