package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/service"
)

type ProveedoresHandler struct{ svc service.ProveedorService }

func NewProveedoresHandler(svc service.ProveedorService) *ProveedoresHandler {
	return &ProveedoresHandler{svc: svc}
}

// Crear godoc
// @Summary Alta de proveedor
// @Tags proveedores
// @Accept json
// @Produce json
// @Param body body dto.ProveedorRequest true "Proveedor"
// @Success 201 {object} dto.ProveedorResponse
// @Failure 400 {object} apierror.ValidationError
// @Router /proveedores [post]
func (h *ProveedoresHandler) Crear(c *gin.Context) {
	var req dto.ProveedorRequest
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

// Listar godoc
// @Summary Listar proveedores
// @Tags proveedores
// @Produce json
// @Success 200 {array} dto.ProveedorResponse
// @Router /proveedores [get]
func (h *ProveedoresHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	respondList(c, resp, err)
}

func (h *ProveedoresHandler) ObtenerPorID(c *gin.Context) {
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

func (h *ProveedoresHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ProveedorRequest
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

// Eliminar unlinks the supplier from its products before removing it.
func (h *ProveedoresHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true, Message: "Proveedor eliminado"})
}
