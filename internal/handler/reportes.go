package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/middleware"
	"github.com/pablini31/papelria/internal/service"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// General godoc
// @Summary      Resumen general
// @Description  Últimas ventas, productos y clientes más los contadores del tablero. Con la base caída responde todo en cero.
// @Tags         reportes
// @Produce      json
// @Success      200 {object} dto.ReporteGeneral
// @Router       /reports [get]
func (h *ReportesHandler) General(c *gin.Context) {
	resp, err := h.svc.General(c.Request.Context())
	if err != nil {
		if errors.Is(err, apierror.ErrUnavailable) {
			warnDegraded(c, err)
			c.JSON(http.StatusOK, dto.ReporteGeneral{
				Sales:     []dto.VentaResponse{},
				Products:  []dto.ProductoResponse{},
				Customers: []dto.ClienteResponse{},
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Vistas godoc
// @Summary      Vistas de reporte
// @Description  Sin tipo, o con uno desconocido, devuelve la lista de tipos disponibles.
// @Tags         reportes
// @Produce      json
// @Param        tipo query    string false "stock-critico | productos-mas-vendidos | clientes-historial | ventas-detalladas | resumen-diario | inventario-valorado | dashboard-completo"
// @Success      200  {object} dto.ReporteVistaResponse
// @Router       /reports/views [get]
func (h *ReportesHandler) Vistas(c *gin.Context) {
	tipo := c.Query("tipo")
	if !service.EsTipoReporte(tipo) {
		c.JSON(http.StatusOK, dto.TiposReporteResponse{TiposReportes: service.TiposReporte})
		return
	}

	data, err := h.svc.Vista(c.Request.Context(), tipo)
	if err != nil {
		if !errors.Is(err, apierror.ErrUnavailable) {
			respondError(c, err)
			return
		}
		warnDegraded(c, err)
		data = []any{}
	}
	c.JSON(http.StatusOK, dto.ReporteVistaResponse{
		Success:   true,
		Tipo:      tipo,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Exportar godoc
// @Summary      Exportar vista a Excel
// @Tags         reportes
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        tipo query    string true "Tipo de reporte"
// @Success      200  {file}   binary
// @Failure      400  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /reports/export [get]
func (h *ReportesHandler) Exportar(c *gin.Context) {
	f, filename, err := h.svc.Exportar(c.Request.Context(), c.Query("tipo"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Err(err).
			Msg("xlsx write failed")
	}
}

func warnDegraded(c *gin.Context, err error) {
	log.Warn().
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("path", c.FullPath()).
		Err(err).
		Msg("datastore unavailable, returning empty report")
}
