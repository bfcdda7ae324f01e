package dto

import "time"

// MovimientoFilter is bound from the query string of GET /products/:id/movimientos.
type MovimientoFilter struct {
	ProductoID uint   `form:"-"`
	Tipo       string `form:"tipo" validate:"omitempty,oneof=venta restauracion reposicion"`
	Limit      int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type MovimientoStockResponse struct {
	ID            uint      `json:"id"`
	ProductoID    uint      `json:"producto_id"`
	Tipo          string    `json:"tipo"`
	Cantidad      int       `json:"cantidad"`
	StockAnterior int       `json:"stock_anterior"`
	StockNuevo    int       `json:"stock_nuevo"`
	Motivo        string    `json:"motivo"`
	VentaID       *uint     `json:"venta_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// AlertaStockResponse lists a product at or below its minimum.
// Estado: "AGOTADO" | "STOCK BAJO"
type AlertaStockResponse struct {
	ProductoID  uint   `json:"producto_id"`
	Nombre      string `json:"nombre"`
	Categoria   string `json:"categoria"`
	StockActual int    `json:"stock_actual"`
	StockMinimo int    `json:"stock_minimo"`
	Estado      string `json:"estado"`
}
