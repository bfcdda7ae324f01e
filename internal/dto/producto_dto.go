package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre       string          `json:"nombre"        validate:"required,min=1,max=255"`
	Descripcion  *string         `json:"descripcion"`
	CodigoBarras *string         `json:"codigo_barras" validate:"omitempty,max=50"`
	Categoria    string          `json:"categoria"     validate:"required,max=100"`
	PrecioCompra decimal.Decimal `json:"precio_compra" validate:"min=0"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"  validate:"min=0"`
	StockActual  int             `json:"stock_actual"  validate:"min=0"`
	StockMinimo  int             `json:"stock_minimo"  validate:"min=0"`
	ProveedorID  *uint           `json:"proveedor_id"`
}

// ActualizarProductoRequest never carries stock_actual: after creation stock
// only moves through sales and PATCH /products/:id/stock.
type ActualizarProductoRequest struct {
	Nombre       *string          `json:"nombre"        validate:"omitempty,min=1,max=255"`
	Descripcion  *string          `json:"descripcion"`
	CodigoBarras *string          `json:"codigo_barras" validate:"omitempty,max=50"`
	Categoria    *string          `json:"categoria"     validate:"omitempty,max=100"`
	PrecioCompra *decimal.Decimal `json:"precio_compra" validate:"omitempty,min=0"`
	PrecioVenta  *decimal.Decimal `json:"precio_venta"  validate:"omitempty,min=0"`
	StockMinimo  *int             `json:"stock_minimo"  validate:"omitempty,min=0"`
	ProveedorID  *uint            `json:"proveedor_id"`
}

// ReponerStockRequest is the body of PATCH /products/:id/stock (restock only).
type ReponerStockRequest struct {
	Cantidad int `json:"cantidad" validate:"required,min=1"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductoFilter struct {
	Nombre       string `form:"nombre"`
	Categoria    string `form:"categoria"`
	CodigoBarras string `form:"codigo_barras"`
	ProveedorID  *uint  `form:"proveedor_id"`
	StockBajo    bool   `form:"stock_bajo"`
	Limit        int    `form:"limit,default=500" validate:"min=1,max=1000"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID              uint            `json:"id"`
	Nombre          string          `json:"nombre"`
	Descripcion     *string         `json:"descripcion"`
	CodigoBarras    *string         `json:"codigo_barras"`
	Categoria       string          `json:"categoria"`
	PrecioCompra    decimal.Decimal `json:"precio_compra"`
	PrecioVenta     decimal.Decimal `json:"precio_venta"`
	StockActual     int             `json:"stock_actual"`
	StockMinimo     int             `json:"stock_minimo"`
	ProveedorID     *uint           `json:"proveedor_id"`
	NombreProveedor *string         `json:"nombre_proveedor,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ReponerStockResponse keeps the camelCase keys the POS front-end reads.
type ReponerStockResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	StockAnterior    int    `json:"stockAnterior"`
	StockNuevo       int    `json:"stockNuevo"`
	CantidadAgregada int    `json:"cantidadAgregada"`
}

// ConsultaPreciosResponse is returned by the barcode price check endpoint.
type ConsultaPreciosResponse struct {
	ID              uint            `json:"id"`
	Nombre          string          `json:"nombre"`
	PrecioVenta     decimal.Decimal `json:"precio_venta"`
	StockDisponible int             `json:"stock_disponible"`
	Categoria       string          `json:"categoria"`
}
