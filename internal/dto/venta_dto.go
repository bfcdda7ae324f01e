package dto

import (
	"time"

	"github.com/pablini31/papelria/internal/model"
	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /sales.
type VentaFilter struct {
	Estado    string `form:"estado"`
	ClienteID *uint  `form:"cliente_id"`
	Desde     string `form:"desde"` // YYYY-MM-DD, inclusive
	Hasta     string `form:"hasta"` // YYYY-MM-DD, inclusive
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemVentaRequest accepts the column names of items_venta and the English
// keys older clients send (product_id, quantity, unit_price).
type ItemVentaRequest struct {
	ProductoID     uint            `json:"producto_id"     validate:"required"`
	Cantidad       int             `json:"cantidad"        validate:"min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`

	ProductID *uint            `json:"product_id,omitempty"`
	Quantity  *int             `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// VentaRequest is the body of POST /sales and PUT /sales/:id.
// NumeroRecibo and Total are mandatory on create; the service enforces it so
// both routes share one shape.
type VentaRequest struct {
	NumeroRecibo  string             `json:"numero_recibo"  validate:"omitempty,max=50"`
	ClienteID     *uint              `json:"cliente_id"`
	NombreCliente *string            `json:"nombre_cliente" validate:"omitempty,max=255"`
	Total         *decimal.Decimal   `json:"total"`
	Estado        string             `json:"estado"         validate:"omitempty,oneof=pendiente completada cancelada"`
	MetodoPago    string             `json:"metodo_pago"    validate:"omitempty,oneof=efectivo tarjeta transferencia"`
	Notas         *string            `json:"notas"`
	Items         []ItemVentaRequest `json:"items"          validate:"dive"`

	ReceiptNumber string `json:"receipt_number,omitempty"`
	CustomerID    *uint  `json:"customer_id,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Status        string `json:"status,omitempty"`
}

// Normalize folds the English aliases into the canonical fields and maps
// state/payment spellings onto their stored values. Spanish keys win when
// both are sent.
func (r *VentaRequest) Normalize() {
	if r.NumeroRecibo == "" {
		r.NumeroRecibo = r.ReceiptNumber
	}
	if r.ClienteID == nil {
		r.ClienteID = r.CustomerID
	}
	if r.NombreCliente == nil && r.CustomerName != "" {
		name := r.CustomerName
		r.NombreCliente = &name
	}
	if r.MetodoPago == "" {
		r.MetodoPago = r.PaymentMethod
	}
	if r.Estado == "" {
		r.Estado = r.Status
	}
	if r.MetodoPago != "" {
		r.MetodoPago = model.NormalizarMetodoPago(r.MetodoPago)
	}
	if r.Estado != "" {
		r.Estado = model.NormalizarEstado(r.Estado)
	}
	for i := range r.Items {
		it := &r.Items[i]
		if it.ProductoID == 0 && it.ProductID != nil {
			it.ProductoID = *it.ProductID
		}
		if it.Cantidad == 0 && it.Quantity != nil {
			it.Cantidad = *it.Quantity
		}
		if it.PrecioUnitario.IsZero() && it.UnitPrice != nil {
			it.PrecioUnitario = *it.UnitPrice
		}
	}
}

// EnviarReciboRequest overrides the customer's stored email when set.
type EnviarReciboRequest struct {
	Email *string `json:"email" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ID             uint            `json:"id"`
	VentaID        uint            `json:"venta_id"`
	ProductoID     uint            `json:"producto_id"`
	NombreProducto string          `json:"nombre_producto"`
	CodigoBarras   *string         `json:"codigo_barras,omitempty"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	PrecioTotal    decimal.Decimal `json:"precio_total"`
	CreatedAt      time.Time       `json:"created_at"`
}

type VentaResponse struct {
	ID            uint                `json:"id"`
	NumeroRecibo  string              `json:"numero_recibo"`
	ClienteID     *uint               `json:"cliente_id"`
	NombreCliente *string             `json:"nombre_cliente"`
	Total         decimal.Decimal     `json:"total"`
	Estado        string              `json:"estado"`
	MetodoPago    string              `json:"metodo_pago"`
	Notas         *string             `json:"notas"`
	Items         []ItemVentaResponse `json:"items,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}
