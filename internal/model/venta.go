package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EstadoPendiente  = "pendiente"
	EstadoCompletada = "completada"
	EstadoCancelada  = "cancelada"

	MetodoEfectivo      = "efectivo"
	MetodoTarjeta       = "tarjeta"
	MetodoTransferencia = "transferencia"
)

// Venta is the sale header. Its items and their stock effects are created,
// updated and deleted together by VentaService.
type Venta struct {
	ID            uint            `gorm:"primaryKey"`
	NumeroRecibo  string          `gorm:"size:50;uniqueIndex;not null"`
	ClienteID     *uint           `gorm:"index"` // nil = cliente ocasional
	NombreCliente *string         `gorm:"size:255"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Estado        string          `gorm:"type:varchar(20);not null;default:'completada'"`
	MetodoPago    string          `gorm:"type:varchar(20);not null;default:'efectivo'"`
	Notas         *string         `gorm:"type:text"`
	CreatedAt     time.Time       `gorm:"index"`
	UpdatedAt     time.Time

	Cliente *Cliente    `gorm:"foreignKey:ClienteID;constraint:OnDelete:SET NULL"`
	Items   []ItemVenta `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
}

func (Venta) TableName() string { return "ventas" }

// ItemVenta is one line of a sale. PrecioUnitario and PrecioTotal are
// snapshots taken when the line is written and never recomputed.
type ItemVenta struct {
	ID             uint            `gorm:"primaryKey"`
	VentaID        uint            `gorm:"not null;index"`
	ProductoID     uint            `gorm:"not null;index"`
	Cantidad       int             `gorm:"not null;check:chk_items_venta_cantidad,cantidad >= 1"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioTotal    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt      time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
}

func (ItemVenta) TableName() string { return "items_venta" }

var estadoAliases = map[string]string{
	"completada": EstadoCompletada,
	"completado": EstadoCompletada,
	"completed":  EstadoCompletada,
	"pendiente":  EstadoPendiente,
	"pending":    EstadoPendiente,
	"cancelada":  EstadoCancelada,
	"cancelado":  EstadoCancelada,
	"cancelled":  EstadoCancelada,
	"canceled":   EstadoCancelada,
}

var metodoAliases = map[string]string{
	"efectivo":      MetodoEfectivo,
	"cash":          MetodoEfectivo,
	"tarjeta":       MetodoTarjeta,
	"card":          MetodoTarjeta,
	"transferencia": MetodoTransferencia,
	"transfer":      MetodoTransferencia,
}

// NormalizarEstado maps every accepted spelling of a sale state onto its
// canonical value. Unknown input is returned lower-cased so validation can
// reject it.
func NormalizarEstado(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if v, ok := estadoAliases[s]; ok {
		return v
	}
	return s
}

// NormalizarMetodoPago does the same for payment methods.
func NormalizarMetodoPago(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if v, ok := metodoAliases[s]; ok {
		return v
	}
	return s
}

// EstadoValido reports whether s is a canonical sale state.
func EstadoValido(s string) bool {
	return s == EstadoPendiente || s == EstadoCompletada || s == EstadoCancelada
}

// MetodoPagoValido reports whether s is a canonical payment method.
func MetodoPagoValido(s string) bool {
	return s == MetodoEfectivo || s == MetodoTarjeta || s == MetodoTransferencia
}
