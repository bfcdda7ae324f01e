package model

import "time"

const (
	MovimientoVenta        = "venta"
	MovimientoRestauracion = "restauracion"
	MovimientoReposicion   = "reposicion"
)

// MovimientoStock registra cada cambio de stock en un producto.
// Se crea en la misma transaccion que el cambio que documenta.
type MovimientoStock struct {
	ID            uint   `gorm:"primaryKey"`
	ProductoID    uint   `gorm:"not null;index"`
	Tipo          string `gorm:"type:varchar(20);not null"`
	Cantidad      int    `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior int    `gorm:"not null"`
	StockNuevo    int    `gorm:"not null"`
	Motivo        string `gorm:"size:255"`
	VentaID       *uint  `gorm:"index"` // sin FK: el historial sobrevive al borrado de la venta
	CreatedAt     time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
