package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto is a catalog item. StockActual is owned by the stock ledger:
// only InventarioService mutates it after creation.
type Producto struct {
	ID           uint            `gorm:"primaryKey"`
	Nombre       string          `gorm:"size:255;index;not null"`
	Descripcion  *string         `gorm:"type:text"`
	CodigoBarras *string         `gorm:"size:50;uniqueIndex"` // nullable: NULLs never collide
	Categoria    string          `gorm:"size:100;not null"`
	PrecioCompra decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0;check:chk_productos_precio_compra,precio_compra >= 0"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0;check:chk_productos_precio_venta,precio_venta >= 0"`
	StockActual  int             `gorm:"not null;default:0;check:chk_productos_stock_actual,stock_actual >= 0"`
	StockMinimo  int             `gorm:"not null;default:0;check:chk_productos_stock_minimo,stock_minimo >= 0"`
	ProveedorID  *uint           `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID;constraint:OnDelete:SET NULL"`
}

func (Producto) TableName() string { return "productos" }
