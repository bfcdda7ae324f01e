package model

import "time"

// Proveedor represents a supplier. Products reference it optionally.
type Proveedor struct {
	ID        uint    `gorm:"primaryKey"`
	Nombre    string  `gorm:"size:255;not null"`
	Contacto  *string `gorm:"size:255"`
	Telefono  *string `gorm:"size:50"`
	Email     *string `gorm:"size:255"`
	Direccion *string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Proveedor) TableName() string { return "proveedores" }
