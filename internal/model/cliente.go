package model

import "time"

// Cliente is a registered customer. Email is deliberately not unique.
type Cliente struct {
	ID        uint    `gorm:"primaryKey"`
	Nombre    string  `gorm:"size:255;not null"`
	Email     *string `gorm:"size:255"`
	Telefono  *string `gorm:"size:50"`
	Direccion *string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Cliente) TableName() string { return "clientes" }
