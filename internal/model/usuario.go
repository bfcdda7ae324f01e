package model

import "time"

// Usuario stores system users.
// Rol: "admin" | "cajero" | "inventario"
type Usuario struct {
	ID           uint   `gorm:"primaryKey"`
	Nombre       string `gorm:"size:255;not null"`
	Username     string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null;default:'cajero'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }
