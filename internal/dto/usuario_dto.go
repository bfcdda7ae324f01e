package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearUsuarioRequest struct {
	Nombre   string `json:"nombre"   validate:"required,min=2,max=255"`
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Rol      string `json:"rol"      validate:"required,oneof=admin cajero inventario"`
}

type ActualizarUsuarioRequest struct {
	Nombre   *string `json:"nombre"   validate:"omitempty,min=2,max=255"`
	Username *string `json:"username" validate:"omitempty,min=3,max=100"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	Rol      *string `json:"rol"      validate:"omitempty,oneof=admin cajero inventario"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// UsuarioResponse never includes the password hash.
type UsuarioResponse struct {
	ID        uint      `json:"id"`
	Nombre    string    `json:"nombre"`
	Username  string    `json:"username"`
	Rol       string    `json:"rol"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
