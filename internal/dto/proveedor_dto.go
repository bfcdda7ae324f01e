package dto

import "time"

// ProveedorRequest serves both POST and PUT /proveedores.
type ProveedorRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=1,max=255"`
	Contacto  *string `json:"contacto"  validate:"omitempty,max=255"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=50"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion"`
}

type ProveedorResponse struct {
	ID        uint      `json:"id"`
	Nombre    string    `json:"nombre"`
	Contacto  *string   `json:"contacto"`
	Telefono  *string   `json:"telefono"`
	Email     *string   `json:"email"`
	Direccion *string   `json:"direccion"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
