package dto

import "time"

// ClienteRequest serves both POST and PUT /customers; PUT replaces every field.
type ClienteRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=1,max=255"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=50"`
	Direccion *string `json:"direccion"`
}

type ClienteResponse struct {
	ID        uint      `json:"id"`
	Nombre    string    `json:"nombre"`
	Email     *string   `json:"email"`
	Telefono  *string   `json:"telefono"`
	Direccion *string   `json:"direccion"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
