// Package apierror provides the error taxonomy shared by services and the
// standardized error envelope returned to HTTP clients.
// All errors returned to clients go through this package so that internal
// details (driver messages, SQL) never leak into the response body.
package apierror

import (
	"errors"
	"net/http"
)

// Sentinel errors. Services wrap them with fmt.Errorf("%w: ...") so the
// message carries context while errors.Is keeps working.
var (
	ErrValidation        = errors.New("datos invalidos")
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrConflict          = errors.New("conflicto con datos existentes")
	ErrUnavailable       = errors.New("base de datos no disponible")
	ErrTransactionFailed = errors.New("la transaccion fallo")
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Error: msg}
}

// WithDetails attaches diagnostic text to the envelope.
func WithDetails(msg, details string) *APIError {
	return &APIError{Error: msg, Details: details}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Error: "Error de validacion", Fields: fields}
}

// StatusFor maps an error from the service layer to its HTTP status.
// Order matters: a TransactionFailed that wraps InsufficientStock is a 409,
// not a 500.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromError builds the envelope for err. Unexpected errors keep the full
// cause in Details for diagnostics; that text never contains credentials.
func FromError(err error) *APIError {
	switch StatusFor(err) {
	case http.StatusInternalServerError:
		if errors.Is(err, ErrTransactionFailed) {
			return WithDetails(ErrTransactionFailed.Error(), err.Error())
		}
		return WithDetails("Error interno del servidor", err.Error())
	case http.StatusServiceUnavailable:
		return WithDetails("Base de datos no disponible", err.Error())
	default:
		return New(err.Error())
	}
}
