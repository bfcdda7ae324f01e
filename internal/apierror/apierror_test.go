package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", fmt.Errorf("%w: cantidad debe ser mayor a cero", ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: producto 9", ErrNotFound), http.StatusNotFound},
		{"stock", fmt.Errorf("%w: Lapiz", ErrInsufficientStock), http.StatusConflict},
		{"conflict", ErrConflict, http.StatusConflict},
		{"unavailable", ErrUnavailable, http.StatusServiceUnavailable},
		{"tx failed", fmt.Errorf("%w: commit", ErrTransactionFailed), http.StatusInternalServerError},
		{"tx wraps stock", fmt.Errorf("%w: %w", ErrTransactionFailed, ErrInsufficientStock), http.StatusConflict},
		{"tx wraps not found", fmt.Errorf("%w: %w", ErrTransactionFailed, ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.err))
		})
	}
}

func TestFromError(t *testing.T) {
	e := FromError(fmt.Errorf("%w: Lapiz (disponible 1, solicitado 2)", ErrInsufficientStock))
	assert.Equal(t, "stock insuficiente: Lapiz (disponible 1, solicitado 2)", e.Error)
	assert.Empty(t, e.Details)

	e = FromError(fmt.Errorf("%w: deadlock", ErrTransactionFailed))
	assert.Equal(t, ErrTransactionFailed.Error(), e.Error)
	assert.Contains(t, e.Details, "deadlock")

	e = FromError(fmt.Errorf("%w: dial tcp", ErrUnavailable))
	assert.Equal(t, "Base de datos no disponible", e.Error)

	e = FromError(errors.New("nil pointer"))
	assert.Equal(t, "Error interno del servidor", e.Error)
	assert.Equal(t, "nil pointer", e.Details)
}
