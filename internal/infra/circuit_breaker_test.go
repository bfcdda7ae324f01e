package infra

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = fmt.Errorf("query: %w", driver.ErrBadConn)

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Hour})

	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return errDown })
	}
	assert.Equal(t, CBClosed, cb.State())

	_ = cb.Execute(func() error { return errDown })
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.True(t, IsUnavailable(err))
}

func TestCircuitBreaker_IgnoresQueryErrors(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1})
	err := cb.Execute(func() error { return errors.New("UNIQUE constraint failed: productos.codigo_barras") })
	require.Error(t, err)
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: 20 * time.Millisecond})
	_ = cb.Execute(func() error { return errDown })
	require.Equal(t, CBOpen, cb.State())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())

	// A failed probe reopens.
	_ = cb.Execute(func() error { return errDown })
	assert.Equal(t, CBOpen, cb.State())

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}

func TestIsUnavailable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrCircuitOpen, true},
		{errDown, true},
		{errors.New("sql: database is closed"), true},
		{errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), true},
		{errors.New("record not found"), false},
		{errors.New("CHECK constraint failed: chk_productos_stock"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsUnavailable(tc.err), "%v", tc.err)
	}

	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: ventas.numero_recibo")))
	assert.True(t, IsForeignKeyViolation(errors.New("FOREIGN KEY constraint failed")))
	assert.True(t, IsCheckViolation(errors.New("CHECK constraint failed: stock")))
	assert.False(t, IsUniqueViolation(nil))
}
