package service

import (
	"context"
	"testing"

	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/repository"
	"github.com/pablini31/papelria/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientes_CRUD(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewClienteService(repository.NewClienteRepository(db))
	ctx := context.Background()

	c, err := svc.Crear(ctx, dto.ClienteRequest{Nombre: " Escuela Primaria ", Email: strPtr("compras@escuela.mx")})
	require.NoError(t, err)
	assert.Equal(t, "Escuela Primaria", c.Nombre)

	upd, err := svc.Actualizar(ctx, c.ID, dto.ClienteRequest{Nombre: "Escuela Primaria 12", Telefono: strPtr("555-0101")})
	require.NoError(t, err)
	assert.Equal(t, "Escuela Primaria 12", upd.Nombre)
	assert.Nil(t, upd.Email)

	lista, err := svc.Listar(ctx)
	require.NoError(t, err)
	assert.Len(t, lista, 1)

	require.NoError(t, svc.Eliminar(ctx, c.ID))
	_, err = svc.ObtenerPorID(ctx, c.ID)
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

// Deleting a customer keeps its sales as occasional-customer sales.
func TestEliminarCliente_ConservaVentas(t *testing.T) {
	env := newVentaEnv(t)
	ctx := context.Background()
	svc := NewClienteService(repository.NewClienteRepository(env.db))
	cliente := testutil.Cliente(t, env.db, "Maria", "")
	p := testutil.Producto(t, env.db, "Lapiz", 10, "5.00")

	req := ventaReq("R-1", linea{p, 1})
	req.ClienteID = &cliente.ID
	v, err := env.svc.Crear(ctx, req)
	require.NoError(t, err)

	require.NoError(t, svc.Eliminar(ctx, cliente.ID))
	got, err := env.svc.ObtenerPorID(ctx, v.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ClienteID)
	assert.Equal(t, 9, testutil.Stock(t, env.db, p.ID))
}
