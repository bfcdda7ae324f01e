package service

import (
	"context"
	"testing"

	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/model"
	"github.com/pablini31/papelria/internal/repository"
	"github.com/pablini31/papelria/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReporteEnv(t *testing.T) (*ventaEnv, ReporteService) {
	t.Helper()
	env := newVentaEnv(t)
	svc := NewReporteService(repository.NewReporteRepository(env.db),
		repository.NewVentaRepository(env.db), repository.NewClienteRepository(env.db), nil)
	return env, svc
}

func TestReporteGeneral_Resumen(t *testing.T) {
	env, svc := newReporteEnv(t)
	ctx := context.Background()
	a := testutil.Producto(t, env.db, "A", 10, "10.00")
	b := testutil.Producto(t, env.db, "B", 3, "4.00")
	testutil.Producto(t, env.db, "C", 0, "1.00")
	testutil.Cliente(t, env.db, "Cliente", "c@x.mx")

	_, err := env.svc.Crear(ctx, ventaReq("R-1", linea{a, 2}, linea{b, 1})) // 24.00, B → 2
	require.NoError(t, err)
	pendiente := ventaReq("R-2", linea{a, 1})
	pendiente.Estado = model.EstadoPendiente
	_, err = env.svc.Crear(ctx, pendiente)
	require.NoError(t, err)

	rep, err := svc.General(ctx)
	require.NoError(t, err)
	assert.Len(t, rep.Sales, 2)
	assert.Len(t, rep.Products, 3)
	assert.Len(t, rep.Customers, 1)

	s := rep.Summary
	assert.Equal(t, int64(1), s.TotalSales)
	assert.True(t, decimal.RequireFromString("24").Equal(s.TotalRevenue), "revenue = %s", s.TotalRevenue)
	assert.Equal(t, int64(3), s.TotalProducts)
	assert.Equal(t, int64(1), s.TotalCustomers)
	assert.Equal(t, int64(1), s.LowStockProducts)
	assert.Equal(t, int64(1), s.OutOfStockProducts)
}

func TestReporteVista_TodosLosTipos(t *testing.T) {
	env, svc := newReporteEnv(t)
	ctx := context.Background()
	p := testutil.Producto(t, env.db, "Plumones", 5, "30.00")
	c := testutil.Cliente(t, env.db, "Oficina Centro", "")
	req := ventaReq("R-1", linea{p, 4})
	req.ClienteID = &c.ID
	_, err := env.svc.Crear(ctx, req)
	require.NoError(t, err)

	for _, tipo := range TiposReporte {
		t.Run(tipo, func(t *testing.T) {
			data, err := svc.Vista(ctx, tipo)
			require.NoError(t, err)
			assert.NotNil(t, data)
		})
	}

	data, err := svc.Vista(ctx, VistaProductosMasVendidos)
	require.NoError(t, err)
	rows, ok := data.([]dto.ProductoMasVendidoRow)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, "Plumones", rows[0].Nombre)

	_, err = svc.Vista(ctx, "ventas-por-hora")
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestReporteExportar(t *testing.T) {
	env, svc := newReporteEnv(t)
	ctx := context.Background()
	testutil.Producto(t, env.db, "Engrapadora", 1, "80.00")

	f, filename, err := svc.Exportar(ctx, VistaStockCritico)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, filename, "reporte_stock-critico_")

	rows, err := f.GetRows(VistaStockCritico)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], "Engrapadora")

	dash, _, err := svc.Exportar(ctx, VistaDashboardCompleto)
	require.NoError(t, err)
	defer dash.Close()
	assert.Equal(t, []string{"productos-mas-vendidos", "clientes-top", "resumen-hoy"}, dash.GetSheetList())
}
