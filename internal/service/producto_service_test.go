package service

import (
	"context"
	"testing"

	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/repository"
	"github.com/pablini31/papelria/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProductoSvc(t *testing.T) (ProductoService, ProveedorService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	proveedores := repository.NewProveedorRepository(db)
	svc := NewProductoService(repository.NewProductoRepository(db), proveedores, NewPrecioCache(nil))
	return svc, NewProveedorService(proveedores), db
}

func strPtr(s string) *string { return &s }

func TestCrearProducto(t *testing.T) {
	svc, _, _ := newProductoSvc(t)
	resp, err := svc.Crear(context.Background(), dto.CrearProductoRequest{
		Nombre:       "  Cuaderno rayado ",
		CodigoBarras: strPtr("7501234567890"),
		Categoria:    "Cuadernos",
		PrecioCompra: decimal.RequireFromString("20"),
		PrecioVenta:  decimal.RequireFromString("35.499"),
		StockActual:  12,
		StockMinimo:  3,
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "Cuaderno rayado", resp.Nombre)
	assert.True(t, decimal.RequireFromString("35.50").Equal(resp.PrecioVenta))
	assert.Equal(t, 12, resp.StockActual)
}

func TestCrearProducto_CodigoDeBarrasDuplicado(t *testing.T) {
	svc, _, _ := newProductoSvc(t)
	ctx := context.Background()
	req := dto.CrearProductoRequest{Nombre: "A", Categoria: "X", CodigoBarras: strPtr("111")}
	_, err := svc.Crear(ctx, req)
	require.NoError(t, err)

	req.Nombre = "B"
	_, err = svc.Crear(ctx, req)
	assert.ErrorIs(t, err, apierror.ErrConflict)

	// Blank barcodes are stored as NULL and never collide.
	_, err = svc.Crear(ctx, dto.CrearProductoRequest{Nombre: "C", Categoria: "X", CodigoBarras: strPtr(" ")})
	require.NoError(t, err)
	_, err = svc.Crear(ctx, dto.CrearProductoRequest{Nombre: "D", Categoria: "X", CodigoBarras: strPtr("")})
	require.NoError(t, err)
}

func TestCrearProducto_ProveedorInexistente(t *testing.T) {
	svc, _, _ := newProductoSvc(t)
	id := uint(55)
	_, err := svc.Crear(context.Background(), dto.CrearProductoRequest{Nombre: "A", Categoria: "X", ProveedorID: &id})
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestActualizarProducto_NoTocaStock(t *testing.T) {
	svc, _, db := newProductoSvc(t)
	ctx := context.Background()
	p := testutil.Producto(t, db, "Lapiz", 9, "4.00")

	nuevo := decimal.RequireFromString("4.50")
	resp, err := svc.Actualizar(ctx, p.ID, dto.ActualizarProductoRequest{PrecioVenta: &nuevo})
	require.NoError(t, err)
	assert.True(t, nuevo.Equal(resp.PrecioVenta))
	assert.Equal(t, "Lapiz", resp.Nombre)
	assert.Equal(t, 9, testutil.Stock(t, db, p.ID))

	_, err = svc.Actualizar(ctx, 404, dto.ActualizarProductoRequest{PrecioVenta: &nuevo})
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestEliminarProducto_ConVentasEsConflicto(t *testing.T) {
	env := newVentaEnv(t)
	ctx := context.Background()
	svc := NewProductoService(repository.NewProductoRepository(env.db),
		repository.NewProveedorRepository(env.db), NewPrecioCache(nil))
	vendido := testutil.Producto(t, env.db, "Vendido", 5, "3.00")
	libre := testutil.Producto(t, env.db, "Libre", 5, "3.00")

	_, err := env.svc.Crear(ctx, ventaReq("R-1", linea{vendido, 1}))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Eliminar(ctx, vendido.ID), apierror.ErrConflict)
	require.NoError(t, svc.Eliminar(ctx, libre.ID))
	_, err = svc.ObtenerPorID(ctx, libre.ID)
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestListarProductos_Filtros(t *testing.T) {
	svc, _, db := newProductoSvc(t)
	ctx := context.Background()
	testutil.Producto(t, db, "Cuaderno Norma", 30, "30.00")
	testutil.Producto(t, db, "cuaderno Scribe", 1, "28.00")
	testutil.Producto(t, db, "Borrador", 40, "5.00")

	porNombre, err := svc.Listar(ctx, dto.ProductoFilter{Nombre: "CUADERNO", Limit: 100})
	require.NoError(t, err)
	assert.Len(t, porNombre, 2)

	bajos, err := svc.Listar(ctx, dto.ProductoFilter{StockBajo: true, Limit: 100})
	require.NoError(t, err)
	require.Len(t, bajos, 1)
	assert.Equal(t, "cuaderno Scribe", bajos[0].Nombre)
}

func TestConsultarPrecio(t *testing.T) {
	svc, _, _ := newProductoSvc(t)
	ctx := context.Background()
	_, err := svc.Crear(ctx, dto.CrearProductoRequest{
		Nombre: "Tijera escolar", Categoria: "Utiles", CodigoBarras: strPtr("750000000001"),
		PrecioVenta: decimal.RequireFromString("22.00"), StockActual: 4,
	})
	require.NoError(t, err)

	resp, err := svc.ConsultarPrecio(ctx, " 750000000001 ")
	require.NoError(t, err)
	assert.Equal(t, "Tijera escolar", resp.Nombre)
	assert.Equal(t, 4, resp.StockDisponible)

	_, err = svc.ConsultarPrecio(ctx, "000")
	assert.ErrorIs(t, err, apierror.ErrNotFound)
	_, err = svc.ConsultarPrecio(ctx, "")
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestEliminarProveedor_DesvinculaProductos(t *testing.T) {
	svc, provSvc, _ := newProductoSvc(t)
	ctx := context.Background()
	prov, err := provSvc.Crear(ctx, dto.ProveedorRequest{Nombre: "Distribuidora Sur"})
	require.NoError(t, err)
	p, err := svc.Crear(ctx, dto.CrearProductoRequest{Nombre: "Folder", Categoria: "X", ProveedorID: &prov.ID})
	require.NoError(t, err)
	require.NotNil(t, p.ProveedorID)

	require.NoError(t, provSvc.Eliminar(ctx, prov.ID))
	got, err := svc.ObtenerPorID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProveedorID)
}
