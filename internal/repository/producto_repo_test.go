package repository

import (
	"context"
	"testing"

	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/model"
	"github.com/pablini31/papelria/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAdjustStockTx_Guard(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductoRepository(db)
	p := testutil.Producto(t, db, "Tijeras", 3, "25.00")

	n, err := repo.AdjustStockTx(db, p.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, testutil.Stock(t, db, p.ID))

	n, err = repo.AdjustStockTx(db, p.ID, -2)
	require.NoError(t, err)
	assert.Zero(t, n, "guard must refuse to go below zero")
	assert.Equal(t, 1, testutil.Stock(t, db, p.ID))

	n, err = repo.AdjustStockTx(db, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 6, testutil.Stock(t, db, p.ID))

	n, err = repo.AdjustStockTx(db, 999, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStockTx(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductoRepository(db)
	p := testutil.Producto(t, db, "Regla", 7, "9.00")

	stock, err := repo.StockTx(db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stock)

	_, err = repo.StockTx(db, 404)
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestProductoRepo_Translate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductoRepository(db)
	ctx := context.Background()
	code := "7501000000001"

	nuevo := func() *model.Producto {
		c := code
		return &model.Producto{Nombre: "Goma", Categoria: "Papeleria", CodigoBarras: &c,
			PrecioVenta: decimal.RequireFromString("5")}
	}
	require.NoError(t, repo.Create(ctx, nuevo()))
	err := repo.Create(ctx, nuevo())
	assert.ErrorIs(t, err, apierror.ErrConflict)

	_, err = repo.FindByID(ctx, 12345)
	assert.ErrorIs(t, err, apierror.ErrNotFound)
	assert.Contains(t, err.Error(), "12345")

	_, err = repo.FindByBarcode(ctx, "000")
	assert.ErrorIs(t, err, apierror.ErrNotFound)

	// The CHECK constraint backs up the conditional update.
	err = translate(db.Model(&model.Producto{}).Where("codigo_barras = ?", code).
		Update("stock_actual", gorm.Expr("stock_actual - 1")).Error, "producto")
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestTranslate_ClosedDatabase(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductoRepository(db)
	testutil.CloseDB(db)

	_, err := repo.FindByID(context.Background(), 1)
	assert.ErrorIs(t, err, apierror.ErrUnavailable)
	assert.Equal(t, 503, apierror.StatusFor(err))
}
