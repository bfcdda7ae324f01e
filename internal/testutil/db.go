// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pablini31/papelria/internal/config"
	"github.com/pablini31/papelria/internal/infra"
	"github.com/pablini31/papelria/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// One connection only: SQLite serializes writers anyway and a single
// connection keeps the shared-cache database alive until Cleanup.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		DBDriver:       infra.DriverSQLite,
		DatabaseURL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		DBMaxOpenConns: 1,
		DBMaxIdleConns: 1,
	}
	db, err := infra.NewDatabase(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	t.Cleanup(func() { CloseDB(db) })
	return db
}

// CloseDB closes the pool; later statements fail with "database is closed".
func CloseDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Producto inserts a product with the given stock and sale price.
func Producto(t testing.TB, db *gorm.DB, nombre string, stock int, precio string) model.Producto {
	t.Helper()
	p := model.Producto{
		Nombre:       nombre,
		Categoria:    "Papeleria",
		PrecioCompra: decimal.RequireFromString(precio).Div(decimal.NewFromInt(2)).Round(2),
		PrecioVenta:  decimal.RequireFromString(precio),
		StockActual:  stock,
		StockMinimo:  2,
	}
	require.NoError(t, db.Omit("Proveedor").Create(&p).Error)
	return p
}

// Cliente inserts a customer; email may be empty.
func Cliente(t testing.TB, db *gorm.DB, nombre, email string) model.Cliente {
	t.Helper()
	c := model.Cliente{Nombre: nombre}
	if email != "" {
		c.Email = &email
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// Stock reads stock_actual straight from the table.
func Stock(t testing.TB, db *gorm.DB, productoID uint) int {
	t.Helper()
	var stock int
	require.NoError(t, db.Model(&model.Producto{}).Where("id = ?", productoID).
		Select("stock_actual").Scan(&stock).Error)
	return stock
}
