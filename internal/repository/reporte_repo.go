package repository

import (
	"context"
	"time"

	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReporteRepository runs the read-only aggregate queries behind /reports.
// The SQL is kept to the subset shared by PostgreSQL and SQLite.
type ReporteRepository interface {
	Resumen(ctx context.Context) (*dto.ResumenReporte, error)
	ProductosRecientes(ctx context.Context, limit int) ([]model.Producto, error)
	StockCritico(ctx context.Context) ([]dto.StockCriticoRow, error)
	ContarStockCritico(ctx context.Context) (int64, error)
	ProductosMasVendidos(ctx context.Context, limit int) ([]dto.ProductoMasVendidoRow, error)
	ClientesHistorial(ctx context.Context, limit int) ([]dto.ClienteHistorialRow, error)
	VentasDetalladas(ctx context.Context, limit int) ([]dto.VentaDetalladaRow, error)
	ResumenDiario(ctx context.Context, desde time.Time) ([]dto.ResumenDiarioRow, error)
	InventarioValorado(ctx context.Context) ([]dto.InventarioValoradoRow, error)
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) Resumen(ctx context.Context) (*dto.ResumenReporte, error) {
	db := r.db.WithContext(ctx)
	var out dto.ResumenReporte

	ventas := struct {
		Cantidad int64
		Ingresos decimal.Decimal
	}{}
	err := db.Model(&model.Venta{}).
		Select("COUNT(*) AS cantidad, COALESCE(SUM(total), 0) AS ingresos").
		Where("estado = ?", model.EstadoCompletada).
		Scan(&ventas).Error
	if err != nil {
		return nil, translate(err, "resumen de ventas")
	}
	out.TotalSales = ventas.Cantidad
	out.TotalRevenue = ventas.Ingresos

	if err := db.Model(&model.Producto{}).Count(&out.TotalProducts).Error; err != nil {
		return nil, translate(err, "resumen de productos")
	}
	if err := db.Model(&model.Cliente{}).Count(&out.TotalCustomers).Error; err != nil {
		return nil, translate(err, "resumen de clientes")
	}
	err = db.Model(&model.Producto{}).
		Where("stock_actual > 0 AND stock_actual <= stock_minimo").
		Count(&out.LowStockProducts).Error
	if err != nil {
		return nil, translate(err, "resumen de stock")
	}
	err = db.Model(&model.Producto{}).
		Where("stock_actual = 0").
		Count(&out.OutOfStockProducts).Error
	if err != nil {
		return nil, translate(err, "resumen de stock")
	}
	return &out, nil
}

func (r *reporteRepo) ProductosRecientes(ctx context.Context, limit int) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Preload("Proveedor").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&productos).Error
	return productos, translate(err, "productos")
}

func (r *reporteRepo) StockCritico(ctx context.Context) ([]dto.StockCriticoRow, error) {
	var rows []dto.StockCriticoRow
	err := r.db.WithContext(ctx).Raw(`
SELECT p.id, p.nombre, p.categoria, p.stock_actual, p.stock_minimo,
       CASE WHEN p.stock_actual = 0 THEN 'AGOTADO' ELSE 'CRITICO' END AS estado_stock,
       p.precio_compra, p.precio_venta, pr.nombre AS nombre_proveedor
FROM productos p
LEFT JOIN proveedores pr ON pr.id = p.proveedor_id
WHERE p.stock_actual <= p.stock_minimo
ORDER BY p.stock_actual ASC, p.nombre ASC`).Scan(&rows).Error
	return rows, translate(err, "stock critico")
}

func (r *reporteRepo) ContarStockCritico(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("stock_actual <= stock_minimo").
		Count(&n).Error
	return n, translate(err, "stock critico")
}

func (r *reporteRepo) ProductosMasVendidos(ctx context.Context, limit int) ([]dto.ProductoMasVendidoRow, error) {
	var rows []dto.ProductoMasVendidoRow
	err := r.db.WithContext(ctx).Raw(`
SELECT p.id, p.nombre, p.categoria, p.precio_venta, p.stock_actual,
       COALESCE(SUM(iv.cantidad), 0) AS total_vendido,
       COALESCE(SUM(iv.precio_total), 0) AS ingresos_totales
FROM productos p
JOIN items_venta iv ON iv.producto_id = p.id
JOIN ventas v ON v.id = iv.venta_id AND v.estado = ?
GROUP BY p.id, p.nombre, p.categoria, p.precio_venta, p.stock_actual
ORDER BY total_vendido DESC, p.nombre ASC
LIMIT ?`, model.EstadoCompletada, limit).Scan(&rows).Error
	return rows, translate(err, "productos mas vendidos")
}

func (r *reporteRepo) ClientesHistorial(ctx context.Context, limit int) ([]dto.ClienteHistorialRow, error) {
	var rows []dto.ClienteHistorialRow
	err := r.db.WithContext(ctx).Raw(`
SELECT c.id, c.nombre, c.email, c.telefono,
       COUNT(v.id) AS total_compras,
       COALESCE(SUM(v.total), 0) AS total_gastado,
       MAX(v.created_at) AS ultima_compra
FROM clientes c
LEFT JOIN ventas v ON v.cliente_id = c.id AND v.estado = ?
GROUP BY c.id, c.nombre, c.email, c.telefono
ORDER BY total_gastado DESC, c.nombre ASC
LIMIT ?`, model.EstadoCompletada, limit).Scan(&rows).Error
	return rows, translate(err, "historial de clientes")
}

func (r *reporteRepo) VentasDetalladas(ctx context.Context, limit int) ([]dto.VentaDetalladaRow, error) {
	var rows []dto.VentaDetalladaRow
	err := r.db.WithContext(ctx).Raw(`
SELECT v.id, v.numero_recibo, v.total, v.estado, v.metodo_pago, v.created_at,
       COALESCE(c.nombre, v.nombre_cliente) AS nombre_cliente,
       c.email AS email_cliente,
       (SELECT COALESCE(SUM(iv.cantidad), 0) FROM items_venta iv WHERE iv.venta_id = v.id) AS total_items
FROM ventas v
LEFT JOIN clientes c ON c.id = v.cliente_id
ORDER BY v.created_at DESC, v.id DESC
LIMIT ?`, limit).Scan(&rows).Error
	return rows, translate(err, "ventas detalladas")
}

func (r *reporteRepo) ResumenDiario(ctx context.Context, desde time.Time) ([]dto.ResumenDiarioRow, error) {
	var rows []dto.ResumenDiarioRow
	err := r.db.WithContext(ctx).Raw(`
SELECT DATE(created_at) AS fecha,
       COUNT(*) AS total_ventas,
       COALESCE(SUM(total), 0) AS ingresos_totales,
       COUNT(DISTINCT cliente_id) AS clientes_unicos
FROM ventas
WHERE estado = ? AND created_at >= ?
GROUP BY DATE(created_at)
ORDER BY fecha DESC`, model.EstadoCompletada, desde).Scan(&rows).Error
	return rows, translate(err, "resumen diario")
}

func (r *reporteRepo) InventarioValorado(ctx context.Context) ([]dto.InventarioValoradoRow, error) {
	var rows []dto.InventarioValoradoRow
	err := r.db.WithContext(ctx).Raw(`
SELECT id, nombre, categoria, stock_actual, stock_minimo, precio_compra, precio_venta,
       stock_actual * precio_compra AS valor_inventario_costo,
       stock_actual * precio_venta AS valor_inventario_venta
FROM productos
ORDER BY valor_inventario_venta DESC, nombre ASC`).Scan(&rows).Error
	return rows, translate(err, "inventario valorado")
}
