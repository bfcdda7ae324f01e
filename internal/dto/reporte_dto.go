package dto

import "github.com/shopspring/decimal"

// ─── GET /reports ────────────────────────────────────────────────────────────

// ResumenReporte keeps the camelCase keys of the dashboard widgets.
type ResumenReporte struct {
	TotalSales         int64           `json:"totalSales"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	TotalProducts      int64           `json:"totalProducts"`
	TotalCustomers     int64           `json:"totalCustomers"`
	LowStockProducts   int64           `json:"lowStockProducts"`
	OutOfStockProducts int64           `json:"outOfStockProducts"`
}

type ReporteGeneral struct {
	Sales     []VentaResponse    `json:"sales"`
	Products  []ProductoResponse `json:"products"`
	Customers []ClienteResponse  `json:"customers"`
	Summary   ResumenReporte     `json:"summary"`
}

// ─── GET /reports/views ──────────────────────────────────────────────────────

type ReporteVistaResponse struct {
	Success   bool   `json:"success"`
	Tipo      string `json:"tipo"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

type TiposReporteResponse struct {
	TiposReportes []string `json:"tipos_reportes"`
}

// Row types below are scanned straight from the aggregate queries.
// Dates are strings so both drivers scan into them.

type StockCriticoRow struct {
	ID              uint            `json:"id"`
	Nombre          string          `json:"nombre"`
	Categoria       string          `json:"categoria"`
	StockActual     int             `json:"stock_actual"`
	StockMinimo     int             `json:"stock_minimo"`
	EstadoStock     string          `json:"estado_stock"`
	PrecioCompra    decimal.Decimal `json:"precio_compra"`
	PrecioVenta     decimal.Decimal `json:"precio_venta"`
	NombreProveedor *string         `json:"nombre_proveedor"`
}

type ProductoMasVendidoRow struct {
	ID              uint            `json:"id"`
	Nombre          string          `json:"nombre"`
	Categoria       string          `json:"categoria"`
	PrecioVenta     decimal.Decimal `json:"precio_venta"`
	StockActual     int             `json:"stock_actual"`
	TotalVendido    int64           `json:"total_vendido"`
	IngresosTotales decimal.Decimal `json:"ingresos_totales"`
}

type ClienteHistorialRow struct {
	ID           uint            `json:"id"`
	Nombre       string          `json:"nombre"`
	Email        *string         `json:"email"`
	Telefono     *string         `json:"telefono"`
	TotalCompras int64           `json:"total_compras"`
	TotalGastado decimal.Decimal `json:"total_gastado"`
	UltimaCompra *string         `json:"ultima_compra"`
}

type VentaDetalladaRow struct {
	ID            uint            `json:"id"`
	NumeroRecibo  string          `json:"numero_recibo"`
	Total         decimal.Decimal `json:"total"`
	Estado        string          `json:"estado"`
	MetodoPago    string          `json:"metodo_pago"`
	CreatedAt     string          `json:"created_at"`
	NombreCliente *string         `json:"nombre_cliente"`
	EmailCliente  *string         `json:"email_cliente"`
	TotalItems    int64           `json:"total_items"`
}

type ResumenDiarioRow struct {
	Fecha           string          `json:"fecha"`
	TotalVentas     int64           `json:"total_ventas"`
	IngresosTotales decimal.Decimal `json:"ingresos_totales"`
	ClientesUnicos  int64           `json:"clientes_unicos"`
}

type InventarioValoradoRow struct {
	ID                   uint            `json:"id"`
	Nombre               string          `json:"nombre"`
	Categoria            string          `json:"categoria"`
	StockActual          int             `json:"stock_actual"`
	StockMinimo          int             `json:"stock_minimo"`
	PrecioCompra         decimal.Decimal `json:"precio_compra"`
	PrecioVenta          decimal.Decimal `json:"precio_venta"`
	ValorInventarioCosto decimal.Decimal `json:"valor_inventario_costo"`
	ValorInventarioVenta decimal.Decimal `json:"valor_inventario_venta"`
}

type DashboardCompleto struct {
	StockCritico         int64                   `json:"stock_critico"`
	ProductosMasVendidos []ProductoMasVendidoRow `json:"productos_mas_vendidos"`
	ClientesTop          []ClienteHistorialRow   `json:"clientes_top"`
	ResumenHoy           ResumenDiarioRow        `json:"resumen_hoy"`
}
