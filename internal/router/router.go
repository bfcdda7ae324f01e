package router

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/pablini31/papelria/internal/config"
	"github.com/pablini31/papelria/internal/handler"
	"github.com/pablini31/papelria/internal/infra"
	"github.com/pablini31/papelria/internal/middleware"
	"github.com/pablini31/papelria/internal/repository"
	"github.com/pablini31/papelria/internal/service"
	"github.com/pablini31/papelria/internal/worker"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb and cb may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, cb *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.NewRateLimiter(cfg.RateLimitRPM, time.Minute).Middleware())
	// PDF and XLSX bodies are already compressed.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{
		`^/sales/[0-9]+/receipt$`,
		`^/reports/export`,
		`^/swagger/`,
	})))

	// ── Repositories ─────────────────────────────────────────────────────────
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	usuarioRepo := repository.NewUsuarioRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	reporteRepo := repository.NewReporteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	precios := service.NewPrecioCache(rdb)
	resumen := service.NewResumenCache(rdb)
	dispatcher := worker.NewDispatcher(rdb)

	inventarioSvc := service.NewInventarioService(productoRepo, ventaRepo, movimientoStockRepo, precios, resumen)
	productoSvc := service.NewProductoService(productoRepo, proveedorRepo, precios)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, clienteRepo, inventarioSvc, precios, resumen, dispatcher,
		service.VentaOptions{
			Tienda:                cfg.TiendaNombre,
			ReciboEmailAutomatico: cfg.ReciboEmailAutomatico,
		})
	clienteSvc := service.NewClienteService(clienteRepo)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	usuarioSvc := service.NewUsuarioService(usuarioRepo)
	reporteSvc := service.NewReporteService(reporteRepo, ventaRepo, clienteRepo, resumen)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ventasH := handler.NewVentasHandler(ventaSvc)
	productosH := handler.NewProductosHandler(productoSvc, inventarioSvc)
	consultaH := handler.NewConsultaPreciosHandler(productoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	usuariosH := handler.NewUsuariosHandler(usuarioSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb, cb))

	sales := r.Group("/sales")
	{
		sales.GET("", ventasH.Listar)
		sales.POST("", ventasH.Crear)
		sales.GET("/:id", ventasH.ObtenerPorID)
		sales.PUT("/:id", ventasH.Actualizar)
		sales.DELETE("/:id", ventasH.Eliminar)
		sales.GET("/:id/items", ventasH.Items)
		sales.GET("/:id/receipt", ventasH.Recibo)
		sales.POST("/:id/receipt/email", ventasH.EnviarRecibo)
	}

	products := r.Group("/products")
	{
		products.GET("", productosH.Listar)
		products.POST("", productosH.Crear)
		products.GET("/:id", productosH.ObtenerPorID)
		products.PUT("/:id", productosH.Actualizar)
		products.DELETE("/:id", productosH.Eliminar)
		products.PATCH("/:id/stock", productosH.ReponerStock)
		products.GET("/:id/movimientos", productosH.Movimientos)
	}

	r.GET("/precio/:barcode", consultaH.GetPrecioPorBarcode)
	r.GET("/inventario/alertas", inventarioH.ObtenerAlertas)

	customers := r.Group("/customers")
	{
		customers.GET("", clientesH.Listar)
		customers.POST("", clientesH.Crear)
		customers.GET("/:id", clientesH.ObtenerPorID)
		customers.PUT("/:id", clientesH.Actualizar)
		customers.DELETE("/:id", clientesH.Eliminar)
	}

	prov := r.Group("/proveedores")
	{
		prov.GET("", proveedoresH.Listar)
		prov.POST("", proveedoresH.Crear)
		prov.GET("/:id", proveedoresH.ObtenerPorID)
		prov.PUT("/:id", proveedoresH.Actualizar)
		prov.DELETE("/:id", proveedoresH.Eliminar)
	}

	users := r.Group("/users")
	{
		users.GET("", usuariosH.Listar)
		users.POST("", usuariosH.Crear)
		users.GET("/:id", usuariosH.ObtenerPorID)
		users.PUT("/:id", usuariosH.Actualizar)
		users.DELETE("/:id", usuariosH.Eliminar)
	}

	reports := r.Group("/reports")
	{
		reports.GET("", reportesH.General)
		reports.GET("/views", reportesH.Vistas)
		reports.GET("/export", reportesH.Exportar)
	}

	// Swagger UI: only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
