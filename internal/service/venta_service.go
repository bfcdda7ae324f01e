package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/infra"
	"github.com/pablini31/papelria/internal/model"
	"github.com/pablini31/papelria/internal/repository"
	"github.com/pablini31/papelria/internal/worker"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	Crear(ctx context.Context, req dto.VentaRequest) (*dto.VentaResponse, error)
	Actualizar(ctx context.Context, id uint, req dto.VentaRequest) (*dto.VentaResponse, error)
	Eliminar(ctx context.Context, id uint) error
	Listar(ctx context.Context, filter dto.VentaFilter) ([]dto.VentaResponse, error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.VentaResponse, error)
	Items(ctx context.Context, id uint) ([]dto.ItemVentaResponse, error)
	Recibo(ctx context.Context, id uint) (*ReciboPDF, error)
	EnviarRecibo(ctx context.Context, id uint, email *string) error
}

// ReciboPDF is a rendered receipt ready to be served.
type ReciboPDF struct {
	Filename  string
	Contenido []byte
}

// VentaOptions carries the receipt settings from config.
type VentaOptions struct {
	Tienda                string
	ReciboEmailAutomatico bool
}

type ventaService struct {
	repo       repository.VentaRepository
	productos  repository.ProductoRepository
	clientes   repository.ClienteRepository
	inventario InventarioService
	precios    *PrecioCache
	resumen    *ResumenCache
	dispatcher *worker.Dispatcher
	opts       VentaOptions
}

func NewVentaService(
	repo repository.VentaRepository,
	productos repository.ProductoRepository,
	clientes repository.ClienteRepository,
	inventario InventarioService,
	precios *PrecioCache,
	resumen *ResumenCache,
	dispatcher *worker.Dispatcher,
	opts VentaOptions,
) VentaService {
	return &ventaService{
		repo:       repo,
		productos:  productos,
		clientes:   clientes,
		inventario: inventario,
		precios:    precios,
		resumen:    resumen,
		dispatcher: dispatcher,
		opts:       opts,
	}
}

// lineaVenta is a validated request line with its price snapshot resolved.
type lineaVenta struct {
	productoID     uint
	cantidad       int
	precioUnitario decimal.Decimal
	precioTotal    decimal.Decimal
}

// ── Crear ─────────────────────────────────────────────────────────────────────
//   1. Validate header fields and lines (no DB)
//   2. Resolve products, price snapshots and the total; check stock
//   3. BEGIN TX: insert header, then per line insert item + descontar stock
//   4. COMMIT
//   5. (best-effort) invalidate price and summary caches, queue receipt email

func (s *ventaService) Crear(ctx context.Context, req dto.VentaRequest) (*dto.VentaResponse, error) {
	req.Normalize()
	if err := validarVenta(&req, true); err != nil {
		return nil, err
	}

	productos, err := s.cargarProductos(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	lineas, total := construirLineas(req.Items, productos)
	if err := verificarStock(lineas, productos); err != nil {
		return nil, err
	}
	cliente, err := s.resolverCliente(ctx, req.ClienteID)
	if err != nil {
		return nil, err
	}
	avisarTotalDistinto(req.Total, total, req.NumeroRecibo)

	venta := model.Venta{
		NumeroRecibo:  strings.TrimSpace(req.NumeroRecibo),
		ClienteID:     req.ClienteID,
		NombreCliente: req.NombreCliente,
		Total:         total,
		Estado:        lo.Ternary(req.Estado == "", model.EstadoCompletada, req.Estado),
		MetodoPago:    req.MetodoPago,
		Notas:         req.Notas,
	}

	ran, err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return err
		}
		items, err := s.escribirLineasTx(tx, &venta, lineas)
		if err != nil {
			return err
		}
		venta.Items = items
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("numero_recibo", venta.NumeroRecibo).Msg("venta: creacion revertida")
		return nil, saleTxError(ran, err)
	}

	s.invalidarCaches(ctx, productos)
	venta.Cliente = cliente
	if s.opts.ReciboEmailAutomatico && cliente != nil && cliente.Email != nil && *cliente.Email != "" {
		s.encolarRecibo(ctx, venta.ID, *cliente.Email)
	}

	adjuntarProductos(venta.Items, productos)
	resp := ventaToResponse(&venta)
	return &resp, nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// Restore the units held by the current lines, drop them, then write the new
// lines exactly as Crear does. Stock is re-checked after the restore, inside
// the same transaction, so a sale can always be re-saved with its own lines.

func (s *ventaService) Actualizar(ctx context.Context, id uint, req dto.VentaRequest) (*dto.VentaResponse, error) {
	req.Normalize()
	if err := validarVenta(&req, false); err != nil {
		return nil, err
	}

	actual, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	productos, err := s.cargarProductos(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	lineas, total := construirLineas(req.Items, productos)
	cliente, err := s.resolverCliente(ctx, req.ClienteID)
	if err != nil {
		return nil, err
	}
	avisarTotalDistinto(req.Total, total, actual.NumeroRecibo)

	venta := model.Venta{
		ID:            actual.ID,
		NumeroRecibo:  actual.NumeroRecibo,
		ClienteID:     req.ClienteID,
		NombreCliente: req.NombreCliente,
		Total:         total,
		Estado:        lo.Ternary(req.Estado == "", actual.Estado, req.Estado),
		MetodoPago:    lo.Ternary(req.MetodoPago == "", actual.MetodoPago, req.MetodoPago),
		Notas:         lo.Ternary(req.Notas == nil, actual.Notas, req.Notas),
		CreatedAt:     actual.CreatedAt,
	}

	ran, err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.repo.FindByIDTx(tx, id); err != nil {
			return err
		}
		motivo := fmt.Sprintf("Edicion venta %s", venta.NumeroRecibo)
		if _, err := s.inventario.RestaurarStockTx(tx, id, motivo); err != nil {
			return err
		}
		if err := s.repo.DeleteItemsTx(tx, id); err != nil {
			return err
		}

		frescos, err := s.productos.FindByIDsTx(tx, lo.Keys(productos))
		if err != nil {
			return err
		}
		if err := verificarStock(lineas, lo.KeyBy(frescos, func(p model.Producto) uint { return p.ID })); err != nil {
			return err
		}

		items, err := s.escribirLineasTx(tx, &venta, lineas)
		if err != nil {
			return err
		}
		venta.Items = items
		return s.repo.UpdateHeaderTx(tx, &venta)
	})
	if err != nil {
		log.Error().Err(err).Uint("venta_id", id).Msg("venta: actualizacion revertida")
		return nil, saleTxError(ran, err)
	}

	s.invalidarCaches(ctx, productos, productosDeItems(actual.Items))

	venta.Cliente = cliente
	venta.UpdatedAt = time.Now()
	adjuntarProductos(venta.Items, productos)
	resp := ventaToResponse(&venta)
	return &resp, nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

func (s *ventaService) Eliminar(ctx context.Context, id uint) error {
	actual, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	ran, err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		motivo := fmt.Sprintf("Eliminacion venta %s", actual.NumeroRecibo)
		if _, err := s.inventario.RestaurarStockTx(tx, id, motivo); err != nil {
			return err
		}
		if err := s.repo.DeleteItemsTx(tx, id); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, id)
	})
	if err != nil {
		log.Error().Err(err).Uint("venta_id", id).Msg("venta: eliminacion revertida")
		return saleTxError(ran, err)
	}

	s.invalidarCaches(ctx, productosDeItems(actual.Items))
	return nil
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

func (s *ventaService) Listar(ctx context.Context, filter dto.VentaFilter) ([]dto.VentaResponse, error) {
	f := repository.VentaListFilter{ClienteID: filter.ClienteID, Limit: filter.Limit}
	if filter.Estado != "" {
		f.Estado = model.NormalizarEstado(filter.Estado)
		if !model.EstadoValido(f.Estado) {
			return nil, fmt.Errorf("%w: estado %q desconocido", apierror.ErrValidation, filter.Estado)
		}
	}
	if filter.Desde != "" {
		d, err := time.ParseInLocation(time.DateOnly, filter.Desde, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: desde debe tener formato AAAA-MM-DD", apierror.ErrValidation)
		}
		f.Desde = &d
	}
	if filter.Hasta != "" {
		h, err := time.ParseInLocation(time.DateOnly, filter.Hasta, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: hasta debe tener formato AAAA-MM-DD", apierror.ErrValidation)
		}
		h = h.AddDate(0, 0, 1)
		f.Hasta = &h
	}

	ventas, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return lo.Map(ventas, func(v model.Venta, _ int) dto.VentaResponse {
		return ventaToResponse(&v)
	}), nil
}

func (s *ventaService) ObtenerPorID(ctx context.Context, id uint) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ventaToResponse(v)
	return &resp, nil
}

func (s *ventaService) Items(ctx context.Context, id uint) ([]dto.ItemVentaResponse, error) {
	items, err := s.repo.Items(ctx, id)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, itemToResponse), nil
}

func (s *ventaService) Recibo(ctx context.Context, id uint) (*ReciboPDF, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := infra.GenerateReciboPDF(&buf, v, s.opts.Tienda); err != nil {
		return nil, err
	}
	return &ReciboPDF{
		Filename:  fmt.Sprintf("recibo-%s.pdf", v.NumeroRecibo),
		Contenido: buf.Bytes(),
	}, nil
}

// EnviarRecibo queues the receipt email. email overrides the customer's own.
func (s *ventaService) EnviarRecibo(ctx context.Context, id uint, email *string) error {
	if !s.dispatcher.Enabled() {
		return fmt.Errorf("%w: cola de trabajos deshabilitada (REDIS_URL vacio)", apierror.ErrUnavailable)
	}
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	destino := ""
	switch {
	case email != nil && *email != "":
		destino = *email
	case v.Cliente != nil && v.Cliente.Email != nil:
		destino = *v.Cliente.Email
	}
	if destino == "" {
		return fmt.Errorf("%w: la venta no tiene un email de cliente", apierror.ErrValidation)
	}

	if err := s.dispatcher.EnqueueReciboEmail(ctx, worker.ReciboEmailPayload{VentaID: id, Email: destino}); err != nil {
		return fmt.Errorf("%w: %w", apierror.ErrUnavailable, err)
	}
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// validarVenta checks everything that needs no database. onCreate adds the
// fields only a new sale must carry.
func validarVenta(req *dto.VentaRequest, onCreate bool) error {
	if onCreate {
		switch {
		case strings.TrimSpace(req.NumeroRecibo) == "":
			return fmt.Errorf("%w: numero_recibo es obligatorio", apierror.ErrValidation)
		case req.MetodoPago == "":
			return fmt.Errorf("%w: metodo_pago es obligatorio", apierror.ErrValidation)
		case req.Total == nil:
			return fmt.Errorf("%w: total es obligatorio", apierror.ErrValidation)
		}
	}
	if req.MetodoPago != "" && !model.MetodoPagoValido(req.MetodoPago) {
		return fmt.Errorf("%w: metodo_pago %q desconocido", apierror.ErrValidation, req.MetodoPago)
	}
	if req.Estado != "" && !model.EstadoValido(req.Estado) {
		return fmt.Errorf("%w: estado %q desconocido", apierror.ErrValidation, req.Estado)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: la venta debe tener al menos un item", apierror.ErrValidation)
	}
	for i, it := range req.Items {
		switch {
		case it.ProductoID == 0:
			return fmt.Errorf("%w: items[%d].producto_id es obligatorio", apierror.ErrValidation, i)
		case it.Cantidad < 1:
			return fmt.Errorf("%w: items[%d].cantidad debe ser mayor a 0", apierror.ErrValidation, i)
		case it.PrecioUnitario.IsNegative():
			return fmt.Errorf("%w: items[%d].precio_unitario no puede ser negativo", apierror.ErrValidation, i)
		}
	}
	return nil
}

// cargarProductos loads every product named by the lines; a missing one is
// ErrNotFound.
func (s *ventaService) cargarProductos(ctx context.Context, items []dto.ItemVentaRequest) (map[uint]model.Producto, error) {
	ids := lo.Uniq(lo.Map(items, func(it dto.ItemVentaRequest, _ int) uint { return it.ProductoID }))
	found, err := s.productos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	productos := lo.KeyBy(found, func(p model.Producto) uint { return p.ID })
	for _, id := range ids {
		if _, ok := productos[id]; !ok {
			return nil, fmt.Errorf("%w: producto %d", apierror.ErrNotFound, id)
		}
	}
	return productos, nil
}

// construirLineas snapshots prices: the line's own unit price when given,
// else the product's current precio_venta. The total is always the sum of
// the line totals.
func construirLineas(items []dto.ItemVentaRequest, productos map[uint]model.Producto) ([]lineaVenta, decimal.Decimal) {
	lineas := lo.Map(items, func(it dto.ItemVentaRequest, _ int) lineaVenta {
		precio := it.PrecioUnitario
		if !precio.IsPositive() {
			precio = productos[it.ProductoID].PrecioVenta
		}
		precio = precio.Round(2)
		return lineaVenta{
			productoID:     it.ProductoID,
			cantidad:       it.Cantidad,
			precioUnitario: precio,
			precioTotal:    precio.Mul(decimal.NewFromInt(int64(it.Cantidad))),
		}
	})
	total := lo.Reduce(lineas, func(acc decimal.Decimal, l lineaVenta, _ int) decimal.Decimal {
		return acc.Add(l.precioTotal)
	}, decimal.Zero)
	return lineas, total
}

// verificarStock merges quantities per product, so two lines of the same
// product are checked against its stock together.
func verificarStock(lineas []lineaVenta, productos map[uint]model.Producto) error {
	pedidos := lo.Reduce(lineas, func(acc map[uint]int, l lineaVenta, _ int) map[uint]int {
		acc[l.productoID] += l.cantidad
		return acc
	}, map[uint]int{})

	ids := lo.Keys(pedidos)
	slices.Sort(ids)
	for _, id := range ids {
		p, ok := productos[id]
		if !ok {
			return fmt.Errorf("%w: producto %d", apierror.ErrNotFound, id)
		}
		if pedidos[id] > p.StockActual {
			return fmt.Errorf("%w: %s tiene %d unidades, se requieren %d",
				apierror.ErrInsufficientStock, p.Nombre, p.StockActual, pedidos[id])
		}
	}
	return nil
}

func (s *ventaService) resolverCliente(ctx context.Context, id *uint) (*model.Cliente, error) {
	if id == nil {
		return nil, nil
	}
	c, err := s.clientes.FindByID(ctx, *id)
	if errors.Is(err, apierror.ErrNotFound) {
		return nil, fmt.Errorf("%w: cliente_id %d no existe", apierror.ErrValidation, *id)
	}
	return c, err
}

// escribirLineasTx inserts each line and consumes its stock right after, so
// the stock guard sees the units already taken by earlier lines.
func (s *ventaService) escribirLineasTx(tx *gorm.DB, venta *model.Venta, lineas []lineaVenta) ([]model.ItemVenta, error) {
	items := make([]model.ItemVenta, 0, len(lineas))
	ventaID := venta.ID
	for _, l := range lineas {
		item := model.ItemVenta{
			VentaID:        ventaID,
			ProductoID:     l.productoID,
			Cantidad:       l.cantidad,
			PrecioUnitario: l.precioUnitario,
			PrecioTotal:    l.precioTotal,
		}
		if err := s.repo.CreateItemTx(tx, &item); err != nil {
			return nil, err
		}
		err := s.inventario.AjustarStockTx(tx, l.productoID, -l.cantidad, Movimiento{
			Tipo:    model.MovimientoVenta,
			Motivo:  fmt.Sprintf("Venta %s", venta.NumeroRecibo),
			VentaID: &ventaID,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func avisarTotalDistinto(enviado *decimal.Decimal, calculado decimal.Decimal, recibo string) {
	if enviado != nil && !enviado.Equal(calculado) {
		log.Warn().
			Str("numero_recibo", recibo).
			Str("total_enviado", enviado.String()).
			Str("total_calculado", calculado.String()).
			Msg("venta: total del cliente ignorado, se usa la suma de los items")
	}
}

func (s *ventaService) invalidarCaches(ctx context.Context, grupos ...map[uint]model.Producto) {
	for _, productos := range grupos {
		for _, p := range productos {
			s.precios.Invalidate(ctx, p.CodigoBarras)
		}
	}
	s.resumen.Invalidate(ctx)
}

func (s *ventaService) encolarRecibo(ctx context.Context, ventaID uint, email string) {
	if !s.dispatcher.Enabled() {
		return
	}
	payload := worker.ReciboEmailPayload{VentaID: ventaID, Email: email}
	if err := s.dispatcher.EnqueueReciboEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Uint("venta_id", ventaID).Msg("venta: no se pudo encolar el recibo")
	}
}

func productosDeItems(items []model.ItemVenta) map[uint]model.Producto {
	out := make(map[uint]model.Producto, len(items))
	for _, it := range items {
		if it.Producto != nil {
			out[it.ProductoID] = *it.Producto
		}
	}
	return out
}

func adjuntarProductos(items []model.ItemVenta, productos map[uint]model.Producto) {
	for i := range items {
		if p, ok := productos[items[i].ProductoID]; ok {
			items[i].Producto = &p
		}
	}
}

func ventaToResponse(v *model.Venta) dto.VentaResponse {
	nombre := v.NombreCliente
	if (nombre == nil || *nombre == "") && v.Cliente != nil {
		nombre = &v.Cliente.Nombre
	}
	return dto.VentaResponse{
		ID:            v.ID,
		NumeroRecibo:  v.NumeroRecibo,
		ClienteID:     v.ClienteID,
		NombreCliente: nombre,
		Total:         v.Total,
		Estado:        v.Estado,
		MetodoPago:    v.MetodoPago,
		Notas:         v.Notas,
		Items:         lo.Map(v.Items, itemToResponse),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func itemToResponse(it model.ItemVenta, _ int) dto.ItemVentaResponse {
	resp := dto.ItemVentaResponse{
		ID:             it.ID,
		VentaID:        it.VentaID,
		ProductoID:     it.ProductoID,
		Cantidad:       it.Cantidad,
		PrecioUnitario: it.PrecioUnitario,
		PrecioTotal:    it.PrecioTotal,
		CreatedAt:      it.CreatedAt,
	}
	if it.Producto != nil {
		resp.NombreProducto = it.Producto.Nombre
		resp.CodigoBarras = it.Producto.CodigoBarras
	}
	return resp
}
