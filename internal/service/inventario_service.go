package service

import (
	"context"
	"fmt"

	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/model"
	"github.com/pablini31/papelria/internal/repository"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Movimiento describes why a stock adjustment happens; it becomes the
// movimientos_stock row written next to the adjustment.
type Movimiento struct {
	Tipo    string
	Motivo  string
	VentaID *uint
}

// InventarioService is the stock ledger: the only code path that changes
// productos.stock_actual after a product is created.
type InventarioService interface {
	ObtenerStock(ctx context.Context, productoID uint) (int, error)

	// AjustarStockTx applies stock_actual += delta on the caller's transaction
	// and never commits. A negative delta that would leave stock below zero
	// fails with ErrInsufficientStock; nothing is clamped.
	AjustarStockTx(tx *gorm.DB, productoID uint, delta int, mov Movimiento) error

	// RestaurarStockTx gives back the units held by every line of a sale and
	// returns those lines.
	RestaurarStockTx(tx *gorm.DB, ventaID uint, motivo string) ([]model.ItemVenta, error)

	Reponer(ctx context.Context, productoID uint, cantidad int) (*dto.ReponerStockResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) ([]dto.MovimientoStockResponse, error)
	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
}

type inventarioService struct {
	productos   repository.ProductoRepository
	ventas      repository.VentaRepository
	movimientos repository.MovimientoStockRepository
	precios     *PrecioCache
	resumen     *ResumenCache
}

func NewInventarioService(
	productos repository.ProductoRepository,
	ventas repository.VentaRepository,
	movimientos repository.MovimientoStockRepository,
	precios *PrecioCache,
	resumen *ResumenCache,
) InventarioService {
	return &inventarioService{
		productos:   productos,
		ventas:      ventas,
		movimientos: movimientos,
		precios:     precios,
		resumen:     resumen,
	}
}

func (s *inventarioService) ObtenerStock(ctx context.Context, productoID uint) (int, error) {
	return s.productos.StockTx(s.productos.DB().WithContext(ctx), productoID)
}

func (s *inventarioService) AjustarStockTx(tx *gorm.DB, productoID uint, delta int, mov Movimiento) error {
	if delta == 0 {
		return nil
	}
	n, err := s.productos.AdjustStockTx(tx, productoID, delta)
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the row is missing or the guard stock_actual >= -delta failed.
		stock, err := s.productos.StockTx(tx, productoID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: producto %d tiene %d unidades, se requieren %d",
			apierror.ErrInsufficientStock, productoID, stock, -delta)
	}

	nuevo, err := s.productos.StockTx(tx, productoID)
	if err != nil {
		return err
	}
	return s.movimientos.CreateTx(tx, &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          mov.Tipo,
		Cantidad:      delta,
		StockAnterior: nuevo - delta,
		StockNuevo:    nuevo,
		Motivo:        mov.Motivo,
		VentaID:       mov.VentaID,
	})
}

func (s *inventarioService) RestaurarStockTx(tx *gorm.DB, ventaID uint, motivo string) ([]model.ItemVenta, error) {
	items, err := s.ventas.ItemsTx(tx, ventaID)
	if err != nil {
		return nil, err
	}
	ref := ventaID
	for _, item := range items {
		err := s.AjustarStockTx(tx, item.ProductoID, item.Cantidad, Movimiento{
			Tipo:    model.MovimientoRestauracion,
			Motivo:  motivo,
			VentaID: &ref,
		})
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

// Reponer adds restocked units in its own short transaction.
func (s *inventarioService) Reponer(ctx context.Context, productoID uint, cantidad int) (*dto.ReponerStockResponse, error) {
	if cantidad <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor a 0", apierror.ErrValidation)
	}

	var producto *model.Producto
	_, err := runTx(ctx, s.productos.DB(), func(tx *gorm.DB) error {
		if err := s.AjustarStockTx(tx, productoID, cantidad, Movimiento{
			Tipo:   model.MovimientoReposicion,
			Motivo: fmt.Sprintf("Reposicion de %d unidades", cantidad),
		}); err != nil {
			return err
		}
		var err error
		producto, err = s.productos.FindByIDTx(tx, productoID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.precios.Invalidate(ctx, producto.CodigoBarras)
	s.resumen.Invalidate(ctx)
	return &dto.ReponerStockResponse{
		Success:          true,
		Message:          fmt.Sprintf("Stock de %s actualizado", producto.Nombre),
		StockAnterior:    producto.StockActual - cantidad,
		StockNuevo:       producto.StockActual,
		CantidadAgregada: cantidad,
	}, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) ([]dto.MovimientoStockResponse, error) {
	var pid *uint
	if filter.ProductoID != 0 {
		pid = &filter.ProductoID
	}
	movs, err := s.movimientos.List(ctx, repository.MovimientoStockFilter{
		ProductoID: pid,
		Tipo:       filter.Tipo,
		Limit:      filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(movs, func(m model.MovimientoStock, _ int) dto.MovimientoStockResponse {
		return dto.MovimientoStockResponse{
			ID:            m.ID,
			ProductoID:    m.ProductoID,
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			VentaID:       m.VentaID,
			CreatedAt:     m.CreatedAt,
		}
	}), nil
}

func (s *inventarioService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productos.ListBajoMinimo(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(productos, func(p model.Producto, _ int) dto.AlertaStockResponse {
		estado := "STOCK BAJO"
		if p.StockActual == 0 {
			estado = "AGOTADO"
		}
		return dto.AlertaStockResponse{
			ProductoID:  p.ID,
			Nombre:      p.Nombre,
			Categoria:   p.Categoria,
			StockActual: p.StockActual,
			StockMinimo: p.StockMinimo,
			Estado:      estado,
		}
	}), nil
}
