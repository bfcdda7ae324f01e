package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pablini31/papelria/internal/apierror"
	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/model"
	"github.com/pablini31/papelria/internal/repository"
	"github.com/samber/lo"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id uint, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Eliminar(ctx context.Context, id uint) error
	ConsultarPrecio(ctx context.Context, barcode string) (*dto.ConsultaPreciosResponse, error)
}

type productoService struct {
	repo        repository.ProductoRepository
	proveedores repository.ProveedorRepository
	precios     *PrecioCache
}

func NewProductoService(repo repository.ProductoRepository, proveedores repository.ProveedorRepository, precios *PrecioCache) ProductoService {
	return &productoService{repo: repo, proveedores: proveedores, precios: precios}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if err := s.validarProveedor(ctx, req.ProveedorID); err != nil {
		return nil, err
	}
	p := &model.Producto{
		Nombre:       strings.TrimSpace(req.Nombre),
		Descripcion:  req.Descripcion,
		CodigoBarras: normalizarBarcode(req.CodigoBarras),
		Categoria:    req.Categoria,
		PrecioCompra: req.PrecioCompra.Round(2),
		PrecioVenta:  req.PrecioVenta.Round(2),
		StockActual:  req.StockActual,
		StockMinimo:  req.StockMinimo,
		ProveedorID:  req.ProveedorID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := productoToResponse(*p, 0)
	return &resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uint) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := productoToResponse(*p, 0)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return lo.Map(productos, productoToResponse), nil
}

// Actualizar applies only the fields present in req. The old and the new
// barcode are both dropped from the price cache.
func (s *productoService) Actualizar(ctx context.Context, id uint, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	anterior := p.CodigoBarras

	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.CodigoBarras != nil {
		p.CodigoBarras = normalizarBarcode(req.CodigoBarras)
	}
	if req.Categoria != nil {
		p.Categoria = *req.Categoria
	}
	if req.PrecioCompra != nil {
		p.PrecioCompra = req.PrecioCompra.Round(2)
	}
	if req.PrecioVenta != nil {
		p.PrecioVenta = req.PrecioVenta.Round(2)
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.ProveedorID != nil {
		if err := s.validarProveedor(ctx, req.ProveedorID); err != nil {
			return nil, err
		}
		p.ProveedorID = req.ProveedorID
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.precios.Invalidate(ctx, anterior, p.CodigoBarras)
	resp := productoToResponse(*p, 0)
	return &resp, nil
}

// Eliminar fails with ErrConflict while any sale line references the product.
func (s *productoService) Eliminar(ctx context.Context, id uint) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.precios.Invalidate(ctx, p.CodigoBarras)
	return nil
}

func (s *productoService) ConsultarPrecio(ctx context.Context, barcode string) (*dto.ConsultaPreciosResponse, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: codigo de barras vacio", apierror.ErrValidation)
	}

	var cached dto.ConsultaPreciosResponse
	if s.precios.get(ctx, barcode, &cached) {
		return &cached, nil
	}

	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	resp := &dto.ConsultaPreciosResponse{
		ID:              p.ID,
		Nombre:          p.Nombre,
		PrecioVenta:     p.PrecioVenta,
		StockDisponible: p.StockActual,
		Categoria:       p.Categoria,
	}
	s.precios.set(ctx, barcode, resp)
	return resp, nil
}

func (s *productoService) validarProveedor(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.proveedores.FindByID(ctx, *id); err != nil {
		if errors.Is(err, apierror.ErrNotFound) {
			return fmt.Errorf("%w: proveedor_id %d no existe", apierror.ErrValidation, *id)
		}
		return err
	}
	return nil
}

// normalizarBarcode stores blank barcodes as NULL so they never collide on
// the unique index.
func normalizarBarcode(b *string) *string {
	if b == nil {
		return nil
	}
	v := strings.TrimSpace(*b)
	if v == "" {
		return nil
	}
	return &v
}

func productoToResponse(p model.Producto, _ int) dto.ProductoResponse {
	resp := dto.ProductoResponse{
		ID:           p.ID,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		CodigoBarras: p.CodigoBarras,
		Categoria:    p.Categoria,
		PrecioCompra: p.PrecioCompra,
		PrecioVenta:  p.PrecioVenta,
		StockActual:  p.StockActual,
		StockMinimo:  p.StockMinimo,
		ProveedorID:  p.ProveedorID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Proveedor != nil {
		resp.NombreProveedor = &p.Proveedor.Nombre
	}
	return resp
}
