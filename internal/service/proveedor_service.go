package service

import (
	"context"
	"strings"

	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/model"
	"github.com/pablini31/papelria/internal/repository"
	"github.com/samber/lo"
)

type ProveedorService interface {
	Crear(ctx context.Context, req dto.ProveedorRequest) (*dto.ProveedorResponse, error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context) ([]dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, id uint, req dto.ProveedorRequest) (*dto.ProveedorResponse, error)
	Eliminar(ctx context.Context, id uint) error
}

type proveedorService struct {
	repo repository.ProveedorRepository
}

func NewProveedorService(repo repository.ProveedorRepository) ProveedorService {
	return &proveedorService{repo: repo}
}

func (s *proveedorService) Crear(ctx context.Context, req dto.ProveedorRequest) (*dto.ProveedorResponse, error) {
	p := &model.Proveedor{}
	applyProveedor(p, req)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := proveedorToResponse(*p, 0)
	return &resp, nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id uint) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := proveedorToResponse(*p, 0)
	return &resp, nil
}

func (s *proveedorService) Listar(ctx context.Context) ([]dto.ProveedorResponse, error) {
	proveedores, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(proveedores, proveedorToResponse), nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uint, req dto.ProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProveedor(p, req)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := proveedorToResponse(*p, 0)
	return &resp, nil
}

func (s *proveedorService) Eliminar(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func applyProveedor(p *model.Proveedor, req dto.ProveedorRequest) {
	p.Nombre = strings.TrimSpace(req.Nombre)
	p.Contacto = req.Contacto
	p.Telefono = req.Telefono
	p.Email = req.Email
	p.Direccion = req.Direccion
}

func proveedorToResponse(p model.Proveedor, _ int) dto.ProveedorResponse {
	return dto.ProveedorResponse{
		ID:        p.ID,
		Nombre:    p.Nombre,
		Contacto:  p.Contacto,
		Telefono:  p.Telefono,
		Email:     p.Email,
		Direccion: p.Direccion,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
