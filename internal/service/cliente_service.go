package service

import (
	"context"
	"strings"

	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/model"
	"github.com/pablini31/papelria/internal/repository"
	"github.com/samber/lo"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.ClienteRequest) (*dto.ClienteResponse, error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.ClienteResponse, error)
	Listar(ctx context.Context) ([]dto.ClienteResponse, error)
	Actualizar(ctx context.Context, id uint, req dto.ClienteRequest) (*dto.ClienteResponse, error)
	Eliminar(ctx context.Context, id uint) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.ClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		Nombre:    strings.TrimSpace(req.Nombre),
		Email:     req.Email,
		Telefono:  req.Telefono,
		Direccion: req.Direccion,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := clienteToResponse(*c, 0)
	return &resp, nil
}

func (s *clienteService) ObtenerPorID(ctx context.Context, id uint) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := clienteToResponse(*c, 0)
	return &resp, nil
}

func (s *clienteService) Listar(ctx context.Context) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	return lo.Map(clientes, clienteToResponse), nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uint, req dto.ClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Nombre = strings.TrimSpace(req.Nombre)
	c.Email = req.Email
	c.Telefono = req.Telefono
	c.Direccion = req.Direccion
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := clienteToResponse(*c, 0)
	return &resp, nil
}

func (s *clienteService) Eliminar(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func clienteToResponse(c model.Cliente, _ int) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:        c.ID,
		Nombre:    c.Nombre,
		Email:     c.Email,
		Telefono:  c.Telefono,
		Direccion: c.Direccion,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
