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
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored passwords. Tests lower it.
var BcryptCost = 12

// HashPassword returns the bcrypt hash stored in usuarios.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apierror.ErrValidation, err)
	}
	return string(hash), nil
}

type UsuarioService interface {
	Crear(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.UsuarioResponse, error)
	Listar(ctx context.Context) ([]dto.UsuarioResponse, error)
	Actualizar(ctx context.Context, id uint, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	Eliminar(ctx context.Context, id uint) error
	// AsegurarAdmin creates the admin user or resets its password and role.
	AsegurarAdmin(ctx context.Context, nombre, username, password string) (*dto.UsuarioResponse, bool, error)
}

type usuarioService struct {
	repo repository.UsuarioRepository
}

func NewUsuarioService(repo repository.UsuarioRepository) UsuarioService {
	return &usuarioService{repo: repo}
}

func (s *usuarioService) Crear(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &model.Usuario{
		Nombre:       strings.TrimSpace(req.Nombre),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		Rol:          req.Rol,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	resp := usuarioToResponse(*u, 0)
	return &resp, nil
}

func (s *usuarioService) ObtenerPorID(ctx context.Context, id uint) (*dto.UsuarioResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := usuarioToResponse(*u, 0)
	return &resp, nil
}

func (s *usuarioService) Listar(ctx context.Context) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, usuarioToResponse), nil
}

func (s *usuarioService) Actualizar(ctx context.Context, id uint, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		u.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Username != nil {
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.Rol != nil {
		u.Rol = *req.Rol
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	resp := usuarioToResponse(*u, 0)
	return &resp, nil
}

func (s *usuarioService) Eliminar(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *usuarioService) AsegurarAdmin(ctx context.Context, nombre, username, password string) (*dto.UsuarioResponse, bool, error) {
	if len(password) < 6 {
		return nil, false, fmt.Errorf("%w: la contraseña debe tener al menos 6 caracteres", apierror.ErrValidation)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, false, err
	}

	u, err := s.repo.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, apierror.ErrNotFound):
		u = &model.Usuario{Nombre: nombre, Username: username, PasswordHash: hash, Rol: "admin"}
		if err := s.repo.Create(ctx, u); err != nil {
			return nil, false, err
		}
		resp := usuarioToResponse(*u, 0)
		return &resp, true, nil
	case err != nil:
		return nil, false, err
	}

	u.PasswordHash = hash
	u.Rol = "admin"
	if nombre != "" {
		u.Nombre = nombre
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, false, err
	}
	resp := usuarioToResponse(*u, 0)
	return &resp, false, nil
}

func usuarioToResponse(u model.Usuario, _ int) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:        u.ID,
		Nombre:    u.Nombre,
		Username:  u.Username,
		Rol:       u.Rol,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
