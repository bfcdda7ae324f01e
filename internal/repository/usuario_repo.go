package repository

import (
	"context"
	"strings"

	"github.com/pablini31/papelria/internal/model"
	"gorm.io/gorm"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByUsername(ctx context.Context, username string) (*model.Usuario, error)
	FindByID(ctx context.Context, id uint) (*model.Usuario, error)
	List(ctx context.Context) ([]model.Usuario, error)
	Update(ctx context.Context, u *model.Usuario) error
	Delete(ctx context.Context, id uint) error
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return translate(r.db.WithContext(ctx).Create(u).Error, "usuario")
}

// FindByUsername matches case-insensitively, like the unique index on Postgres.
func (r *usuarioRepo) FindByUsername(ctx context.Context, username string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		First(&u).Error
	if err != nil {
		return nil, translate(err, "usuario "+username)
	}
	return &u, nil
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uint) (*model.Usuario, error) {
	var u model.Usuario
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, findErr(err, "usuario", id)
	}
	return &u, nil
}

func (r *usuarioRepo) List(ctx context.Context) ([]model.Usuario, error) {
	var users []model.Usuario
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&users).Error
	return users, translate(err, "usuarios")
}

func (r *usuarioRepo) Update(ctx context.Context, u *model.Usuario) error {
	res := r.db.WithContext(ctx).Model(u).
		Select("nombre", "username", "password_hash", "rol", "updated_at").
		Updates(u)
	if res.Error != nil {
		return translate(res.Error, "usuario")
	}
	if res.RowsAffected == 0 {
		return notFound("usuario", u.ID)
	}
	return nil
}

func (r *usuarioRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Usuario{}, id)
	if res.Error != nil {
		return translate(res.Error, "usuario")
	}
	if res.RowsAffected == 0 {
		return notFound("usuario", id)
	}
	return nil
}
