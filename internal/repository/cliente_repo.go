package repository

import (
	"context"

	"github.com/pablini31/papelria/internal/model"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uint) (*model.Cliente, error)
	List(ctx context.Context, limit int) ([]model.Cliente, error)
	Update(ctx context.Context, c *model.Cliente) error
	Delete(ctx context.Context, id uint) error

	FindByIDTx(tx *gorm.DB, id uint) (*model.Cliente, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return translate(r.db.WithContext(ctx).Create(c).Error, "cliente")
}

func (r *clienteRepo) FindByID(ctx context.Context, id uint) (*model.Cliente, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *clienteRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.Cliente, error) {
	var c model.Cliente
	if err := tx.First(&c, id).Error; err != nil {
		return nil, findErr(err, "cliente", id)
	}
	return &c, nil
}

// List returns the newest customers first; limit <= 0 means no limit.
func (r *clienteRepo) List(ctx context.Context, limit int) ([]model.Cliente, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var clientes []model.Cliente
	err := q.Find(&clientes).Error
	return clientes, translate(err, "clientes")
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	res := r.db.WithContext(ctx).Model(c).
		Select("nombre", "email", "telefono", "direccion", "updated_at").
		Updates(c)
	if res.Error != nil {
		return translate(res.Error, "cliente")
	}
	if res.RowsAffected == 0 {
		return notFound("cliente", c.ID)
	}
	return nil
}

// Delete keeps the customer's sales: ventas.cliente_id is SET NULL.
func (r *clienteRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Cliente{}, id)
	if res.Error != nil {
		return translate(res.Error, "cliente")
	}
	if res.RowsAffected == 0 {
		return notFound("cliente", id)
	}
	return nil
}
