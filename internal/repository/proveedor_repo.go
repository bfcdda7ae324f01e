package repository

import (
	"context"

	"github.com/pablini31/papelria/internal/model"
	"gorm.io/gorm"
)

type ProveedorRepository interface {
	Create(ctx context.Context, p *model.Proveedor) error
	FindByID(ctx context.Context, id uint) (*model.Proveedor, error)
	List(ctx context.Context) ([]model.Proveedor, error)
	Update(ctx context.Context, p *model.Proveedor) error
	Delete(ctx context.Context, id uint) error
}

type proveedorRepo struct{ db *gorm.DB }

func NewProveedorRepository(db *gorm.DB) ProveedorRepository { return &proveedorRepo{db: db} }

func (r *proveedorRepo) Create(ctx context.Context, p *model.Proveedor) error {
	return translate(r.db.WithContext(ctx).Create(p).Error, "proveedor")
}

func (r *proveedorRepo) FindByID(ctx context.Context, id uint) (*model.Proveedor, error) {
	var p model.Proveedor
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, findErr(err, "proveedor", id)
	}
	return &p, nil
}

func (r *proveedorRepo) List(ctx context.Context) ([]model.Proveedor, error) {
	var proveedores []model.Proveedor
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&proveedores).Error
	return proveedores, translate(err, "proveedores")
}

func (r *proveedorRepo) Update(ctx context.Context, p *model.Proveedor) error {
	res := r.db.WithContext(ctx).Model(p).
		Select("nombre", "contacto", "telefono", "email", "direccion", "updated_at").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error, "proveedor")
	}
	if res.RowsAffected == 0 {
		return notFound("proveedor", p.ID)
	}
	return nil
}

// Delete detaches the supplier's products (productos.proveedor_id SET NULL).
func (r *proveedorRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Proveedor{}, id)
	if res.Error != nil {
		return translate(res.Error, "proveedor")
	}
	if res.RowsAffected == 0 {
		return notFound("proveedor", id)
	}
	return nil
}
