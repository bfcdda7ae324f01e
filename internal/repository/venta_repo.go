package repository

import (
	"context"
	"time"

	"github.com/pablini31/papelria/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VentaListFilter is the parsed form of dto.VentaFilter.
type VentaListFilter struct {
	Estado    string
	ClienteID *uint
	Desde     *time.Time
	Hasta     *time.Time // exclusive
	Limit     int
}

type VentaRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Venta, error)
	Items(ctx context.Context, ventaID uint) ([]model.ItemVenta, error)
	List(ctx context.Context, filter VentaListFilter) ([]model.Venta, error)

	// Used inside transactions; callers must pass the tx instance
	CreateTx(tx *gorm.DB, v *model.Venta) error
	CreateItemTx(tx *gorm.DB, item *model.ItemVenta) error
	FindByIDTx(tx *gorm.DB, id uint) (*model.Venta, error)
	ItemsTx(tx *gorm.DB, ventaID uint) ([]model.ItemVenta, error)
	UpdateHeaderTx(tx *gorm.DB, v *model.Venta) error
	DeleteItemsTx(tx *gorm.DB, ventaID uint) error
	DeleteTx(tx *gorm.DB, id uint) error

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) FindByID(ctx context.Context, id uint) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Cliente").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Producto").
		First(&v, id).Error
	if err != nil {
		return nil, findErr(err, "venta", id)
	}
	return &v, nil
}

func (r *ventaRepo) Items(ctx context.Context, ventaID uint) ([]model.ItemVenta, error) {
	var items []model.ItemVenta
	err := r.db.WithContext(ctx).
		Preload("Producto").
		Where("venta_id = ?", ventaID).
		Order("id ASC").
		Find(&items).Error
	return items, translate(err, "items de venta")
}

func (r *ventaRepo) List(ctx context.Context, filter VentaListFilter) ([]model.Venta, error) {
	q := r.db.WithContext(ctx).Model(&model.Venta{}).Preload("Cliente")

	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ClienteID != nil {
		q = q.Where("cliente_id = ?", *filter.ClienteID)
	}
	if filter.Desde != nil {
		q = q.Where("created_at >= ?", *filter.Desde)
	}
	if filter.Hasta != nil {
		q = q.Where("created_at < ?", *filter.Hasta)
	}
	limit := filter.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var ventas []model.Venta
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&ventas).Error
	return ventas, translate(err, "ventas")
}

// CreateTx inserts the header only; items are written one by one so each
// line can be paired with its stock adjustment.
func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return translate(tx.Omit(clause.Associations).Create(v).Error, "venta")
}

func (r *ventaRepo) CreateItemTx(tx *gorm.DB, item *model.ItemVenta) error {
	return translate(tx.Omit(clause.Associations).Create(item).Error, "item de venta")
}

func (r *ventaRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.Venta, error) {
	var v model.Venta
	if err := tx.First(&v, id).Error; err != nil {
		return nil, findErr(err, "venta", id)
	}
	return &v, nil
}

func (r *ventaRepo) ItemsTx(tx *gorm.DB, ventaID uint) ([]model.ItemVenta, error) {
	var items []model.ItemVenta
	err := tx.Where("venta_id = ?", ventaID).Order("id ASC").Find(&items).Error
	return items, translate(err, "items de venta")
}

func (r *ventaRepo) UpdateHeaderTx(tx *gorm.DB, v *model.Venta) error {
	res := tx.Model(&model.Venta{}).Where("id = ?", v.ID).Updates(map[string]any{
		"cliente_id":     v.ClienteID,
		"nombre_cliente": v.NombreCliente,
		"total":          v.Total,
		"estado":         v.Estado,
		"metodo_pago":    v.MetodoPago,
		"notas":          v.Notas,
	})
	if res.Error != nil {
		return translate(res.Error, "venta")
	}
	if res.RowsAffected == 0 {
		return notFound("venta", v.ID)
	}
	return nil
}

func (r *ventaRepo) DeleteItemsTx(tx *gorm.DB, ventaID uint) error {
	return translate(tx.Where("venta_id = ?", ventaID).Delete(&model.ItemVenta{}).Error, "items de venta")
}

func (r *ventaRepo) DeleteTx(tx *gorm.DB, id uint) error {
	res := tx.Delete(&model.Venta{}, id)
	if res.Error != nil {
		return translate(res.Error, "venta")
	}
	if res.RowsAffected == 0 {
		return notFound("venta", id)
	}
	return nil
}
