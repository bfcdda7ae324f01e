package repository

import (
	"context"

	"github.com/pablini31/papelria/internal/model"
	"gorm.io/gorm"
)

// MovimientoStockFilter defines filters for listing stock movements.
type MovimientoStockFilter struct {
	ProductoID *uint
	VentaID    *uint
	Tipo       string
	Limit      int
}

type MovimientoStockRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoStock) error
	List(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) CreateTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return translate(tx.Omit("Producto").Create(m).Error, "movimiento de stock")
}

func (r *movimientoStockRepo) List(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{})
	if filter.ProductoID != nil {
		q = q.Where("producto_id = ?", *filter.ProductoID)
	}
	if filter.VentaID != nil {
		q = q.Where("venta_id = ?", *filter.VentaID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	limit := filter.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var movimientos []model.MovimientoStock
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&movimientos).Error
	return movimientos, translate(err, "movimientos de stock")
}
