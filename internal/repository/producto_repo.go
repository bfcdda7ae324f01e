package repository

import (
	"context"
	"strings"

	"github.com/pablini31/papelria/internal/dto"
	"github.com/pablini31/papelria/internal/model"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uint) (*model.Producto, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Producto, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, error)
	ListBajoMinimo(ctx context.Context) ([]model.Producto, error)
	Update(ctx context.Context, p *model.Producto) error
	Delete(ctx context.Context, id uint) error

	// Used inside transactions; callers must pass the tx instance
	FindByIDTx(tx *gorm.DB, id uint) (*model.Producto, error)
	FindByIDsTx(tx *gorm.DB, ids []uint) ([]model.Producto, error)
	StockTx(tx *gorm.DB, id uint) (int, error)

	// AdjustStockTx applies stock_actual += delta and reports how many rows
	// changed. A negative delta only applies while stock_actual >= -delta, so
	// zero rows means either a missing product or insufficient stock.
	AdjustStockTx(tx *gorm.DB, id uint, delta int) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return translate(r.db.WithContext(ctx).Omit("Proveedor").Create(p).Error, "producto")
}

func (r *productoRepo) FindByID(ctx context.Context, id uint) (*model.Producto, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *productoRepo) FindByIDs(ctx context.Context, ids []uint) ([]model.Producto, error) {
	return r.FindByIDsTx(r.db.WithContext(ctx), ids)
}

func (r *productoRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("codigo_barras = ?", barcode).First(&p).Error
	if err != nil {
		return nil, translate(err, "producto con codigo "+barcode)
	}
	return &p, nil
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, error) {
	q := r.db.WithContext(ctx).Model(&model.Producto{}).Preload("Proveedor")

	if filter.Nombre != "" {
		q = q.Where("LOWER(nombre) LIKE ?", "%"+strings.ToLower(filter.Nombre)+"%")
	}
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}
	if filter.CodigoBarras != "" {
		q = q.Where("codigo_barras = ?", filter.CodigoBarras)
	}
	if filter.ProveedorID != nil {
		q = q.Where("proveedor_id = ?", *filter.ProveedorID)
	}
	if filter.StockBajo {
		q = q.Where("stock_actual <= stock_minimo")
	}
	limit := filter.Limit
	if limit < 1 || limit > 1000 {
		limit = 500
	}

	var productos []model.Producto
	err := q.Order("nombre ASC").Limit(limit).Find(&productos).Error
	return productos, translate(err, "productos")
}

func (r *productoRepo) ListBajoMinimo(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("stock_actual <= stock_minimo").
		Order("stock_actual ASC, nombre ASC").
		Find(&productos).Error
	return productos, translate(err, "productos")
}

// Update writes catalog fields only. stock_actual is left to the ledger.
func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	res := r.db.WithContext(ctx).Model(p).
		Select("nombre", "descripcion", "codigo_barras", "categoria",
			"precio_compra", "precio_venta", "stock_minimo", "proveedor_id", "updated_at").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error, "producto")
	}
	if res.RowsAffected == 0 {
		return notFound("producto", p.ID)
	}
	return nil
}

func (r *productoRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Producto{}, id)
	if res.Error != nil {
		return translate(res.Error, "producto")
	}
	if res.RowsAffected == 0 {
		return notFound("producto", id)
	}
	return nil
}

func (r *productoRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.Producto, error) {
	var p model.Producto
	if err := tx.First(&p, id).Error; err != nil {
		return nil, findErr(err, "producto", id)
	}
	return &p, nil
}

func (r *productoRepo) FindByIDsTx(tx *gorm.DB, ids []uint) ([]model.Producto, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var productos []model.Producto
	err := tx.Where("id IN ?", ids).Find(&productos).Error
	return productos, translate(err, "productos")
}

func (r *productoRepo) StockTx(tx *gorm.DB, id uint) (int, error) {
	var stock int
	res := tx.Model(&model.Producto{}).Where("id = ?", id).Select("stock_actual").Scan(&stock)
	if res.Error != nil {
		return 0, translate(res.Error, "producto")
	}
	if res.RowsAffected == 0 {
		return 0, notFound("producto", id)
	}
	return stock, nil
}

func (r *productoRepo) AdjustStockTx(tx *gorm.DB, id uint, delta int) (int64, error) {
	q := tx.Model(&model.Producto{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("stock_actual >= ?", -delta)
	}
	res := q.Update("stock_actual", gorm.Expr("stock_actual + ?", delta))
	return res.RowsAffected, translate(res.Error, "producto")
}
