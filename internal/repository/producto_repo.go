package repository

import (
	"context"
	"fmt"

	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	CreateTx(tx *gorm.DB, p *model.Producto) error
	// CreateBatch inserts all products in a single statement (bulk import).
	CreateBatch(ctx context.Context, productos []*model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	FindBySKU(ctx context.Context, sku string) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	ListActivos(ctx context.Context) ([]model.Producto, error)
	Update(ctx context.Context, p *model.Producto) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error

	// Used inside transactions — callers must pass the tx instance.
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error
	SetStockTx(tx *gorm.DB, id uuid.UUID, stock int) error

	// NextSKU reads productos_sku_seq for atomic SKU generation.
	NextSKU(ctx context.Context, tx *gorm.DB) (string, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) CreateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Create(p).Error
}

func (r *productoRepo) CreateBatch(ctx context.Context, productos []*model.Producto) error {
	if len(productos) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(productos).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Preload("Categoria").Preload("Subcategoria").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productoRepo) FindBySKU(ctx context.Context, sku string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Preload("Categoria").Preload("Subcategoria").
		Where("codigo_sku = ?", sku).First(&p).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	// Activo filter: "false" = inactivos, "all" = todos, anything else = activos (default)
	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}

	if filter.ConStock {
		q = q.Where("stock > 0")
	}
	if filter.SKU != "" {
		q = q.Where("codigo_sku = ?", filter.SKU)
	}
	if filter.Busqueda != "" {
		pattern := "%" + filter.Busqueda + "%"
		q = q.Where("nombre ILIKE ? OR codigo_sku ILIKE ?", pattern, pattern)
	}
	if filter.CategoriaID != "" {
		q = q.Where("categoria_id = ?", filter.CategoriaID)
	}
	if filter.SubcategoriaID != "" {
		q = q.Where("subcategoria_id = ?", filter.SubcategoriaID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Categoria").Preload("Subcategoria").
		Order("codigo_sku ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) ListActivos(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Where("activo = true").Order("codigo_sku ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *productoRepo) Reactivar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", true).Error
}

func (r *productoRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}

func (r *productoRepo) SetStockTx(tx *gorm.DB, id uuid.UUID, stock int) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).Update("stock", stock).Error
}

func (r *productoRepo) NextSKU(ctx context.Context, tx *gorm.DB) (string, error) {
	// Postgres sequence keeps SKU generation atomic under concurrent creates.
	var num int
	if err := tx.WithContext(ctx).Raw("SELECT nextval('productos_sku_seq')").Scan(&num).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("MC-%04d", num), nil
}
