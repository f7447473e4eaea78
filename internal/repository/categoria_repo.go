package repository

import (
	"context"

	"github.com/H-Riv/mundo-cartas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoriaRepository interface {
	Create(ctx context.Context, c *model.Categoria) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Categoria, error)
	FindByNombre(ctx context.Context, nombre string) (*model.Categoria, error)
	List(ctx context.Context) ([]model.Categoria, error)
	Update(ctx context.Context, c *model.Categoria) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	CreateSubcategoria(ctx context.Context, s *model.Subcategoria) error
	FindSubcategoriaByID(ctx context.Context, id uuid.UUID) (*model.Subcategoria, error)
	FindSubcategoriaByNombre(ctx context.Context, nombre string) (*model.Subcategoria, error)
	ListSubcategorias(ctx context.Context) ([]model.Subcategoria, error)
}

type categoriaRepo struct{ db *gorm.DB }

func NewCategoriaRepository(db *gorm.DB) CategoriaRepository { return &categoriaRepo{db: db} }

func (r *categoriaRepo) Create(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoriaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Categoria, error) {
	var c model.Categoria
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *categoriaRepo) FindByNombre(ctx context.Context, nombre string) (*model.Categoria, error) {
	var c model.Categoria
	err := r.db.WithContext(ctx).Where("nombre = ? AND activo = true", nombre).First(&c).Error
	return &c, err
}

func (r *categoriaRepo) List(ctx context.Context) ([]model.Categoria, error) {
	var categorias []model.Categoria
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre ASC").Find(&categorias).Error
	return categorias, err
}

func (r *categoriaRepo) Update(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoriaRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Categoria{}).Where("id = ?", id).Update("activo", false).Error
}

func (r *categoriaRepo) CreateSubcategoria(ctx context.Context, s *model.Subcategoria) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *categoriaRepo) FindSubcategoriaByID(ctx context.Context, id uuid.UUID) (*model.Subcategoria, error) {
	var s model.Subcategoria
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *categoriaRepo) FindSubcategoriaByNombre(ctx context.Context, nombre string) (*model.Subcategoria, error) {
	var s model.Subcategoria
	err := r.db.WithContext(ctx).Where("nombre = ? AND activo = true", nombre).First(&s).Error
	return &s, err
}

func (r *categoriaRepo) ListSubcategorias(ctx context.Context) ([]model.Subcategoria, error) {
	var subcategorias []model.Subcategoria
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre ASC").Find(&subcategorias).Error
	return subcategorias, err
}
