package repository

import (
	"context"

	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PedidoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error)
	FindByToken(ctx context.Context, token string) (*model.Pedido, error)
	// UltimoNumeroConPrefijo returns the numero of the most recently created
	// pedido (by insertion order) whose numero starts with prefijo.
	UltimoNumeroConPrefijo(ctx context.Context, tx *gorm.DB, prefijo string) (string, error)
	Update(ctx context.Context, p *model.Pedido) error
	UpdateTx(tx *gorm.DB, p *model.Pedido) error
	List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error)
	ListByUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.Pedido, error)
	DB() *gorm.DB
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) DB() *gorm.DB { return r.db }

func (r *pedidoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).Preload("Items.Producto").Preload("Usuario").
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *pedidoRepo) FindByToken(ctx context.Context, token string) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).Preload("Items.Producto").Preload("Usuario").
		Where("webpay_token = ?", token).First(&p).Error
	return &p, err
}

func (r *pedidoRepo) UltimoNumeroConPrefijo(ctx context.Context, tx *gorm.DB, prefijo string) (string, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var numero string
	err := db.WithContext(ctx).Model(&model.Pedido{}).
		Where("numero LIKE ?", prefijo+"%").
		Order("created_at DESC").
		Limit(1).
		Pluck("numero", &numero).Error
	return numero, err
}

func (r *pedidoRepo) Update(ctx context.Context, p *model.Pedido) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *pedidoRepo) UpdateTx(tx *gorm.DB, p *model.Pedido) error {
	return tx.Save(p).Error
}

func (r *pedidoRepo) List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var pedidos []model.Pedido
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Pedido{})
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(created_at) = ?", filter.Fecha)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.Producto").Preload("Usuario").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&pedidos).Error
	return pedidos, total, err
}

func (r *pedidoRepo) ListByUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.Pedido, error) {
	var pedidos []model.Pedido
	err := r.db.WithContext(ctx).Preload("Items.Producto").
		Where("usuario_id = ?", usuarioID).
		Order("created_at DESC").
		Find(&pedidos).Error
	return pedidos, err
}
