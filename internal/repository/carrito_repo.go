package repository

import (
	"context"
	"errors"

	"github.com/H-Riv/mundo-cartas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CarritoRepository interface {
	// GetOrCreate returns the user's cart, creating an empty one on first use.
	GetOrCreate(ctx context.Context, usuarioID uuid.UUID) (*model.Carrito, error)
	// FindConItems loads the cart with items and their products.
	FindConItems(ctx context.Context, usuarioID uuid.UUID) (*model.Carrito, error)
	FindItem(ctx context.Context, carritoID, productoID uuid.UUID) (*model.ItemCarrito, error)
	FindItemByID(ctx context.Context, itemID uuid.UUID) (*model.ItemCarrito, error)
	CreateItem(ctx context.Context, item *model.ItemCarrito) error
	UpdateItem(ctx context.Context, item *model.ItemCarrito) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	Vaciar(ctx context.Context, carritoID uuid.UUID) error
	VaciarTx(tx *gorm.DB, carritoID uuid.UUID) error
}

type carritoRepo struct{ db *gorm.DB }

func NewCarritoRepository(db *gorm.DB) CarritoRepository { return &carritoRepo{db: db} }

func (r *carritoRepo) GetOrCreate(ctx context.Context, usuarioID uuid.UUID) (*model.Carrito, error) {
	var c model.Carrito
	err := r.db.WithContext(ctx).Where("usuario_id = ?", usuarioID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c = model.Carrito{UsuarioID: usuarioID}
		err = r.db.WithContext(ctx).Create(&c).Error
	}
	return &c, err
}

func (r *carritoRepo) FindConItems(ctx context.Context, usuarioID uuid.UUID) (*model.Carrito, error) {
	c, err := r.GetOrCreate(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).
		Preload("Producto").
		Where("carrito_id = ?", c.ID).
		Order("created_at ASC").
		Find(&c.Items).Error
	return c, err
}

func (r *carritoRepo) FindItem(ctx context.Context, carritoID, productoID uuid.UUID) (*model.ItemCarrito, error) {
	var item model.ItemCarrito
	err := r.db.WithContext(ctx).Preload("Producto").
		Where("carrito_id = ? AND producto_id = ?", carritoID, productoID).First(&item).Error
	return &item, err
}

func (r *carritoRepo) FindItemByID(ctx context.Context, itemID uuid.UUID) (*model.ItemCarrito, error) {
	var item model.ItemCarrito
	err := r.db.WithContext(ctx).Preload("Producto").First(&item, "id = ?", itemID).Error
	return &item, err
}

func (r *carritoRepo) CreateItem(ctx context.Context, item *model.ItemCarrito) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *carritoRepo) UpdateItem(ctx context.Context, item *model.ItemCarrito) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *carritoRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ItemCarrito{}, "id = ?", itemID).Error
}

func (r *carritoRepo) Vaciar(ctx context.Context, carritoID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ItemCarrito{}, "carrito_id = ?", carritoID).Error
}

func (r *carritoRepo) VaciarTx(tx *gorm.DB, carritoID uuid.UUID) error {
	return tx.Delete(&model.ItemCarrito{}, "carrito_id = ?", carritoID).Error
}
