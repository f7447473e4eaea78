package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Carrito is the per-customer shopping cart (one per usuario).
type Carrito struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []ItemCarrito `gorm:"foreignKey:CarritoID"`
}

func (Carrito) TableName() string { return "carritos" }

// Total sums cantidad × precio over the loaded items.
func (c *Carrito) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		if item.Producto != nil {
			total = total.Add(item.Producto.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad))))
		}
	}
	return total
}

// CantidadItems counts units across all lines.
func (c *Carrito) CantidadItems() int {
	n := 0
	for _, item := range c.Items {
		n += item.Cantidad
	}
	return n
}

// ItemCarrito is one product line inside a cart, unique per (carrito, producto).
type ItemCarrito struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CarritoID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_carrito_producto"`
	ProductoID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_carrito_producto"`
	Cantidad   int       `gorm:"not null;default:1"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (ItemCarrito) TableName() string { return "items_carrito" }
