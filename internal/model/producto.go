package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estado de stock derivado de los umbrales por producto.
const (
	StockOK      = "OK"
	StockBajo    = "BAJO"
	StockCritico = "CRITICO"
)

// Producto is a catalog item. Precio is the final sale price in Chilean
// pesos, IVA included (whole pesos, no subunits). Stock is never negative.
type Producto struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodigoSKU      string     `gorm:"column:codigo_sku;uniqueIndex;not null"`
	Nombre         string     `gorm:"index;not null"`
	CategoriaID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	SubcategoriaID *uuid.UUID `gorm:"type:uuid;index"`
	Descripcion    *string
	Precio         decimal.Decimal `gorm:"type:decimal(10,0);not null"`
	Stock          int             `gorm:"not null;default:0"`
	StockMinimo    int             `gorm:"not null;default:5"`
	StockCritico   int             `gorm:"not null;default:2"`
	Activo         bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Categoria    *Categoria    `gorm:"foreignKey:CategoriaID"`
	Subcategoria *Subcategoria `gorm:"foreignKey:SubcategoriaID"`
}

func (Producto) TableName() string { return "productos" }

// EstadoStock compares the current stock against the per-product thresholds.
func (p *Producto) EstadoStock() string {
	switch {
	case p.Stock <= p.StockCritico:
		return StockCritico
	case p.Stock <= p.StockMinimo:
		return StockBajo
	default:
		return StockOK
	}
}
