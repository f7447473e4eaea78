package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoVenta is the POS receipt lifecycle.
type EstadoVenta string

const (
	VentaCompletada EstadoVenta = "completada"
	VentaAnulada    EstadoVenta = "anulada"
)

// Venta is an internal sale receipt. POS sales create one directly; a paid
// web pedido mirrors into one (PedidoID set) so daily reporting sees a single
// stream of ventas. Folio is the sequential V-NNNN identifier.
type Venta struct {
	ID     uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Folio  string      `gorm:"uniqueIndex;not null"`
	Estado EstadoVenta `gorm:"type:varchar(20);not null;default:'completada'"`

	Neto  decimal.Decimal `gorm:"type:decimal(10,0);not null"`
	IVA   decimal.Decimal `gorm:"column:iva;type:decimal(10,0);not null"`
	Total decimal.Decimal `gorm:"type:decimal(10,0);not null"`

	ClienteNombre *string
	Observaciones *string
	UsuarioID     *uuid.UUID `gorm:"type:uuid"`
	PedidoID      *uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Usuario *Usuario       `gorm:"foreignKey:UsuarioID"`
	Items   []DetalleVenta `gorm:"foreignKey:VentaID"`
}

func (Venta) TableName() string { return "ventas" }

// DetalleVenta is one sold line: quantity, unit price at sale time and the
// line subtotal (cantidad × precio_unitario).
type DetalleVenta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,0);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,0);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleVenta) TableName() string { return "detalles_venta" }
