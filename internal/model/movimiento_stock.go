package model

import (
	"time"

	"github.com/google/uuid"
)

// TipoMovimiento enumerates every cause of a stock change.
type TipoMovimiento string

const (
	MovimientoEntrada   TipoMovimiento = "ENTRADA"
	MovimientoSalida    TipoMovimiento = "SALIDA"
	MovimientoAjuste    TipoMovimiento = "AJUSTE"
	MovimientoVenta     TipoMovimiento = "VENTA"
	MovimientoAnulacion TipoMovimiento = "ANULACION"
)

// MovimientoStock is one immutable entry in the stock ledger. Rows are only
// ever inserted — a void creates a compensating ANULACION row, history is
// never edited. Cantidad is always positive; the direction comes from Tipo.
type MovimientoStock struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Tipo          TipoMovimiento `gorm:"type:varchar(20);not null"`
	Cantidad      int            `gorm:"not null"`
	StockAnterior int            `gorm:"not null"`
	StockNuevo    int            `gorm:"not null"`
	Motivo        string         `gorm:"not null"`
	Observaciones *string
	// ReferenciaID links to the originating Venta or Pedido when applicable.
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	UsuarioID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
