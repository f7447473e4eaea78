package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoPedido is the web-checkout order lifecycle.
type EstadoPedido string

const (
	PedidoPendiente EstadoPedido = "pendiente"
	PedidoPagado    EstadoPedido = "pagado"
	PedidoPreparado EstadoPedido = "preparado"
	PedidoEntregado EstadoPedido = "entregado"
	PedidoCancelado EstadoPedido = "cancelado"
)

// PuedeTransicionarA enforces the linear fulfillment flow. Cancellation is
// only reachable from pendiente (an unauthorized payment); paid orders are
// reversed through a POS anulación, never by cancelling the pedido.
func (e EstadoPedido) PuedeTransicionarA(destino EstadoPedido) bool {
	switch e {
	case PedidoPendiente:
		return destino == PedidoPagado || destino == PedidoCancelado
	case PedidoPagado:
		return destino == PedidoPreparado
	case PedidoPreparado:
		return destino == PedidoEntregado
	}
	return false
}

// Pedido is a web-checkout order. Numero is the human-readable identifier
// PED-YYYYMMDD-NNNN, date-scoped and unique. Totals are decomposed from the
// IVA-inclusive cart total. The Webpay fields correlate the order with the
// external payment gateway.
type Pedido struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero    string       `gorm:"uniqueIndex;not null"`
	UsuarioID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Estado    EstadoPedido `gorm:"type:varchar(20);not null;default:'pendiente'"`

	Neto  decimal.Decimal `gorm:"type:decimal(10,0);not null"`
	IVA   decimal.Decimal `gorm:"column:iva;type:decimal(10,0);not null"`
	Total decimal.Decimal `gorm:"type:decimal(10,0);not null"`

	WebpayToken        *string `gorm:"index"`
	CodigoAutorizacion *string
	TipoPago           *string
	FechaPago          *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Usuario *Usuario        `gorm:"foreignKey:UsuarioID"`
	Items   []DetallePedido `gorm:"foreignKey:PedidoID"`
}

func (Pedido) TableName() string { return "pedidos" }

// DetallePedido snapshots one order line at checkout time. Once the pedido
// is paid the line is immutable.
type DetallePedido struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,0);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,0);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetallePedido) TableName() string { return "detalles_pedido" }
