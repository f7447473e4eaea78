package dto

import "github.com/shopspring/decimal"

// ─── Checkout ────────────────────────────────────────────────────────────────

// IniciarCheckoutResponse carries the gateway redirect for the browser.
type IniciarCheckoutResponse struct {
	PedidoID    string          `json:"pedido_id"`
	Numero      string          `json:"numero"`
	Total       decimal.Decimal `json:"total"`
	Token       string          `json:"token"`
	RedirectURL string          `json:"redirect_url"`
}

type ConfirmarPagoResponse struct {
	Pedido      PedidoResponse `json:"pedido"`
	Autorizado  bool           `json:"autorizado"`
	FolioVenta  string         `json:"folio_venta,omitempty"`
}

type ActualizarEstadoPedidoRequest struct {
	Estado string `json:"estado" validate:"required,oneof=preparado entregado"`
}

// ─── Filter / List ───────────────────────────────────────────────────────────

type PedidoFilter struct {
	Estado string `form:"estado"` // pendiente | pagado | preparado | entregado | cancelado | all
	Fecha  string `form:"fecha"`  // YYYY-MM-DD
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type DetallePedidoResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type PedidoResponse struct {
	ID                 string                  `json:"id"`
	Numero             string                  `json:"numero"`
	Estado             string                  `json:"estado"`
	Neto               decimal.Decimal         `json:"neto"`
	IVA                decimal.Decimal         `json:"iva"`
	Total              decimal.Decimal         `json:"total"`
	Items              []DetallePedidoResponse `json:"items"`
	CodigoAutorizacion *string                 `json:"codigo_autorizacion,omitempty"`
	TipoPago           *string                 `json:"tipo_pago,omitempty"`
	FechaPago          *string                 `json:"fecha_pago,omitempty"`
	CreatedAt          string                  `json:"created_at"`
}

type PedidoListResponse struct {
	Data  []PedidoResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
