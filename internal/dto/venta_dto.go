package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type RegistrarVentaRequest struct {
	Items         []ItemVentaRequest `json:"items" validate:"required,min=1,dive"`
	ClienteNombre *string            `json:"cliente_nombre"`
	Observaciones *string            `json:"observaciones"`
	// ClienteEmail: optional — when present, the boleta worker mails the PDF receipt.
	ClienteEmail *string `json:"cliente_email" validate:"omitempty,email"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Filter / List ───────────────────────────────────────────────────────────

type VentaFilter struct {
	Fecha  string `form:"fecha"`                     // YYYY-MM-DD; empty = today
	Estado string `form:"estado,default=completada"` // completada | anulada | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID            string              `json:"id"`
	Folio         string              `json:"folio"`
	Estado        string              `json:"estado"`
	Items         []ItemVentaResponse `json:"items"`
	Neto          decimal.Decimal     `json:"neto"`
	IVA           decimal.Decimal     `json:"iva"`
	Total         decimal.Decimal     `json:"total"`
	ClienteNombre *string             `json:"cliente_nombre"`
	CreatedAt     string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
