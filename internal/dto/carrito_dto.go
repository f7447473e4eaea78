package dto

import "github.com/shopspring/decimal"

type AgregarItemRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad,omitempty" validate:"omitempty,min=1"`
}

type ActualizarCantidadRequest struct {
	Cantidad int `json:"cantidad" validate:"required,min=1"`
}

type ItemCarritoResponse struct {
	ID              string          `json:"id"`
	ProductoID      string          `json:"producto_id"`
	CodigoSKU       string          `json:"codigo_sku"`
	Nombre          string          `json:"nombre"`
	PrecioUnitario  decimal.Decimal `json:"precio_unitario"`
	Cantidad        int             `json:"cantidad"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	StockDisponible int             `json:"stock_disponible"`
}

type CarritoResponse struct {
	ID            string                `json:"id"`
	Items         []ItemCarritoResponse `json:"items"`
	CantidadItems int                   `json:"cantidad_items"`
	Total         decimal.Decimal       `json:"total"`
}
