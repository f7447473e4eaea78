package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre         string          `json:"nombre"          validate:"required,min=2,max=250"`
	CategoriaID    string          `json:"categoria_id"    validate:"required,uuid"`
	SubcategoriaID *string         `json:"subcategoria_id" validate:"omitempty,uuid"`
	Descripcion    *string         `json:"descripcion"`
	Precio         decimal.Decimal `json:"precio"          validate:"required,gt=0"`
	Stock          int             `json:"stock"           validate:"min=0"`
	StockMinimo    *int            `json:"stock_minimo"    validate:"omitempty,min=0"`
	StockCritico   *int            `json:"stock_critico"   validate:"omitempty,min=0"`
}

type ActualizarProductoRequest struct {
	Nombre         *string          `json:"nombre"          validate:"omitempty,min=2,max=250"`
	CategoriaID    *string          `json:"categoria_id"    validate:"omitempty,uuid"`
	SubcategoriaID *string          `json:"subcategoria_id" validate:"omitempty,uuid"`
	Descripcion    *string          `json:"descripcion"`
	Precio         *decimal.Decimal `json:"precio"          validate:"omitempty,gt=0"`
	StockMinimo    *int             `json:"stock_minimo"    validate:"omitempty,min=0"`
	StockCritico   *int             `json:"stock_critico"   validate:"omitempty,min=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	SKU            string `form:"sku"`
	Busqueda       string `form:"busqueda"` // matches nombre or codigo_sku
	CategoriaID    string `form:"categoria"`
	SubcategoriaID string `form:"subcategoria"`
	Activo         string `form:"activo"` // "false" | "all" | default activos
	ConStock       bool   `form:"con_stock"`
	Page           int    `form:"page,default=1"   validate:"min=1"`
	Limit          int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID           string          `json:"id"`
	CodigoSKU    string          `json:"codigo_sku"`
	Nombre       string          `json:"nombre"`
	Categoria    string          `json:"categoria"`
	Subcategoria *string         `json:"subcategoria"`
	Descripcion  *string         `json:"descripcion"`
	Precio       decimal.Decimal `json:"precio"`
	Stock        int             `json:"stock"`
	StockMinimo  int             `json:"stock_minimo"`
	StockCritico int             `json:"stock_critico"`
	EstadoStock  string          `json:"estado_stock"`
	Activo       bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ConsultaPrecioResponse is returned by the public price check endpoint.
type ConsultaPrecioResponse struct {
	CodigoSKU       string          `json:"codigo_sku"`
	Nombre          string          `json:"nombre"`
	Precio          decimal.Decimal `json:"precio"`
	StockDisponible int             `json:"stock_disponible"`
	Categoria       string          `json:"categoria"`
}
