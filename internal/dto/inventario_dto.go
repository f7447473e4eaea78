package dto

// ─── Stock adjustment ────────────────────────────────────────────────────────

type AjustarStockRequest struct {
	Tipo          string  `json:"tipo"     validate:"required,oneof=ENTRADA SALIDA AJUSTE"`
	Cantidad      int     `json:"cantidad" validate:"required,min=1"`
	Motivo        string  `json:"motivo"   validate:"required,min=3"`
	Observaciones *string `json:"observaciones"`
}

type AjustarStockResponse struct {
	ProductoID    string `json:"producto_id"`
	StockAnterior int    `json:"stock_anterior"`
	StockNuevo    int    `json:"stock_nuevo"`
	EstadoStock   string `json:"estado_stock"`
}

// ─── Movements ───────────────────────────────────────────────────────────────

type MovimientoFilter struct {
	ProductoID string `form:"producto"`
	Tipo       string `form:"tipo"`
	Page       int    `form:"page,default=1"    validate:"min=1"`
	Limit      int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type MovimientoResponse struct {
	ID            string  `json:"id"`
	ProductoID    string  `json:"producto_id"`
	CodigoSKU     string  `json:"codigo_sku"`
	Tipo          string  `json:"tipo"`
	Cantidad      int     `json:"cantidad"`
	StockAnterior int     `json:"stock_anterior"`
	StockNuevo    int     `json:"stock_nuevo"`
	Motivo        string  `json:"motivo"`
	Observaciones *string `json:"observaciones"`
	CreatedAt     string  `json:"created_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// ─── Dashboard ───────────────────────────────────────────────────────────────

// ResumenInventarioResponse feeds the inventory dashboard header.
type ResumenInventarioResponse struct {
	TotalProductos int64 `json:"total_productos"`
	TotalUnidades  int64 `json:"total_unidades"`
	StockBajo      int   `json:"stock_bajo"`
	StockCritico   int   `json:"stock_critico"`
}

type AlertaStockResponse struct {
	ProductoID  string `json:"producto_id"`
	CodigoSKU   string `json:"codigo_sku"`
	Nombre      string `json:"nombre"`
	Stock       int    `json:"stock"`
	StockMinimo int    `json:"stock_minimo"`
	Estado      string `json:"estado"` // BAJO | CRITICO
}
