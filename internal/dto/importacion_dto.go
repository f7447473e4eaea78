package dto

// ResumenImportacionResponse summarizes one bulk import run. Errores holds
// per-row messages; a row error never aborts the rest of the batch.
type ResumenImportacionResponse struct {
	ProductosNuevos       int      `json:"productos_nuevos"`
	ProductosActualizados int      `json:"productos_actualizados"`
	Errores               []string `json:"errores"`
}
