package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// columnasPlantilla is the canonical header row for bulk files, in order.
var columnasPlantilla = []string{
	"codigo_sku", "nombre", "categoria", "subcategoria",
	"descripcion", "precio", "stock", "stock_minimo", "stock_critico",
}

// ImportacionService loads product batches from spreadsheet files and
// produces the template workbook. A bad row is reported and skipped, never
// fatal to the batch.
type ImportacionService interface {
	Importar(ctx context.Context, usuarioID uuid.UUID, r io.Reader, filename string) (*dto.ResumenImportacionResponse, error)
	Plantilla() (*excelize.File, error)
}

type importacionService struct {
	productoRepo   repository.ProductoRepository
	categoriaRepo  repository.CategoriaRepository
	movimientoRepo repository.MovimientoStockRepository
}

func NewImportacionService(
	productoRepo repository.ProductoRepository,
	categoriaRepo repository.CategoriaRepository,
	movimientoRepo repository.MovimientoStockRepository,
) ImportacionService {
	return &importacionService{
		productoRepo:   productoRepo,
		categoriaRepo:  categoriaRepo,
		movimientoRepo: movimientoRepo,
	}
}

// filaImportacion is one parsed spreadsheet row, pre-validation.
type filaImportacion struct {
	numero       int // 1-based row number in the file, for error messages
	codigoSKU    string
	nombre       string
	categoria    string
	subcategoria string
	descripcion  string
	precio       string
	stock        string
	stockMinimo  string
	stockCritico string
}

func (s *importacionService) Importar(ctx context.Context, usuarioID uuid.UUID, r io.Reader, filename string) (*dto.ResumenImportacionResponse, error) {
	var filas []filaImportacion
	var err error
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".xlsx"):
		filas, err = leerXLSX(r)
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		filas, err = leerCSV(r)
	default:
		return nil, fmt.Errorf("formato no soportado: %s (se acepta .xlsx o .csv)", filename)
	}
	if err != nil {
		return nil, err
	}

	resumen := &dto.ResumenImportacionResponse{Errores: []string{}}
	var nuevos []*model.Producto

	for _, fila := range filas {
		if fila.codigoSKU == "" && fila.nombre == "" && fila.categoria == "" {
			continue // blank row
		}
		if err := s.procesarFila(ctx, usuarioID, fila, resumen, &nuevos); err != nil {
			resumen.Errores = append(resumen.Errores, fmt.Sprintf("fila %d: %v", fila.numero, err))
		}
	}

	if len(nuevos) > 0 {
		if err := s.productoRepo.CreateBatch(ctx, nuevos); err != nil {
			return nil, fmt.Errorf("insertando productos nuevos: %w", err)
		}
		resumen.ProductosNuevos = len(nuevos)
		// Opening ENTRADA rows for the batch, one per product with stock.
		for _, p := range nuevos {
			if p.Stock == 0 {
				continue
			}
			uid := usuarioID
			mov := &model.MovimientoStock{
				ProductoID:    p.ID,
				Tipo:          model.MovimientoEntrada,
				Cantidad:      p.Stock,
				StockAnterior: 0,
				StockNuevo:    p.Stock,
				Motivo:        "Importación masiva",
				UsuarioID:     &uid,
			}
			if err := s.movimientoRepo.Create(ctx, mov); err != nil {
				resumen.Errores = append(resumen.Errores, fmt.Sprintf("movimiento inicial de %s: %v", p.CodigoSKU, err))
			}
		}
	}

	return resumen, nil
}

// procesarFila validates one row and either queues a new product or merges
// stock into an existing one.
func (s *importacionService) procesarFila(ctx context.Context, usuarioID uuid.UUID, fila filaImportacion, resumen *dto.ResumenImportacionResponse, nuevos *[]*model.Producto) error {
	if fila.codigoSKU == "" {
		return fmt.Errorf("falta el código SKU")
	}
	if fila.nombre == "" {
		return fmt.Errorf("nombre requerido")
	}
	if fila.categoria == "" {
		return fmt.Errorf("categoria requerida")
	}
	precio, err := decimal.NewFromString(strings.TrimSpace(fila.precio))
	if err != nil || !precio.IsPositive() {
		return fmt.Errorf("precio inválido: %q", fila.precio)
	}

	stock := 0
	if fila.stock != "" {
		stock, err = strconv.Atoi(strings.TrimSpace(fila.stock))
		if err != nil || stock < 0 {
			return fmt.Errorf("stock inválido: %q", fila.stock)
		}
	}

	categoria, err := s.categoriaRepo.FindByNombre(ctx, fila.categoria)
	if err != nil {
		return fmt.Errorf("categoría desconocida: %q", fila.categoria)
	}
	var subID *uuid.UUID
	var subNombre string
	if fila.subcategoria != "" {
		sub, err := s.categoriaRepo.FindSubcategoriaByNombre(ctx, fila.subcategoria)
		if err != nil {
			return fmt.Errorf("subcategoría desconocida: %q", fila.subcategoria)
		}
		if sub.CategoriaID != categoria.ID {
			return fmt.Errorf("la subcategoría %q no pertenece a %q", fila.subcategoria, fila.categoria)
		}
		subID = &sub.ID
		subNombre = sub.Nombre
	}

	// Existing SKU → merge, but only when the row describes the same product.
	if existente, err := s.productoRepo.FindBySKU(ctx, fila.codigoSKU); err == nil {
		if !strings.EqualFold(existente.Nombre, fila.nombre) {
			return fmt.Errorf("el SKU %s ya existe con otro nombre (%q)", fila.codigoSKU, existente.Nombre)
		}
		if existente.CategoriaID != categoria.ID {
			return fmt.Errorf("el SKU %s ya existe en otra categoría", fila.codigoSKU)
		}
		if subID != nil && (existente.SubcategoriaID == nil || *existente.SubcategoriaID != *subID) {
			return fmt.Errorf("el SKU %s ya existe en otra subcategoría (%q)", fila.codigoSKU, subNombre)
		}
		return s.mergeStock(ctx, usuarioID, existente, stock, resumen)
	}

	producto := &model.Producto{
		CodigoSKU:      fila.codigoSKU,
		Nombre:         fila.nombre,
		CategoriaID:    categoria.ID,
		SubcategoriaID: subID,
		Precio:         precio,
		Stock:          stock,
		StockMinimo:    5,
		StockCritico:   2,
		Activo:         true,
	}
	if fila.descripcion != "" {
		desc := fila.descripcion
		producto.Descripcion = &desc
	}
	if fila.stockMinimo != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(fila.stockMinimo)); err == nil && n >= 0 {
			producto.StockMinimo = n
		}
	}
	if fila.stockCritico != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(fila.stockCritico)); err == nil && n >= 0 {
			producto.StockCritico = n
		}
	}

	*nuevos = append(*nuevos, producto)
	return nil
}

// mergeStock adds the row's stock to an existing product as an ENTRADA.
func (s *importacionService) mergeStock(ctx context.Context, usuarioID uuid.UUID, producto *model.Producto, stock int, resumen *dto.ResumenImportacionResponse) error {
	if stock == 0 {
		resumen.ProductosActualizados++
		return nil
	}
	stockAnterior := producto.Stock
	uid := usuarioID
	mov := &model.MovimientoStock{
		ProductoID:    producto.ID,
		Tipo:          model.MovimientoEntrada,
		Cantidad:      stock,
		StockAnterior: stockAnterior,
		StockNuevo:    stockAnterior + stock,
		Motivo:        "Importación masiva",
		UsuarioID:     &uid,
	}
	err := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		if err := s.productoRepo.UpdateStockTx(tx, producto.ID, stock); err != nil {
			return err
		}
		return s.movimientoRepo.CreateTx(tx, mov)
	})
	if err != nil {
		return err
	}
	resumen.ProductosActualizados++
	return nil
}

// Plantilla builds the downloadable xlsx template with the header row and a
// couple of example rows.
func (s *importacionService) Plantilla() (*excelize.File, error) {
	f := excelize.NewFile()
	const hoja = "Productos"
	idx, err := f.NewSheet(hoja)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, col := range columnasPlantilla {
		celda, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(hoja, celda, col); err != nil {
			return nil, err
		}
	}

	ejemplos := [][]interface{}{
		{"MC-0001", "Booster Pack Alfa", "Cartas", "Boosters", "Sobre de 15 cartas", 5990, 24, 5, 2},
		{"MC-0002", "Protector Estándar x100", "Accesorios", "", "", 3490, 50, 10, 3},
	}
	for r, fila := range ejemplos {
		for c, valor := range fila {
			celda, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(hoja, celda, valor); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// ─── File readers ────────────────────────────────────────────────────────────

func leerXLSX(r io.Reader) ([]filaImportacion, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer el archivo xlsx: %w", err)
	}
	defer f.Close()

	hoja := f.GetSheetName(0)
	rows, err := f.GetRows(hoja)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("el archivo no tiene filas de datos")
	}

	cols, err := mapearColumnas(rows[0])
	if err != nil {
		return nil, err
	}
	filas := make([]filaImportacion, 0, len(rows)-1)
	for i, row := range rows[1:] {
		filas = append(filas, filaDesdeCeldas(i+2, row, cols))
	}
	return filas, nil
}

func leerCSV(r io.Reader) ([]filaImportacion, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer el archivo csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("el archivo no tiene filas de datos")
	}

	cols, err := mapearColumnas(records[0])
	if err != nil {
		return nil, err
	}
	filas := make([]filaImportacion, 0, len(records)-1)
	for i, row := range records[1:] {
		filas = append(filas, filaDesdeCeldas(i+2, row, cols))
	}
	return filas, nil
}

// mapearColumnas resolves header names to their position, tolerating order
// changes and extra columns.
func mapearColumnas(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, requerida := range []string{"codigo_sku", "nombre", "categoria", "precio"} {
		if _, ok := cols[requerida]; !ok {
			return nil, fmt.Errorf("columna requerida ausente: %s", requerida)
		}
	}
	return cols, nil
}

func filaDesdeCeldas(numero int, row []string, cols map[string]int) filaImportacion {
	celda := func(nombre string) string {
		i, ok := cols[nombre]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return filaImportacion{
		numero:       numero,
		codigoSKU:    celda("codigo_sku"),
		nombre:       celda("nombre"),
		categoria:    celda("categoria"),
		subcategoria: celda("subcategoria"),
		descripcion:  celda("descripcion"),
		precio:       celda("precio"),
		stock:        celda("stock"),
		stockMinimo:  celda("stock_minimo"),
		stockCritico: celda("stock_critico"),
	}
}
