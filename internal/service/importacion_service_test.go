package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildImportacionSvc() (service.ImportacionService, *stubProductoRepo, *stubCategoriaRepo, *stubMovimientoRepo) {
	productoRepo := newStubProductoRepo()
	categoriaRepo := newStubCategoriaRepo()
	movRepo := &stubMovimientoRepo{}
	svc := service.NewImportacionService(productoRepo, categoriaRepo, movRepo)
	return svc, productoRepo, categoriaRepo, movRepo
}

func seedCategoria(repo *stubCategoriaRepo, nombre string) *model.Categoria {
	c := &model.Categoria{ID: uuid.New(), Nombre: nombre, Activo: true}
	repo.categorias[c.ID] = c
	return c
}

func TestImportar_CSVNuevosProductos(t *testing.T) {
	svc, productoRepo, categoriaRepo, movRepo := buildImportacionSvc()
	seedCategoria(categoriaRepo, "Cartas")

	archivo := strings.Join([]string{
		"codigo_sku,nombre,categoria,precio,stock",
		"MC-1001,Booster Pack Alfa,Cartas,5990,10",
		"MC-1002,Booster Pack Beta,Cartas,6990,0",
	}, "\n")

	resumen, err := svc.Importar(context.Background(), uuid.New(), strings.NewReader(archivo), "productos.csv")
	require.NoError(t, err)

	assert.Equal(t, 2, resumen.ProductosNuevos)
	assert.Equal(t, 0, resumen.ProductosActualizados)
	assert.Empty(t, resumen.Errores)

	alfa, err := productoRepo.FindBySKU(context.Background(), "MC-1001")
	require.NoError(t, err)
	assert.Equal(t, "Booster Pack Alfa", alfa.Nombre)
	assert.Equal(t, 10, alfa.Stock)

	// Opening ENTRADA only for rows with stock
	require.Len(t, movRepo.movimientos, 1)
	assert.Equal(t, model.MovimientoEntrada, movRepo.movimientos[0].Tipo)
	assert.Equal(t, 10, movRepo.movimientos[0].Cantidad)
	assert.Equal(t, "Importación masiva", movRepo.movimientos[0].Motivo)
}

func TestImportar_SKUExistenteAcumulaStock(t *testing.T) {
	svc, productoRepo, categoriaRepo, movRepo := buildImportacionSvc()
	cartas := seedCategoria(categoriaRepo, "Cartas")
	existente := seedProducto(productoRepo, "Dado de Vida", "MC-0042", 2990, 4)
	existente.CategoriaID = cartas.ID

	archivo := strings.Join([]string{
		"codigo_sku,nombre,categoria,precio,stock",
		"MC-0042,Dado de Vida,Cartas,2990,6",
	}, "\n")

	resumen, err := svc.Importar(context.Background(), uuid.New(), strings.NewReader(archivo), "reposicion.csv")
	require.NoError(t, err)

	assert.Equal(t, 0, resumen.ProductosNuevos)
	assert.Equal(t, 1, resumen.ProductosActualizados)
	assert.Empty(t, resumen.Errores)

	assert.Equal(t, 10, productoRepo.productos[existente.ID].Stock)
	require.Len(t, movRepo.movimientos, 1)
	assert.Equal(t, 4, movRepo.movimientos[0].StockAnterior)
	assert.Equal(t, 10, movRepo.movimientos[0].StockNuevo)
}

func TestImportar_SKUExistenteConOtroNombreRechazado(t *testing.T) {
	svc, productoRepo, categoriaRepo, _ := buildImportacionSvc()
	cartas := seedCategoria(categoriaRepo, "Cartas")
	existente := seedProducto(productoRepo, "Dado de Vida", "MC-0042", 2990, 4)
	existente.CategoriaID = cartas.ID

	archivo := strings.Join([]string{
		"codigo_sku,nombre,categoria,precio,stock",
		"MC-0042,Otro Producto,Cartas,2990,6",
	}, "\n")

	resumen, err := svc.Importar(context.Background(), uuid.New(), strings.NewReader(archivo), "reposicion.csv")
	require.NoError(t, err)

	require.Len(t, resumen.Errores, 1)
	assert.Contains(t, resumen.Errores[0], "ya existe con otro nombre")
	assert.Equal(t, 4, productoRepo.productos[existente.ID].Stock) // untouched
}

func TestImportar_SKUExistenteEnOtraCategoriaRechazado(t *testing.T) {
	svc, productoRepo, categoriaRepo, movRepo := buildImportacionSvc()
	cartas := seedCategoria(categoriaRepo, "Cartas")
	seedCategoria(categoriaRepo, "Accesorios")
	existente := seedProducto(productoRepo, "Dado de Vida", "MC-0042", 2990, 4)
	existente.CategoriaID = cartas.ID

	archivo := strings.Join([]string{
		"codigo_sku,nombre,categoria,precio,stock",
		"MC-0042,Dado de Vida,Accesorios,2990,6",
	}, "\n")

	resumen, err := svc.Importar(context.Background(), uuid.New(), strings.NewReader(archivo), "reposicion.csv")
	require.NoError(t, err)

	assert.Equal(t, 0, resumen.ProductosActualizados)
	require.Len(t, resumen.Errores, 1)
	assert.Contains(t, resumen.Errores[0], "otra categoría")

	// The product keeps its stock and its categoria
	assert.Equal(t, 4, productoRepo.productos[existente.ID].Stock)
	assert.Equal(t, cartas.ID, productoRepo.productos[existente.ID].CategoriaID)
	assert.Empty(t, movRepo.movimientos)
}

func TestImportar_FilaInvalidaNoAbortaElResto(t *testing.T) {
	svc, _, categoriaRepo, _ := buildImportacionSvc()
	seedCategoria(categoriaRepo, "Cartas")

	archivo := strings.Join([]string{
		"codigo_sku,nombre,categoria,precio,stock",
		"MC-1001,Booster Válido,Cartas,5990,3",
		"MC-1002,Sin Precio,Cartas,gratis,1",    // precio inválido
		"MC-1003,Figura Rara,Figuras,19990,2",   // categoría desconocida
		",Carta Sin Código,Cartas,990,5",        // SKU en blanco
	}, "\n")

	resumen, err := svc.Importar(context.Background(), uuid.New(), strings.NewReader(archivo), "mixto.csv")
	require.NoError(t, err)

	assert.Equal(t, 1, resumen.ProductosNuevos)
	require.Len(t, resumen.Errores, 3)
	assert.Contains(t, resumen.Errores[0], "fila 3")
	assert.Contains(t, resumen.Errores[0], "precio inválido")
	assert.Contains(t, resumen.Errores[1], "fila 4")
	assert.Contains(t, resumen.Errores[1], "categoría desconocida")
	assert.Contains(t, resumen.Errores[2], "fila 5")
	assert.Contains(t, resumen.Errores[2], "falta el código SKU")
}

func TestImportar_ColumnaRequeridaAusente(t *testing.T) {
	svc, _, _, _ := buildImportacionSvc()

	casos := []struct {
		nombre string
		header string
	}{
		{"sin precio", "codigo_sku,nombre,categoria,stock"},
		{"sin codigo_sku", "nombre,categoria,precio,stock"},
	}
	for _, caso := range casos {
		t.Run(caso.nombre, func(t *testing.T) {
			archivo := caso.header + "\nMC-0001,Algo,Cartas,5"
			_, err := svc.Importar(context.Background(), uuid.New(), strings.NewReader(archivo), "malo.csv")
			assert.ErrorContains(t, err, "columna requerida ausente")
		})
	}
}

func TestImportar_FormatoNoSoportado(t *testing.T) {
	svc, _, _, _ := buildImportacionSvc()
	_, err := svc.Importar(context.Background(), uuid.New(), strings.NewReader("x"), "productos.pdf")
	assert.ErrorContains(t, err, "formato no soportado")
}

func TestPlantilla_ContieneEncabezadoCanonico(t *testing.T) {
	svc, _, _, _ := buildImportacionSvc()

	f, err := svc.Plantilla()
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Productos")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2) // header + example rows
	assert.Equal(t, []string{
		"codigo_sku", "nombre", "categoria", "subcategoria",
		"descripcion", "precio", "stock", "stock_minimo", "stock_critico",
	}, rows[0])
}
