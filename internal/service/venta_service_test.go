package service_test

import (
	"context"
	"testing"

	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildVentaSvc() (service.VentaService, *stubVentaRepo, *stubProductoRepo, *stubMovimientoRepo) {
	productoRepo := newStubProductoRepo()
	movRepo := &stubMovimientoRepo{}
	ventaRepo := newStubVentaRepo()
	inventarioSvc := service.NewInventarioService(productoRepo, movRepo)

	svc := service.NewVentaService(ventaRepo, productoRepo, inventarioSvc, nil)
	return svc, ventaRepo, productoRepo, movRepo
}

func TestRegistrarVenta_DescuentaStockYGeneraFolio(t *testing.T) {
	svc, ventaRepo, productoRepo, movRepo := buildVentaSvc()
	p := seedProducto(productoRepo, "Booster Pack Alfa", "MC-0001", 5990, 10)

	resp, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, "V-0001", resp.Folio)
	assert.Equal(t, "completada", resp.Estado)
	assert.Equal(t, int64(17970), resp.Total.IntPart())
	assert.True(t, resp.Neto.Add(resp.IVA).Equal(resp.Total))

	// Stock decremented and ledger row appended
	assert.Equal(t, 7, productoRepo.productos[p.ID].Stock)
	require.Len(t, movRepo.movimientos, 1)
	mov := movRepo.movimientos[0]
	assert.Equal(t, model.MovimientoVenta, mov.Tipo)
	assert.Equal(t, 3, mov.Cantidad)
	assert.Equal(t, 10, mov.StockAnterior)
	assert.Equal(t, 7, mov.StockNuevo)
	assert.Equal(t, "Venta V-0001", mov.Motivo)

	// Venta stored
	stored, err := ventaRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
}

func TestRegistrarVenta_StockInsuficienteAborta(t *testing.T) {
	svc, ventaRepo, productoRepo, movRepo := buildVentaSvc()
	p := seedProducto(productoRepo, "Protector Estándar x100", "MC-0002", 3490, 2)

	_, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 5}},
	})
	require.ErrorIs(t, err, service.ErrStockInsuficiente)

	// Nothing committed: no venta, no stock change, no ledger row
	assert.Empty(t, ventaRepo.ventas)
	assert.Equal(t, 2, productoRepo.productos[p.ID].Stock)
	assert.Empty(t, movRepo.movimientos)
}

func TestRegistrarVenta_ProductoInactivoRechazado(t *testing.T) {
	svc, _, productoRepo, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Tapete Dragón", "MC-0003", 12990, 4)
	p.Activo = false

	_, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
	})
	assert.ErrorContains(t, err, "inactivo")
}

func TestAnularVenta_RestauraStock(t *testing.T) {
	svc, ventaRepo, productoRepo, movRepo := buildVentaSvc()
	p := seedProducto(productoRepo, "Deck Inicial", "MC-0004", 9990, 8)

	resp, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, 5, productoRepo.productos[p.ID].Stock)

	err = svc.AnularVenta(context.Background(), uuid.MustParse(resp.ID), uuid.New(), "error de precio")
	require.NoError(t, err)

	// Stock restored, estado anulada
	assert.Equal(t, 8, productoRepo.productos[p.ID].Stock)
	stored, _ := ventaRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	assert.Equal(t, model.VentaAnulada, stored.Estado)

	// Compensating ANULACION row; the original VENTA row is untouched
	require.Len(t, movRepo.movimientos, 2)
	assert.Equal(t, model.MovimientoVenta, movRepo.movimientos[0].Tipo)
	anulacion := movRepo.movimientos[1]
	assert.Equal(t, model.MovimientoAnulacion, anulacion.Tipo)
	assert.Equal(t, 3, anulacion.Cantidad)
	assert.Equal(t, 5, anulacion.StockAnterior)
	assert.Equal(t, 8, anulacion.StockNuevo)
	assert.Contains(t, anulacion.Motivo, "error de precio")
}

func TestAnularVenta_DobleAnulacionRechazada(t *testing.T) {
	svc, _, productoRepo, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Sobre Promo", "MC-0005", 1990, 6)

	resp, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.AnularVenta(context.Background(), uuid.MustParse(resp.ID), uuid.New(), "cliente se arrepintió"))
	err = svc.AnularVenta(context.Background(), uuid.MustParse(resp.ID), uuid.New(), "de nuevo")
	assert.ErrorContains(t, err, "ya está anulada")

	// Stock restored exactly once
	assert.Equal(t, 6, productoRepo.productos[p.ID].Stock)
}

func TestListVentas_FiltraPorEstadoPorDefecto(t *testing.T) {
	svc, _, productoRepo, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Carta Suelta Rara", "MC-0006", 4990, 20)

	r1, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 1}},
	})
	require.NoError(t, err)
	_, err = svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{
		Items: []dto.ItemVentaRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.AnularVenta(context.Background(), uuid.MustParse(r1.ID), uuid.New(), "venta duplicada"))

	list, err := svc.ListVentas(context.Background(), dto.VentaFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total) // anulada excluded by default
}
