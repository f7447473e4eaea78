package service_test

import (
	"context"
	"testing"

	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCarritoSvc() (service.CarritoService, *stubCarritoRepo, *stubProductoRepo) {
	productoRepo := newStubProductoRepo()
	carritoRepo := newStubCarritoRepo(productoRepo)
	return service.NewCarritoService(carritoRepo, productoRepo), carritoRepo, productoRepo
}

func TestAgregarItem_AcumulaLineaExistente(t *testing.T) {
	svc, _, productoRepo := buildCarritoSvc()
	p := seedProducto(productoRepo, "Booster Pack Alfa", "MC-0001", 5990, 10)
	usuario := uuid.New()

	_, err := svc.AgregarItem(context.Background(), usuario, dto.AgregarItemRequest{
		ProductoID: p.ID.String(),
		Cantidad:   2,
	})
	require.NoError(t, err)

	carrito, err := svc.AgregarItem(context.Background(), usuario, dto.AgregarItemRequest{
		ProductoID: p.ID.String(),
		Cantidad:   3,
	})
	require.NoError(t, err)

	// One line with the summed quantity, not two lines
	require.Len(t, carrito.Items, 1)
	assert.Equal(t, 5, carrito.Items[0].Cantidad)
	assert.Equal(t, 5, carrito.CantidadItems)
	assert.Equal(t, int64(29950), carrito.Total.IntPart())
}

func TestAgregarItem_CantidadPorDefectoUno(t *testing.T) {
	svc, _, productoRepo := buildCarritoSvc()
	p := seedProducto(productoRepo, "Protector Estándar x100", "MC-0002", 3490, 10)

	carrito, err := svc.AgregarItem(context.Background(), uuid.New(), dto.AgregarItemRequest{
		ProductoID: p.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, carrito.Items, 1)
	assert.Equal(t, 1, carrito.Items[0].Cantidad)
}

func TestAgregarItem_NoExcedeStock(t *testing.T) {
	svc, _, productoRepo := buildCarritoSvc()
	p := seedProducto(productoRepo, "Tapete Dragón", "MC-0003", 12990, 3)
	usuario := uuid.New()

	_, err := svc.AgregarItem(context.Background(), usuario, dto.AgregarItemRequest{
		ProductoID: p.ID.String(),
		Cantidad:   3,
	})
	require.NoError(t, err)

	// One more would exceed the 3 available
	_, err = svc.AgregarItem(context.Background(), usuario, dto.AgregarItemRequest{
		ProductoID: p.ID.String(),
		Cantidad:   1,
	})
	assert.ErrorIs(t, err, service.ErrStockInsuficiente)
}

func TestAgregarItem_ProductoInactivoRechazado(t *testing.T) {
	svc, _, productoRepo := buildCarritoSvc()
	p := seedProducto(productoRepo, "Deck Descatalogado", "MC-0004", 9990, 5)
	p.Activo = false

	_, err := svc.AgregarItem(context.Background(), uuid.New(), dto.AgregarItemRequest{
		ProductoID: p.ID.String(),
		Cantidad:   1,
	})
	assert.ErrorContains(t, err, "no está disponible")
}

func TestActualizarCantidad_RespetaStock(t *testing.T) {
	svc, _, productoRepo := buildCarritoSvc()
	p := seedProducto(productoRepo, "Sobre Promo", "MC-0005", 1990, 4)
	usuario := uuid.New()

	carrito, err := svc.AgregarItem(context.Background(), usuario, dto.AgregarItemRequest{
		ProductoID: p.ID.String(),
		Cantidad:   1,
	})
	require.NoError(t, err)
	itemID := uuid.MustParse(carrito.Items[0].ID)

	carrito, err = svc.ActualizarCantidad(context.Background(), usuario, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, carrito.Items[0].Cantidad)

	_, err = svc.ActualizarCantidad(context.Background(), usuario, itemID, 5)
	assert.ErrorIs(t, err, service.ErrStockInsuficiente)
}

func TestEliminarItem_DeOtroUsuarioRechazado(t *testing.T) {
	svc, _, productoRepo := buildCarritoSvc()
	p := seedProducto(productoRepo, "Carta Suelta Rara", "MC-0006", 4990, 9)
	duenno := uuid.New()

	carrito, err := svc.AgregarItem(context.Background(), duenno, dto.AgregarItemRequest{
		ProductoID: p.ID.String(),
		Cantidad:   1,
	})
	require.NoError(t, err)
	itemID := uuid.MustParse(carrito.Items[0].ID)

	// Another user cannot touch the line; the error does not reveal that
	// the item exists.
	_, err = svc.EliminarItem(context.Background(), uuid.New(), itemID)
	assert.ErrorContains(t, err, "item no encontrado")

	// Owner can
	carrito, err = svc.EliminarItem(context.Background(), duenno, itemID)
	require.NoError(t, err)
	assert.Empty(t, carrito.Items)
}

func TestVaciar(t *testing.T) {
	svc, _, productoRepo := buildCarritoSvc()
	p1 := seedProducto(productoRepo, "Booster A", "MC-0007", 5990, 10)
	p2 := seedProducto(productoRepo, "Booster B", "MC-0008", 6990, 10)
	usuario := uuid.New()

	_, err := svc.AgregarItem(context.Background(), usuario, dto.AgregarItemRequest{ProductoID: p1.ID.String(), Cantidad: 2})
	require.NoError(t, err)
	_, err = svc.AgregarItem(context.Background(), usuario, dto.AgregarItemRequest{ProductoID: p2.ID.String(), Cantidad: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Vaciar(context.Background(), usuario))

	carrito, err := svc.GetCarrito(context.Background(), usuario)
	require.NoError(t, err)
	assert.Empty(t, carrito.Items)
	assert.True(t, carrito.Total.IsZero())
}
