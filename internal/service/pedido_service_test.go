package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/H-Riv/mundo-cartas/internal/infra"
	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWebpay emulates the two gateway endpoints the checkout flow touches.
type fakeWebpay struct {
	srv          *httptest.Server
	status       string // what Confirmar will report
	tokenSeq     int
	confirmCalls int
}

func newFakeWebpay() *fakeWebpay {
	f := &fakeWebpay{status: infra.WebpayAuthorized}
	mux := http.NewServeMux()
	mux.HandleFunc("/rswebpaytransaction/api/webpay/v1.2/transactions", func(w http.ResponseWriter, r *http.Request) {
		f.tokenSeq++
		json.NewEncoder(w).Encode(infra.WebpayCrearResponse{
			Token: fmt.Sprintf("tok-%04d", f.tokenSeq),
			URL:   f.srv.URL + "/webpayform",
		})
	})
	mux.HandleFunc("/rswebpaytransaction/api/webpay/v1.2/transactions/", func(w http.ResponseWriter, r *http.Request) {
		f.confirmCalls++
		json.NewEncoder(w).Encode(infra.WebpayConfirmarResponse{
			Status:            f.status,
			AuthorizationCode: "1213",
			PaymentTypeCode:   "VN",
			TransactionDate:   time.Now().Format(time.RFC3339),
		})
	})
	f.srv = httptest.NewServer(mux)
	return f
}

type pedidoEnv struct {
	svc          service.PedidoService
	pedidoRepo   *stubPedidoRepo
	carritoRepo  *stubCarritoRepo
	ventaRepo    *stubVentaRepo
	productoRepo *stubProductoRepo
	movRepo      *stubMovimientoRepo
	gateway      *fakeWebpay
}

func buildPedidoEnv(t *testing.T) *pedidoEnv {
	t.Helper()
	gateway := newFakeWebpay()
	t.Cleanup(gateway.srv.Close)

	productoRepo := newStubProductoRepo()
	movRepo := &stubMovimientoRepo{}
	carritoRepo := newStubCarritoRepo(productoRepo)
	pedidoRepo := newStubPedidoRepo()
	ventaRepo := newStubVentaRepo()
	inventarioSvc := service.NewInventarioService(productoRepo, movRepo)

	webpay := infra.NewWebpayClient(gateway.srv.URL, "597055555532", "test-key")
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	svc := service.NewPedidoService(
		pedidoRepo, carritoRepo, ventaRepo, productoRepo,
		inventarioSvc, webpay, cb, nil, "http://localhost:3000/pago/retorno",
	)
	return &pedidoEnv{
		svc:          svc,
		pedidoRepo:   pedidoRepo,
		carritoRepo:  carritoRepo,
		ventaRepo:    ventaRepo,
		productoRepo: productoRepo,
		movRepo:      movRepo,
		gateway:      gateway,
	}
}

// llenarCarrito puts cantidad units of producto in the user's cart.
func llenarCarrito(t *testing.T, env *pedidoEnv, usuario uuid.UUID, producto *model.Producto, cantidad int) {
	t.Helper()
	carrito, err := env.carritoRepo.GetOrCreate(context.Background(), usuario)
	require.NoError(t, err)
	require.NoError(t, env.carritoRepo.CreateItem(context.Background(), &model.ItemCarrito{
		CarritoID:  carrito.ID,
		ProductoID: producto.ID,
		Cantidad:   cantidad,
	}))
}

func TestIniciarCheckout_CarritoVacio(t *testing.T) {
	env := buildPedidoEnv(t)
	_, err := env.svc.IniciarCheckout(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrCarritoVacio)
}

func TestIniciarCheckout_CongelaPedidoYObtieneToken(t *testing.T) {
	env := buildPedidoEnv(t)
	usuario := uuid.New()
	p := seedProducto(env.productoRepo, "Booster Pack Alfa", "MC-0001", 1000, 5)
	llenarCarrito(t, env, usuario, p, 2)

	resp, err := env.svc.IniciarCheckout(context.Background(), usuario)
	require.NoError(t, err)

	prefijo := "PED-" + time.Now().Format("20060102") + "-"
	assert.Equal(t, prefijo+"0001", resp.Numero)
	assert.Equal(t, int64(2000), resp.Total.IntPart())
	assert.NotEmpty(t, resp.Token)
	assert.Contains(t, resp.RedirectURL, "/webpayform")

	pedido, err := env.pedidoRepo.FindByID(context.Background(), uuid.MustParse(resp.PedidoID))
	require.NoError(t, err)
	assert.Equal(t, model.PedidoPendiente, pedido.Estado)
	require.Len(t, pedido.Items, 1)
	assert.Equal(t, int64(1000), pedido.Items[0].PrecioUnitario.IntPart())
	assert.True(t, pedido.Neto.Add(pedido.IVA).Equal(pedido.Total))

	// Stock is not reserved at checkout
	assert.Equal(t, 5, env.productoRepo.productos[p.ID].Stock)
}

func TestIniciarCheckout_NumeroCorrelativoDelDia(t *testing.T) {
	env := buildPedidoEnv(t)
	prefijo := "PED-" + time.Now().Format("20060102") + "-"
	require.NoError(t, env.pedidoRepo.Create(context.Background(), nil, &model.Pedido{
		Numero:    prefijo + "0007",
		UsuarioID: uuid.New(),
		Estado:    model.PedidoPagado,
	}))

	usuario := uuid.New()
	p := seedProducto(env.productoRepo, "Protector Estándar x100", "MC-0002", 3490, 10)
	llenarCarrito(t, env, usuario, p, 1)

	resp, err := env.svc.IniciarCheckout(context.Background(), usuario)
	require.NoError(t, err)
	assert.Equal(t, prefijo+"0008", resp.Numero)
}

func TestConfirmarRetorno_Autorizado(t *testing.T) {
	env := buildPedidoEnv(t)
	usuario := uuid.New()
	p := seedProducto(env.productoRepo, "Booster Pack Alfa", "MC-0001", 1000, 5)
	llenarCarrito(t, env, usuario, p, 2)

	checkout, err := env.svc.IniciarCheckout(context.Background(), usuario)
	require.NoError(t, err)

	resp, err := env.svc.ConfirmarRetorno(context.Background(), checkout.Token)
	require.NoError(t, err)

	assert.True(t, resp.Autorizado)
	assert.Equal(t, "pagado", resp.Pedido.Estado)
	require.NotNil(t, resp.Pedido.CodigoAutorizacion)
	assert.Equal(t, "1213", *resp.Pedido.CodigoAutorizacion)

	// Now the stock drops, with a VENTA ledger row referencing the pedido
	assert.Equal(t, 3, env.productoRepo.productos[p.ID].Stock)
	require.Len(t, env.movRepo.movimientos, 1)
	mov := env.movRepo.movimientos[0]
	assert.Equal(t, model.MovimientoVenta, mov.Tipo)
	assert.Equal(t, 2, mov.Cantidad)
	assert.Contains(t, mov.Motivo, checkout.Numero)

	// A mirrored venta exists for daily reporting
	assert.Equal(t, "V-0001", resp.FolioVenta)
	require.Len(t, env.ventaRepo.ventas, 1)
	for _, v := range env.ventaRepo.ventas {
		assert.Equal(t, int64(2000), v.Total.IntPart())
		require.NotNil(t, v.PedidoID)
		assert.Equal(t, checkout.PedidoID, v.PedidoID.String())
	}

	// Checkout consumed the cart
	carrito, err := env.carritoRepo.FindConItems(context.Background(), usuario)
	require.NoError(t, err)
	assert.Empty(t, carrito.Items)
}

func TestConfirmarRetorno_RechazadoCancelaSinTocarStock(t *testing.T) {
	env := buildPedidoEnv(t)
	env.gateway.status = infra.WebpayFailed
	usuario := uuid.New()
	p := seedProducto(env.productoRepo, "Tapete Dragón", "MC-0003", 12990, 4)
	llenarCarrito(t, env, usuario, p, 1)

	checkout, err := env.svc.IniciarCheckout(context.Background(), usuario)
	require.NoError(t, err)

	resp, err := env.svc.ConfirmarRetorno(context.Background(), checkout.Token)
	require.NoError(t, err)

	assert.False(t, resp.Autorizado)
	assert.Equal(t, "cancelado", resp.Pedido.Estado)
	assert.Equal(t, 4, env.productoRepo.productos[p.ID].Stock)
	assert.Empty(t, env.movRepo.movimientos)
	assert.Empty(t, env.ventaRepo.ventas)

	// The cart survives a rejected payment
	carrito, err := env.carritoRepo.FindConItems(context.Background(), usuario)
	require.NoError(t, err)
	assert.Len(t, carrito.Items, 1)
}

func TestConfirmarRetorno_Idempotente(t *testing.T) {
	env := buildPedidoEnv(t)
	usuario := uuid.New()
	p := seedProducto(env.productoRepo, "Sobre Promo", "MC-0005", 1990, 10)
	llenarCarrito(t, env, usuario, p, 1)

	checkout, err := env.svc.IniciarCheckout(context.Background(), usuario)
	require.NoError(t, err)

	_, err = env.svc.ConfirmarRetorno(context.Background(), checkout.Token)
	require.NoError(t, err)
	require.Equal(t, 1, env.gateway.confirmCalls)

	// Refreshing the return page must not hit the gateway or move stock again
	resp, err := env.svc.ConfirmarRetorno(context.Background(), checkout.Token)
	require.NoError(t, err)
	assert.True(t, resp.Autorizado)
	assert.Equal(t, 1, env.gateway.confirmCalls)
	assert.Equal(t, 9, env.productoRepo.productos[p.ID].Stock)
	assert.Len(t, env.movRepo.movimientos, 1)
}

func TestConfirmarRetorno_StockInsuficienteDescuentaLoDisponible(t *testing.T) {
	env := buildPedidoEnv(t)
	usuario := uuid.New()
	p := seedProducto(env.productoRepo, "Carta Suelta Rara", "MC-0006", 4990, 5)
	llenarCarrito(t, env, usuario, p, 2)

	checkout, err := env.svc.IniciarCheckout(context.Background(), usuario)
	require.NoError(t, err)

	// A POS sale drained the shelf between checkout and payment
	env.productoRepo.productos[p.ID].Stock = 1

	resp, err := env.svc.ConfirmarRetorno(context.Background(), checkout.Token)
	require.NoError(t, err)

	// The payment went through, so the pedido completes anyway
	assert.True(t, resp.Autorizado)
	assert.Equal(t, 0, env.productoRepo.productos[p.ID].Stock)
	require.Len(t, env.movRepo.movimientos, 1)
	assert.Equal(t, 1, env.movRepo.movimientos[0].Cantidad) // only what existed
	assert.Equal(t, 1, env.movRepo.movimientos[0].StockAnterior)
}

func TestConfirmarRetorno_LineaAgotadaSinMovimiento(t *testing.T) {
	env := buildPedidoEnv(t)
	usuario := uuid.New()
	agotado := seedProducto(env.productoRepo, "Carta Suelta Rara", "MC-0006", 4990, 2)
	disponible := seedProducto(env.productoRepo, "Protector Mate x50", "MC-0007", 2490, 8)
	llenarCarrito(t, env, usuario, agotado, 2)
	llenarCarrito(t, env, usuario, disponible, 3)

	checkout, err := env.svc.IniciarCheckout(context.Background(), usuario)
	require.NoError(t, err)

	// The shelf for one line was emptied before the payment settled
	env.productoRepo.productos[agotado.ID].Stock = 0

	resp, err := env.svc.ConfirmarRetorno(context.Background(), checkout.Token)
	require.NoError(t, err)
	assert.True(t, resp.Autorizado)

	// Only the line that actually moved stock gets a ledger row
	require.Len(t, env.movRepo.movimientos, 1)
	mov := env.movRepo.movimientos[0]
	assert.Equal(t, disponible.ID, mov.ProductoID)
	assert.Equal(t, 3, mov.Cantidad)
	assert.Equal(t, 0, env.productoRepo.productos[agotado.ID].Stock)
	assert.Equal(t, 5, env.productoRepo.productos[disponible.ID].Stock)
}

func TestActualizarEstado_FlujoLineal(t *testing.T) {
	env := buildPedidoEnv(t)
	pedido := &model.Pedido{
		Numero:    "PED-20260901-0001",
		UsuarioID: uuid.New(),
		Estado:    model.PedidoPagado,
	}
	require.NoError(t, env.pedidoRepo.Create(context.Background(), nil, pedido))

	resp, err := env.svc.ActualizarEstado(context.Background(), pedido.ID, model.PedidoPreparado)
	require.NoError(t, err)
	assert.Equal(t, "preparado", resp.Estado)

	resp, err = env.svc.ActualizarEstado(context.Background(), pedido.ID, model.PedidoEntregado)
	require.NoError(t, err)
	assert.Equal(t, "entregado", resp.Estado)

	// No transitions out of entregado, and no going backwards
	_, err = env.svc.ActualizarEstado(context.Background(), pedido.ID, model.PedidoPagado)
	assert.ErrorIs(t, err, service.ErrTransicionInvalida)
}

func TestActualizarEstado_PendienteNoSePrepara(t *testing.T) {
	env := buildPedidoEnv(t)
	pedido := &model.Pedido{
		Numero:    "PED-20260901-0002",
		UsuarioID: uuid.New(),
		Estado:    model.PedidoPendiente,
	}
	require.NoError(t, env.pedidoRepo.Create(context.Background(), nil, pedido))

	_, err := env.svc.ActualizarEstado(context.Background(), pedido.ID, model.PedidoPreparado)
	assert.ErrorIs(t, err, service.ErrTransicionInvalida)
}
