package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/infra"
	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/repository"
	"github.com/H-Riv/mundo-cartas/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCarritoVacio       = errors.New("el carrito está vacío")
	ErrPagoNoDisponible   = errors.New("el servicio de pago no está disponible, intente más tarde")
	ErrTransicionInvalida = errors.New("transición de estado no permitida")
)

// maxNumeroRetries bounds the unique-violation retry loop when two checkouts
// race for the same daily sequence number.
const maxNumeroRetries = 3

type PedidoService interface {
	IniciarCheckout(ctx context.Context, usuarioID uuid.UUID) (*dto.IniciarCheckoutResponse, error)
	ConfirmarRetorno(ctx context.Context, token string) (*dto.ConfirmarPagoResponse, error)
	GetPedido(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error)
	ListPedidos(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error)
	ListMisPedidos(ctx context.Context, usuarioID uuid.UUID) ([]dto.PedidoResponse, error)
	ActualizarEstado(ctx context.Context, id uuid.UUID, destino model.EstadoPedido) (*dto.PedidoResponse, error)
}

type pedidoService struct {
	repo         repository.PedidoRepository
	carritoRepo  repository.CarritoRepository
	ventaRepo    repository.VentaRepository
	productoRepo repository.ProductoRepository
	inventario   InventarioService
	webpay       *infra.WebpayClient
	cb           *infra.CircuitBreaker
	dispatcher   *worker.Dispatcher
	returnURL    string
}

func NewPedidoService(
	repo repository.PedidoRepository,
	carritoRepo repository.CarritoRepository,
	ventaRepo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	inventario InventarioService,
	webpay *infra.WebpayClient,
	cb *infra.CircuitBreaker,
	dispatcher *worker.Dispatcher,
	returnURL string,
) PedidoService {
	return &pedidoService{
		repo:         repo,
		carritoRepo:  carritoRepo,
		ventaRepo:    ventaRepo,
		productoRepo: productoRepo,
		inventario:   inventario,
		webpay:       webpay,
		cb:           cb,
		dispatcher:   dispatcher,
		returnURL:    returnURL,
	}
}

// ── IniciarCheckout ───────────────────────────────────────────────────────────
// Snapshot the cart into a pendiente pedido and register the transaction with
// the gateway. Stock is NOT reserved here: it is only decremented when the
// payment comes back authorized.

func (s *pedidoService) IniciarCheckout(ctx context.Context, usuarioID uuid.UUID) (*dto.IniciarCheckoutResponse, error) {
	carrito, err := s.carritoRepo.FindConItems(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if len(carrito.Items) == 0 {
		return nil, ErrCarritoVacio
	}

	total := carrito.Total()
	neto, iva := DesglosarIVA(total)

	var pedido model.Pedido
	for intento := 0; ; intento++ {
		numero, err := s.siguienteNumero(ctx)
		if err != nil {
			return nil, err
		}

		pedido = model.Pedido{
			Numero:    numero,
			UsuarioID: usuarioID,
			Estado:    model.PedidoPendiente,
			Neto:      neto,
			IVA:       iva,
			Total:     total,
		}
		for _, item := range carrito.Items {
			if item.Producto == nil {
				continue
			}
			pedido.Items = append(pedido.Items, model.DetallePedido{
				ProductoID:     item.ProductoID,
				Cantidad:       item.Cantidad,
				PrecioUnitario: item.Producto.Precio,
				Subtotal:       item.Producto.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad))),
			})
		}

		err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			return s.repo.Create(ctx, tx, &pedido)
		})
		if err == nil {
			break
		}
		// Another checkout took the same numero — regenerate and retry.
		if errors.Is(err, gorm.ErrDuplicatedKey) && intento < maxNumeroRetries {
			continue
		}
		return nil, err
	}

	// Register with the gateway through the circuit breaker. A failure leaves
	// the pedido pendiente without token; the customer can retry checkout.
	var gwResp *infra.WebpayCrearResponse
	cbErr := s.cb.Execute(func() error {
		resp, err := s.webpay.Crear(ctx, infra.WebpayCrearRequest{
			BuyOrder:  pedido.Numero,
			SessionID: usuarioID.String(),
			Amount:    total.IntPart(),
			ReturnURL: s.returnURL,
		})
		if err != nil {
			return err
		}
		gwResp = resp
		return nil
	})
	if cbErr != nil {
		if errors.Is(cbErr, infra.ErrCircuitOpen) {
			return nil, ErrPagoNoDisponible
		}
		return nil, cbErr
	}

	token := gwResp.Token
	pedido.WebpayToken = &token
	if err := s.repo.Update(ctx, &pedido); err != nil {
		return nil, err
	}

	return &dto.IniciarCheckoutResponse{
		PedidoID:    pedido.ID.String(),
		Numero:      pedido.Numero,
		Total:       total,
		Token:       token,
		RedirectURL: gwResp.URL,
	}, nil
}

// ── ConfirmarRetorno ──────────────────────────────────────────────────────────
// The shopper returns from the payment form with the token. The pedido is
// settled exactly once:
//   - AUTHORIZED: mark pagado, decrement stock (warn-and-continue on
//     shortage), mirror a Venta for reporting, empty the cart, dispatch the
//     boleta job.
//   - anything else: mark cancelado. Stock was never touched.
//
// A token already settled returns the stored result without calling the
// gateway again.

func (s *pedidoService) ConfirmarRetorno(ctx context.Context, token string) (*dto.ConfirmarPagoResponse, error) {
	pedido, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, errors.New("pedido no encontrado para el token")
	}

	if pedido.Estado != model.PedidoPendiente {
		return &dto.ConfirmarPagoResponse{
			Pedido:     *pedidoToResponse(pedido),
			Autorizado: pedido.Estado != model.PedidoCancelado,
		}, nil
	}

	var gwResp *infra.WebpayConfirmarResponse
	cbErr := s.cb.Execute(func() error {
		resp, err := s.webpay.Confirmar(ctx, token)
		if err != nil {
			return err
		}
		gwResp = resp
		return nil
	})
	if cbErr != nil {
		if errors.Is(cbErr, infra.ErrCircuitOpen) {
			return nil, ErrPagoNoDisponible
		}
		return nil, cbErr
	}

	if gwResp.Status != infra.WebpayAuthorized {
		pedido.Estado = model.PedidoCancelado
		if err := s.repo.Update(ctx, pedido); err != nil {
			return nil, err
		}
		return &dto.ConfirmarPagoResponse{
			Pedido:     *pedidoToResponse(pedido),
			Autorizado: false,
		}, nil
	}

	var venta model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ahora := time.Now()
		codigo := gwResp.AuthorizationCode
		tipoPago := gwResp.PaymentTypeCode
		pedido.Estado = model.PedidoPagado
		pedido.CodigoAutorizacion = &codigo
		pedido.TipoPago = &tipoPago
		pedido.FechaPago = &ahora
		if err := s.repo.UpdateTx(tx, pedido); err != nil {
			return err
		}

		for _, item := range pedido.Items {
			prodBefore, err := s.productoRepo.FindByIDTx(tx, item.ProductoID)
			if err != nil {
				return err
			}
			stockAntes := prodBefore.Stock

			// The payment already went through, so a shortage cannot abort
			// the pedido: decrement what exists and leave the rest as a
			// warning for the staff to resolve.
			descuento := item.Cantidad
			if stockAntes < descuento {
				log.Warn().
					Str("pedido", pedido.Numero).
					Str("producto", prodBefore.Nombre).
					Int("stock", stockAntes).
					Int("requerido", item.Cantidad).
					Msg("stock insuficiente al confirmar pago, se descuenta lo disponible")
				descuento = stockAntes
			}
			// A fully drained line moves nothing, so no ledger row either.
			if descuento == 0 {
				continue
			}
			if err := s.productoRepo.UpdateStockTx(tx, item.ProductoID, -descuento); err != nil {
				return err
			}

			pedidoRef := pedido.ID
			mov := &model.MovimientoStock{
				ProductoID:    item.ProductoID,
				Tipo:          model.MovimientoVenta,
				Cantidad:      descuento,
				StockAnterior: stockAntes,
				StockNuevo:    stockAntes - descuento,
				Motivo:        fmt.Sprintf("Pedido %s", pedido.Numero),
				ReferenciaID:  &pedidoRef,
			}
			if err := s.inventario.RegistrarMovimientoTx(tx, mov); err != nil {
				return err
			}
		}

		// Mirror into a Venta so the daily report covers web and POS alike.
		folio, err := s.ventaRepo.NextFolio(ctx, tx)
		if err != nil {
			return err
		}
		pedidoID := pedido.ID
		clienteNombre := ""
		if pedido.Usuario != nil {
			clienteNombre = pedido.Usuario.Nombre
		}
		venta = model.Venta{
			Folio:    folio,
			Estado:   model.VentaCompletada,
			Neto:     pedido.Neto,
			IVA:      pedido.IVA,
			Total:    pedido.Total,
			PedidoID: &pedidoID,
		}
		if clienteNombre != "" {
			venta.ClienteNombre = &clienteNombre
		}
		for _, item := range pedido.Items {
			venta.Items = append(venta.Items, model.DetalleVenta{
				ProductoID:     item.ProductoID,
				Cantidad:       item.Cantidad,
				PrecioUnitario: item.PrecioUnitario,
				Subtotal:       item.Subtotal,
			})
		}
		if err := s.ventaRepo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		// Checkout consumed the cart.
		carrito, err := s.carritoRepo.GetOrCreate(ctx, pedido.UsuarioID)
		if err != nil {
			return err
		}
		return s.carritoRepo.VaciarTx(tx, carrito.ID)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async boleta job (best-effort — fire & forget)
	if s.dispatcher != nil {
		payload := map[string]interface{}{"venta_id": venta.ID.String()}
		if pedido.Usuario != nil && pedido.Usuario.Email != nil && *pedido.Usuario.Email != "" {
			payload["cliente_email"] = *pedido.Usuario.Email
		}
		_ = s.dispatcher.EnqueueBoleta(ctx, payload)
	}

	return &dto.ConfirmarPagoResponse{
		Pedido:     *pedidoToResponse(pedido),
		Autorizado: true,
		FolioVenta: venta.Folio,
	}, nil
}

// siguienteNumero builds the next PED-YYYYMMDD-NNNN for today by parsing the
// most recent numero with today's prefix.
func (s *pedidoService) siguienteNumero(ctx context.Context) (string, error) {
	prefijo := "PED-" + time.Now().Format("20060102") + "-"
	ultimo, err := s.repo.UltimoNumeroConPrefijo(ctx, nil, prefijo)
	if err != nil {
		return "", err
	}
	siguiente := 1
	if ultimo != "" {
		sufijo := strings.TrimPrefix(ultimo, prefijo)
		if n, err := strconv.Atoi(sufijo); err == nil {
			siguiente = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefijo, siguiente), nil
}

func (s *pedidoService) GetPedido(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error) {
	pedido, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("pedido no encontrado")
	}
	return pedidoToResponse(pedido), nil
}

func (s *pedidoService) ListPedidos(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	pedidos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PedidoResponse, 0, len(pedidos))
	for _, p := range pedidos {
		items = append(items, *pedidoToResponse(&p))
	}
	return &dto.PedidoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *pedidoService) ListMisPedidos(ctx context.Context, usuarioID uuid.UUID) ([]dto.PedidoResponse, error) {
	pedidos, err := s.repo.ListByUsuario(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PedidoResponse, 0, len(pedidos))
	for _, p := range pedidos {
		items = append(items, *pedidoToResponse(&p))
	}
	return items, nil
}

// ActualizarEstado advances the fulfillment flow (pagado → preparado →
// entregado). Any other jump is rejected.
func (s *pedidoService) ActualizarEstado(ctx context.Context, id uuid.UUID, destino model.EstadoPedido) (*dto.PedidoResponse, error) {
	pedido, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("pedido no encontrado")
	}
	if !pedido.Estado.PuedeTransicionarA(destino) {
		return nil, fmt.Errorf("%w: %s → %s", ErrTransicionInvalida, pedido.Estado, destino)
	}
	pedido.Estado = destino
	if err := s.repo.Update(ctx, pedido); err != nil {
		return nil, err
	}
	return pedidoToResponse(pedido), nil
}

func pedidoToResponse(p *model.Pedido) *dto.PedidoResponse {
	items := make([]dto.DetallePedidoResponse, 0, len(p.Items))
	for _, item := range p.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		items = append(items, dto.DetallePedidoResponse{
			ProductoID:     item.ProductoID.String(),
			Producto:       nombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	resp := &dto.PedidoResponse{
		ID:                 p.ID.String(),
		Numero:             p.Numero,
		Estado:             string(p.Estado),
		Neto:               p.Neto,
		IVA:                p.IVA,
		Total:              p.Total,
		Items:              items,
		CodigoAutorizacion: p.CodigoAutorizacion,
		TipoPago:           p.TipoPago,
		CreatedAt:          p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if p.FechaPago != nil {
		fecha := p.FechaPago.Format("2006-01-02T15:04:05Z")
		resp.FechaPago = &fecha
	}
	return resp
}
