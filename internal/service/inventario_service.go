package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrStockInsuficiente = errors.New("stock insuficiente")
	ErrAjusteSoloAdmin   = errors.New("solo un administrador puede realizar ajustes de inventario")
)

// InventarioService owns the stock ledger: every change to Producto.Stock
// goes through here so a MovimientoStock row is always written alongside.
type InventarioService interface {
	AjustarStock(ctx context.Context, productoID, usuarioID uuid.UUID, rol model.Rol, req dto.AjustarStockRequest) (*dto.AjustarStockResponse, error)
	ListMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	Resumen(ctx context.Context) (*dto.ResumenInventarioResponse, error)
	Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error)

	// DescontarStockTx decrements stock inside an open sale transaction.
	// Fails if the product would go negative.
	DescontarStockTx(tx *gorm.DB, productoID uuid.UUID, cantidad int) error
	// RegistrarMovimientoTx appends a ledger row inside an open transaction.
	RegistrarMovimientoTx(tx *gorm.DB, mov *model.MovimientoStock) error
}

type inventarioService struct {
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
}

func NewInventarioService(
	productoRepo repository.ProductoRepository,
	movimientoRepo repository.MovimientoStockRepository,
) InventarioService {
	return &inventarioService{productoRepo: productoRepo, movimientoRepo: movimientoRepo}
}

// AjustarStock applies a manual ENTRADA, SALIDA or AJUSTE movement.
// ENTRADA/SALIDA shift the stock by cantidad; AJUSTE sets it to cantidad
// directly and is restricted to administrators. The product row and the
// ledger row commit atomically.
func (s *inventarioService) AjustarStock(ctx context.Context, productoID, usuarioID uuid.UUID, rol model.Rol, req dto.AjustarStockRequest) (*dto.AjustarStockResponse, error) {
	tipo := model.TipoMovimiento(req.Tipo)
	if tipo == model.MovimientoAjuste && !rol.PuedeAjustarInventario() {
		return nil, ErrAjusteSoloAdmin
	}

	producto, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}

	stockAnterior := producto.Stock
	cantidad := req.Cantidad
	var stockNuevo int
	switch tipo {
	case model.MovimientoEntrada:
		stockNuevo = stockAnterior + req.Cantidad
	case model.MovimientoSalida:
		stockNuevo = stockAnterior - req.Cantidad
		if stockNuevo < 0 {
			return nil, fmt.Errorf("%w: stock actual %d, salida solicitada %d", ErrStockInsuficiente, stockAnterior, req.Cantidad)
		}
	case model.MovimientoAjuste:
		// req.Cantidad is the absolute count; the ledger records how far it
		// moved the stock.
		stockNuevo = req.Cantidad
		cantidad = stockNuevo - stockAnterior
		if cantidad < 0 {
			cantidad = -cantidad
		}
	default:
		return nil, fmt.Errorf("tipo de movimiento no permitido: %s", req.Tipo)
	}

	uid := usuarioID
	mov := &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          tipo,
		Cantidad:      cantidad,
		StockAnterior: stockAnterior,
		StockNuevo:    stockNuevo,
		Motivo:        req.Motivo,
		Observaciones: req.Observaciones,
		UsuarioID:     &uid,
	}

	txErr := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		if err := s.productoRepo.SetStockTx(tx, productoID, stockNuevo); err != nil {
			return err
		}
		return s.movimientoRepo.CreateTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	producto.Stock = stockNuevo
	return &dto.AjustarStockResponse{
		ProductoID:    productoID.String(),
		StockAnterior: stockAnterior,
		StockNuevo:    stockNuevo,
		EstadoStock:   producto.EstadoStock(),
	}, nil
}

func (s *inventarioService) DescontarStockTx(tx *gorm.DB, productoID uuid.UUID, cantidad int) error {
	producto, err := s.productoRepo.FindByIDTx(tx, productoID)
	if err != nil {
		return err
	}
	if producto.Stock < cantidad {
		return fmt.Errorf("%w: %s tiene %d unidades, se requieren %d", ErrStockInsuficiente, producto.Nombre, producto.Stock, cantidad)
	}
	return s.productoRepo.UpdateStockTx(tx, productoID, -cantidad)
}

func (s *inventarioService) RegistrarMovimientoTx(tx *gorm.DB, mov *model.MovimientoStock) error {
	return s.movimientoRepo.CreateTx(tx, mov)
}

func (s *inventarioService) ListMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	movimientos, total, err := s.movimientoRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovimientoResponse, 0, len(movimientos))
	for _, m := range movimientos {
		sku := ""
		if m.Producto != nil {
			sku = m.Producto.CodigoSKU
		}
		items = append(items, dto.MovimientoResponse{
			ID:            m.ID.String(),
			ProductoID:    m.ProductoID.String(),
			CodigoSKU:     sku,
			Tipo:          string(m.Tipo),
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			Observaciones: m.Observaciones,
			CreatedAt:     m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return &dto.MovimientoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// Resumen aggregates the dashboard header counters over active products.
func (s *inventarioService) Resumen(ctx context.Context) (*dto.ResumenInventarioResponse, error) {
	productos, err := s.productoRepo.ListActivos(ctx)
	if err != nil {
		return nil, err
	}
	resumen := &dto.ResumenInventarioResponse{TotalProductos: int64(len(productos))}
	for _, p := range productos {
		resumen.TotalUnidades += int64(p.Stock)
		switch p.EstadoStock() {
		case model.StockBajo:
			resumen.StockBajo++
		case model.StockCritico:
			resumen.StockCritico++
		}
	}
	return resumen, nil
}

// Alertas lists active products at or below their minimum threshold,
// critical first.
func (s *inventarioService) Alertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productoRepo.ListActivos(ctx)
	if err != nil {
		return nil, err
	}
	alertas := make([]dto.AlertaStockResponse, 0)
	for _, p := range productos {
		estado := p.EstadoStock()
		if estado == model.StockOK {
			continue
		}
		alertas = append(alertas, dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			CodigoSKU:   p.CodigoSKU,
			Nombre:      p.Nombre,
			Stock:       p.Stock,
			StockMinimo: p.StockMinimo,
			Estado:      estado,
		})
	}
	// Critical products surface before merely-low ones.
	ordered := make([]dto.AlertaStockResponse, 0, len(alertas))
	for _, a := range alertas {
		if a.Estado == model.StockCritico {
			ordered = append(ordered, a)
		}
	}
	for _, a := range alertas {
		if a.Estado != model.StockCritico {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}
