package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/repository"
	"github.com/H-Riv/mundo-cartas/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, id, usuarioID uuid.UUID, motivo string) error
	GetVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	inventario   InventarioService
	dispatcher   *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	inventario InventarioService,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		inventario:   inventario,
		dispatcher:   dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// POS sale, fully ACID:
//   1. Resolve each product, reject inactive ones
//   2. Pre-flight stock check — any shortage aborts the whole sale
//   3. Compute total and decompose neto/IVA
//   4. BEGIN TX: nextval folio, create venta+items, descontar stock,
//      append VENTA ledger rows
//   5. COMMIT
//   6. (async) dispatch boleta job for PDF + optional email

func (s *ventaService) RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	type resolvedItem struct {
		productoID uuid.UUID
		nombre     string
		precio     decimal.Decimal
		cantidad   int
		subtotal   decimal.Decimal
	}

	var resolved []resolvedItem
	total := decimal.Zero

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %w", err)
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("producto %s no encontrado", item.ProductoID)
		}
		if !p.Activo {
			return nil, fmt.Errorf("producto %s está inactivo y no puede venderse", p.Nombre)
		}
		if p.Stock < item.Cantidad {
			return nil, fmt.Errorf("%w: %s tiene %d unidades, se requieren %d", ErrStockInsuficiente, p.Nombre, p.Stock, item.Cantidad)
		}
		lineSubtotal := p.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		total = total.Add(lineSubtotal)
		resolved = append(resolved, resolvedItem{
			productoID: pid,
			nombre:     p.Nombre,
			precio:     p.Precio,
			cantidad:   item.Cantidad,
			subtotal:   lineSubtotal,
		})
	}

	neto, iva := DesglosarIVA(total)

	var venta model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		folio, err := s.repo.NextFolio(ctx, tx)
		if err != nil {
			return err
		}

		uid := usuarioID
		venta = model.Venta{
			Folio:         folio,
			Estado:        model.VentaCompletada,
			Neto:          neto,
			IVA:           iva,
			Total:         total,
			ClienteNombre: req.ClienteNombre,
			Observaciones: req.Observaciones,
			UsuarioID:     &uid,
		}
		for _, r := range resolved {
			venta.Items = append(venta.Items, model.DetalleVenta{
				ProductoID:     r.productoID,
				Cantidad:       r.cantidad,
				PrecioUnitario: r.precio,
				Subtotal:       r.subtotal,
			})
		}

		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		for _, r := range resolved {
			// Re-read inside the tx: the pre-flight stock may be stale under
			// concurrent sales, and the ledger needs the exact before value.
			prodBefore, err := s.productoRepo.FindByIDTx(tx, r.productoID)
			stockAntes := 0
			if err == nil && prodBefore != nil {
				stockAntes = prodBefore.Stock
			}

			if err := s.inventario.DescontarStockTx(tx, r.productoID, r.cantidad); err != nil {
				return fmt.Errorf("error descontando stock de %s: %w", r.nombre, err)
			}

			ventaRef := venta.ID
			mov := &model.MovimientoStock{
				ProductoID:    r.productoID,
				Tipo:          model.MovimientoVenta,
				Cantidad:      r.cantidad,
				StockAnterior: stockAntes,
				StockNuevo:    stockAntes - r.cantidad,
				Motivo:        fmt.Sprintf("Venta %s", venta.Folio),
				ReferenciaID:  &ventaRef,
				UsuarioID:     &uid,
			}
			if err := s.inventario.RegistrarMovimientoTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async boleta job (best-effort — fire & forget)
	if s.dispatcher != nil {
		payload := map[string]interface{}{
			"venta_id": venta.ID.String(),
		}
		if req.ClienteEmail != nil && *req.ClienteEmail != "" {
			payload["cliente_email"] = *req.ClienteEmail
		}
		_ = s.dispatcher.EnqueueBoleta(ctx, payload)
	}

	resp := ventaToResponse(&venta)
	for i, r := range resolved {
		resp.Items[i].Producto = r.nombre
	}
	return resp, nil
}

// ── AnularVenta ───────────────────────────────────────────────────────────────
// Voiding restores stock through compensating ANULACION ledger rows; the
// original VENTA rows are never touched. A second void of the same venta
// is rejected.

func (s *ventaService) AnularVenta(ctx context.Context, id, usuarioID uuid.UUID, motivo string) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("venta no encontrada")
	}
	if venta.Estado == model.VentaAnulada {
		return errors.New("la venta ya está anulada")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, item := range venta.Items {
			prodBefore, err := s.productoRepo.FindByIDTx(tx, item.ProductoID)
			stockAntes := 0
			if err == nil && prodBefore != nil {
				stockAntes = prodBefore.Stock
			}

			if err := s.productoRepo.UpdateStockTx(tx, item.ProductoID, item.Cantidad); err != nil {
				return err
			}

			ventaRef := venta.ID
			uid := usuarioID
			mov := &model.MovimientoStock{
				ProductoID:    item.ProductoID,
				Tipo:          model.MovimientoAnulacion,
				Cantidad:      item.Cantidad,
				StockAnterior: stockAntes,
				StockNuevo:    stockAntes + item.Cantidad,
				Motivo:        fmt.Sprintf("Anulación venta %s — %s", venta.Folio, motivo),
				ReferenciaID:  &ventaRef,
				UsuarioID:     &uid,
			}
			if err := s.inventario.RegistrarMovimientoTx(tx, mov); err != nil {
				return err
			}
		}
		return s.repo.UpdateEstadoTx(tx, id, model.VentaAnulada)
	})
}

func (s *ventaService) GetVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("venta no encontrada")
	}
	return ventaToResponse(venta), nil
}

// ListVentas returns a paginated list of sales, filtered by date and estado.
// Default filter: today's completed sales.
func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Estado == "" {
		filter.Estado = string(model.VentaCompletada)
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for _, v := range ventas {
		items = append(items, *ventaToResponse(&v))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		items = append(items, dto.ItemVentaResponse{
			Producto:       nombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	return &dto.VentaResponse{
		ID:            v.ID.String(),
		Folio:         v.Folio,
		Estado:        string(v.Estado),
		Items:         items,
		Neto:          v.Neto,
		IVA:           v.IVA,
		Total:         v.Total,
		ClienteNombre: v.ClienteNombre,
		CreatedAt:     v.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
