package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CarritoService manages the per-customer cart. Adding the same product
// twice accumulates the line instead of duplicating it, and no line may
// exceed the available stock.
type CarritoService interface {
	GetCarrito(ctx context.Context, usuarioID uuid.UUID) (*dto.CarritoResponse, error)
	AgregarItem(ctx context.Context, usuarioID uuid.UUID, req dto.AgregarItemRequest) (*dto.CarritoResponse, error)
	ActualizarCantidad(ctx context.Context, usuarioID, itemID uuid.UUID, cantidad int) (*dto.CarritoResponse, error)
	EliminarItem(ctx context.Context, usuarioID, itemID uuid.UUID) (*dto.CarritoResponse, error)
	Vaciar(ctx context.Context, usuarioID uuid.UUID) error
}

type carritoService struct {
	repo         repository.CarritoRepository
	productoRepo repository.ProductoRepository
}

func NewCarritoService(repo repository.CarritoRepository, productoRepo repository.ProductoRepository) CarritoService {
	return &carritoService{repo: repo, productoRepo: productoRepo}
}

func (s *carritoService) GetCarrito(ctx context.Context, usuarioID uuid.UUID) (*dto.CarritoResponse, error) {
	carrito, err := s.repo.FindConItems(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	return carritoToResponse(carrito), nil
}

func (s *carritoService) AgregarItem(ctx context.Context, usuarioID uuid.UUID, req dto.AgregarItemRequest) (*dto.CarritoResponse, error) {
	pid, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("producto_id inválido: %w", err)
	}
	cantidad := req.Cantidad
	if cantidad == 0 {
		cantidad = 1
	}

	producto, err := s.productoRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	if !producto.Activo {
		return nil, errors.New("el producto no está disponible")
	}

	carrito, err := s.repo.GetOrCreate(ctx, usuarioID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindItem(ctx, carrito.ID, pid)
	switch {
	case err == nil:
		// Existing line — accumulate.
		nueva := item.Cantidad + cantidad
		if nueva > producto.Stock {
			return nil, fmt.Errorf("%w: %s tiene %d unidades disponibles", ErrStockInsuficiente, producto.Nombre, producto.Stock)
		}
		item.Cantidad = nueva
		if err := s.repo.UpdateItem(ctx, item); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if cantidad > producto.Stock {
			return nil, fmt.Errorf("%w: %s tiene %d unidades disponibles", ErrStockInsuficiente, producto.Nombre, producto.Stock)
		}
		nuevo := &model.ItemCarrito{
			CarritoID:  carrito.ID,
			ProductoID: pid,
			Cantidad:   cantidad,
		}
		if err := s.repo.CreateItem(ctx, nuevo); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.GetCarrito(ctx, usuarioID)
}

func (s *carritoService) ActualizarCantidad(ctx context.Context, usuarioID, itemID uuid.UUID, cantidad int) (*dto.CarritoResponse, error) {
	if cantidad < 1 {
		return nil, errors.New("la cantidad debe ser al menos 1")
	}
	item, err := s.itemDelUsuario(ctx, usuarioID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Producto != nil && cantidad > item.Producto.Stock {
		return nil, fmt.Errorf("%w: %s tiene %d unidades disponibles", ErrStockInsuficiente, item.Producto.Nombre, item.Producto.Stock)
	}
	item.Cantidad = cantidad
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return s.GetCarrito(ctx, usuarioID)
}

func (s *carritoService) EliminarItem(ctx context.Context, usuarioID, itemID uuid.UUID) (*dto.CarritoResponse, error) {
	if _, err := s.itemDelUsuario(ctx, usuarioID, itemID); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.GetCarrito(ctx, usuarioID)
}

func (s *carritoService) Vaciar(ctx context.Context, usuarioID uuid.UUID) error {
	carrito, err := s.repo.GetOrCreate(ctx, usuarioID)
	if err != nil {
		return err
	}
	return s.repo.Vaciar(ctx, carrito.ID)
}

// itemDelUsuario loads the item and verifies it belongs to the caller's cart.
func (s *carritoService) itemDelUsuario(ctx context.Context, usuarioID, itemID uuid.UUID) (*model.ItemCarrito, error) {
	carrito, err := s.repo.GetOrCreate(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, errors.New("item no encontrado")
	}
	if item.CarritoID != carrito.ID {
		return nil, errors.New("item no encontrado")
	}
	return item, nil
}

func carritoToResponse(c *model.Carrito) *dto.CarritoResponse {
	items := make([]dto.ItemCarritoResponse, 0, len(c.Items))
	for _, item := range c.Items {
		r := dto.ItemCarritoResponse{
			ID:         item.ID.String(),
			ProductoID: item.ProductoID.String(),
			Cantidad:   item.Cantidad,
		}
		if item.Producto != nil {
			r.CodigoSKU = item.Producto.CodigoSKU
			r.Nombre = item.Producto.Nombre
			r.PrecioUnitario = item.Producto.Precio
			r.Subtotal = item.Producto.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad)))
			r.StockDisponible = item.Producto.Stock
		}
		items = append(items, r)
	}
	return &dto.CarritoResponse{
		ID:            c.ID.String(),
		Items:         items,
		CantidadItems: c.CantidadItems(),
		Total:         c.Total(),
	}
}
