package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ObtenerPorSKU(ctx context.Context, sku string) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
}

type productoService struct {
	repo           repository.ProductoRepository
	categoriaRepo  repository.CategoriaRepository
	movimientoRepo repository.MovimientoStockRepository
	rdb            *redis.Client
}

func NewProductoService(
	repo repository.ProductoRepository,
	categoriaRepo repository.CategoriaRepository,
	movimientoRepo repository.MovimientoStockRepository,
	rdb *redis.Client,
) ProductoService {
	return &productoService{
		repo:           repo,
		categoriaRepo:  categoriaRepo,
		movimientoRepo: movimientoRepo,
		rdb:            rdb,
	}
}

// Crear registers a product with a generated MC-NNNN SKU. When the initial
// stock is positive, the opening ENTRADA ledger row commits in the same
// transaction as the product itself.
func (s *productoService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	catID, err := uuid.Parse(req.CategoriaID)
	if err != nil {
		return nil, fmt.Errorf("categoria_id inválido: %w", err)
	}
	if _, err := s.categoriaRepo.FindByID(ctx, catID); err != nil {
		return nil, errors.New("categoría no encontrada")
	}

	var subID *uuid.UUID
	if req.SubcategoriaID != nil {
		parsed, err := uuid.Parse(*req.SubcategoriaID)
		if err != nil {
			return nil, fmt.Errorf("subcategoria_id inválido: %w", err)
		}
		sub, err := s.categoriaRepo.FindSubcategoriaByID(ctx, parsed)
		if err != nil {
			return nil, errors.New("subcategoría no encontrada")
		}
		if sub.CategoriaID != catID {
			return nil, errors.New("la subcategoría no pertenece a la categoría indicada")
		}
		subID = &parsed
	}

	producto := model.Producto{
		Nombre:         req.Nombre,
		CategoriaID:    catID,
		SubcategoriaID: subID,
		Descripcion:    req.Descripcion,
		Precio:         req.Precio,
		Stock:          req.Stock,
		StockMinimo:    5,
		StockCritico:   2,
		Activo:         true,
	}
	if req.StockMinimo != nil {
		producto.StockMinimo = *req.StockMinimo
	}
	if req.StockCritico != nil {
		producto.StockCritico = *req.StockCritico
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sku, err := s.repo.NextSKU(ctx, tx)
		if err != nil {
			return err
		}
		producto.CodigoSKU = sku

		if err := s.repo.CreateTx(tx, &producto); err != nil {
			return err
		}

		if req.Stock > 0 {
			uid := usuarioID
			mov := &model.MovimientoStock{
				ProductoID:    producto.ID,
				Tipo:          model.MovimientoEntrada,
				Cantidad:      req.Stock,
				StockAnterior: 0,
				StockNuevo:    req.Stock,
				Motivo:        "Stock inicial",
				UsuarioID:     &uid,
			}
			return s.movimientoRepo.CreateTx(tx, mov)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.ObtenerPorID(ctx, producto.ID)
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	return productoToResponse(producto), nil
}

func (s *productoService) ObtenerPorSKU(ctx context.Context, sku string) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	return productoToResponse(producto), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for _, p := range productos {
		items = append(items, *productoToResponse(&p))
	}
	return &dto.ProductoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// Actualizar applies partial updates. Stock is deliberately absent: it only
// changes through the inventario ledger.
func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}

	if req.Nombre != nil {
		producto.Nombre = *req.Nombre
	}
	if req.CategoriaID != nil {
		catID, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, fmt.Errorf("categoria_id inválido: %w", err)
		}
		if _, err := s.categoriaRepo.FindByID(ctx, catID); err != nil {
			return nil, errors.New("categoría no encontrada")
		}
		producto.CategoriaID = catID
		producto.Categoria = nil
	}
	if req.SubcategoriaID != nil {
		subID, err := uuid.Parse(*req.SubcategoriaID)
		if err != nil {
			return nil, fmt.Errorf("subcategoria_id inválido: %w", err)
		}
		sub, err := s.categoriaRepo.FindSubcategoriaByID(ctx, subID)
		if err != nil {
			return nil, errors.New("subcategoría no encontrada")
		}
		if sub.CategoriaID != producto.CategoriaID {
			return nil, errors.New("la subcategoría no pertenece a la categoría indicada")
		}
		producto.SubcategoriaID = &subID
		producto.Subcategoria = nil
	}
	if req.Descripcion != nil {
		producto.Descripcion = req.Descripcion
	}
	precioCambio := false
	if req.Precio != nil && !req.Precio.Equal(producto.Precio) {
		producto.Precio = *req.Precio
		precioCambio = true
	}
	if req.StockMinimo != nil {
		producto.StockMinimo = *req.StockMinimo
	}
	if req.StockCritico != nil {
		producto.StockCritico = *req.StockCritico
	}

	if err := s.repo.Update(ctx, producto); err != nil {
		return nil, err
	}

	if precioCambio {
		s.invalidarPrecioCache(ctx, producto.CodigoSKU)
	}

	return s.ObtenerPorID(ctx, id)
}

// Desactivar hides the product from catalog and POS without losing its
// ledger history.
func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	producto, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("producto no encontrado")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidarPrecioCache(ctx, producto.CodigoSKU)
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, errors.New("producto no encontrado")
	}
	if err := s.repo.Reactivar(ctx, id); err != nil {
		return nil, err
	}
	return s.ObtenerPorID(ctx, id)
}

// invalidarPrecioCache drops the cached public price entry — best effort.
func (s *productoService) invalidarPrecioCache(ctx context.Context, sku string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, "precio:"+sku).Err(); err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("failed to invalidate price cache")
	}
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	categoria := ""
	if p.Categoria != nil {
		categoria = p.Categoria.Nombre
	}
	var subcategoria *string
	if p.Subcategoria != nil {
		subcategoria = &p.Subcategoria.Nombre
	}
	return &dto.ProductoResponse{
		ID:           p.ID.String(),
		CodigoSKU:    p.CodigoSKU,
		Nombre:       p.Nombre,
		Categoria:    categoria,
		Subcategoria: subcategoria,
		Descripcion:  p.Descripcion,
		Precio:       p.Precio,
		Stock:        p.Stock,
		StockMinimo:  p.StockMinimo,
		StockCritico: p.StockCritico,
		EstadoStock:  p.EstadoStock(),
		Activo:       p.Activo,
	}
}
