package service_test

import (
	"context"
	"fmt"

	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductoRepo is an in-memory ProductoRepository for testing.
type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
	porSKU    map[string]*model.Producto
	skuSeq    int
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{
		productos: make(map[uuid.UUID]*model.Producto),
		porSKU:    make(map[string]*model.Producto),
	}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	r.porSKU[p.CodigoSKU] = p
	return nil
}

func (r *stubProductoRepo) CreateTx(_ *gorm.DB, p *model.Producto) error {
	return r.Create(context.Background(), p)
}

func (r *stubProductoRepo) CreateBatch(_ context.Context, productos []*model.Producto) error {
	for _, p := range productos {
		if err := r.Create(context.Background(), p); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductoRepo) FindBySKU(_ context.Context, sku string) (*model.Producto, error) {
	p, ok := r.porSKU[sku]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) ListActivos(_ context.Context) ([]model.Producto, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		if p.Activo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	r.porSKU[p.CodigoSKU] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = true
	return nil
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += delta
	return nil
}

func (r *stubProductoRepo) SetStockTx(_ *gorm.DB, id uuid.UUID, stock int) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = stock
	return nil
}

func (r *stubProductoRepo) NextSKU(_ context.Context, _ *gorm.DB) (string, error) {
	r.skuSeq++
	return fmt.Sprintf("MC-%04d", r.skuSeq), nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

func seedProducto(repo *stubProductoRepo, nombre, sku string, precio int64, stock int) *model.Producto {
	p := &model.Producto{
		ID:           uuid.New(),
		CodigoSKU:    sku,
		Nombre:       nombre,
		CategoriaID:  uuid.New(),
		Precio:       decimal.NewFromInt(precio),
		Stock:        stock,
		StockMinimo:  5,
		StockCritico: 2,
		Activo:       true,
	}
	repo.productos[p.ID] = p
	repo.porSKU[p.CodigoSKU] = p
	return p
}

// stubMovimientoRepo captures ledger rows for assertion.
type stubMovimientoRepo struct {
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoRepo) Create(_ context.Context, m *model.MovimientoStock) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	return r.Create(context.Background(), m)
}

func (r *stubMovimientoRepo) List(_ context.Context, _ dto.MovimientoFilter) ([]model.MovimientoStock, int64, error) {
	return r.movimientos, int64(len(r.movimientos)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

// stubVentaRepo is an in-memory VentaRepository with a folio sequence.
type stubVentaRepo struct {
	ventas   map[uuid.UUID]*model.Venta
	folioSeq int
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado model.EstadoVenta) error {
	v, ok := r.ventas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Estado = estado
	return nil
}

func (r *stubVentaRepo) NextFolio(_ context.Context, _ *gorm.DB) (string, error) {
	r.folioSeq++
	return fmt.Sprintf("V-%04d", r.folioSeq), nil
}

func (r *stubVentaRepo) List(_ context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	out := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		if filter.Estado != "" && filter.Estado != "all" && string(v.Estado) != filter.Estado {
			continue
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// stubPedidoRepo is an in-memory PedidoRepository. Insertion order is kept so
// UltimoNumeroConPrefijo can mimic the most-recent-first query.
type stubPedidoRepo struct {
	pedidos map[uuid.UUID]*model.Pedido
	orden   []uuid.UUID
}

func newStubPedidoRepo() *stubPedidoRepo {
	return &stubPedidoRepo{pedidos: make(map[uuid.UUID]*model.Pedido)}
}

func (r *stubPedidoRepo) Create(_ context.Context, _ *gorm.DB, p *model.Pedido) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for _, id := range r.orden {
		if r.pedidos[id].Numero == p.Numero {
			return gorm.ErrDuplicatedKey
		}
	}
	r.pedidos[p.ID] = p
	r.orden = append(r.orden, p.ID)
	return nil
}

func (r *stubPedidoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPedidoRepo) FindByToken(_ context.Context, token string) (*model.Pedido, error) {
	for _, p := range r.pedidos {
		if p.WebpayToken != nil && *p.WebpayToken == token {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPedidoRepo) UltimoNumeroConPrefijo(_ context.Context, _ *gorm.DB, prefijo string) (string, error) {
	for i := len(r.orden) - 1; i >= 0; i-- {
		p := r.pedidos[r.orden[i]]
		if len(p.Numero) >= len(prefijo) && p.Numero[:len(prefijo)] == prefijo {
			return p.Numero, nil
		}
	}
	return "", nil
}

func (r *stubPedidoRepo) Update(_ context.Context, p *model.Pedido) error {
	r.pedidos[p.ID] = p
	return nil
}

func (r *stubPedidoRepo) UpdateTx(_ *gorm.DB, p *model.Pedido) error {
	return r.Update(context.Background(), p)
}

func (r *stubPedidoRepo) List(_ context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	out := make([]model.Pedido, 0, len(r.pedidos))
	for _, id := range r.orden {
		p := r.pedidos[id]
		if filter.Estado != "" && filter.Estado != "all" && string(p.Estado) != filter.Estado {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPedidoRepo) ListByUsuario(_ context.Context, usuarioID uuid.UUID) ([]model.Pedido, error) {
	out := make([]model.Pedido, 0)
	for _, id := range r.orden {
		if p := r.pedidos[id]; p.UsuarioID == usuarioID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPedidoRepo) DB() *gorm.DB { return nil }

var _ repository.PedidoRepository = (*stubPedidoRepo)(nil)

// stubCarritoRepo keeps carts and items in memory, resolving each item's
// Producto from the shared stubProductoRepo.
type stubCarritoRepo struct {
	productoRepo *stubProductoRepo
	carritos     map[uuid.UUID]*model.Carrito // by usuarioID
	items        map[uuid.UUID]*model.ItemCarrito
}

func newStubCarritoRepo(productoRepo *stubProductoRepo) *stubCarritoRepo {
	return &stubCarritoRepo{
		productoRepo: productoRepo,
		carritos:     make(map[uuid.UUID]*model.Carrito),
		items:        make(map[uuid.UUID]*model.ItemCarrito),
	}
}

func (r *stubCarritoRepo) GetOrCreate(_ context.Context, usuarioID uuid.UUID) (*model.Carrito, error) {
	if c, ok := r.carritos[usuarioID]; ok {
		return c, nil
	}
	c := &model.Carrito{ID: uuid.New(), UsuarioID: usuarioID}
	r.carritos[usuarioID] = c
	return c, nil
}

func (r *stubCarritoRepo) FindConItems(ctx context.Context, usuarioID uuid.UUID) (*model.Carrito, error) {
	c, err := r.GetOrCreate(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	loaded := *c
	loaded.Items = nil
	for _, item := range r.items {
		if item.CarritoID != c.ID {
			continue
		}
		withProducto := *item
		withProducto.Producto = r.productoRepo.productos[item.ProductoID]
		loaded.Items = append(loaded.Items, withProducto)
	}
	return &loaded, nil
}

func (r *stubCarritoRepo) FindItem(_ context.Context, carritoID, productoID uuid.UUID) (*model.ItemCarrito, error) {
	for _, item := range r.items {
		if item.CarritoID == carritoID && item.ProductoID == productoID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCarritoRepo) FindItemByID(_ context.Context, itemID uuid.UUID) (*model.ItemCarrito, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	withProducto := *item
	withProducto.Producto = r.productoRepo.productos[item.ProductoID]
	return &withProducto, nil
}

func (r *stubCarritoRepo) CreateItem(_ context.Context, item *model.ItemCarrito) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.ID] = item
	return nil
}

func (r *stubCarritoRepo) UpdateItem(_ context.Context, item *model.ItemCarrito) error {
	stored, ok := r.items[item.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Cantidad = item.Cantidad
	return nil
}

func (r *stubCarritoRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	delete(r.items, itemID)
	return nil
}

func (r *stubCarritoRepo) Vaciar(_ context.Context, carritoID uuid.UUID) error {
	for id, item := range r.items {
		if item.CarritoID == carritoID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *stubCarritoRepo) VaciarTx(_ *gorm.DB, carritoID uuid.UUID) error {
	return r.Vaciar(context.Background(), carritoID)
}

var _ repository.CarritoRepository = (*stubCarritoRepo)(nil)

// stubCategoriaRepo resolves categorias and subcategorias by nombre.
type stubCategoriaRepo struct {
	categorias    map[uuid.UUID]*model.Categoria
	subcategorias map[uuid.UUID]*model.Subcategoria
}

func newStubCategoriaRepo() *stubCategoriaRepo {
	return &stubCategoriaRepo{
		categorias:    make(map[uuid.UUID]*model.Categoria),
		subcategorias: make(map[uuid.UUID]*model.Subcategoria),
	}
}

func (r *stubCategoriaRepo) Create(_ context.Context, c *model.Categoria) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCategoriaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Categoria, error) {
	c, ok := r.categorias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCategoriaRepo) FindByNombre(_ context.Context, nombre string) (*model.Categoria, error) {
	for _, c := range r.categorias {
		if c.Nombre == nombre {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoriaRepo) List(_ context.Context) ([]model.Categoria, error) {
	out := make([]model.Categoria, 0, len(r.categorias))
	for _, c := range r.categorias {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCategoriaRepo) Update(_ context.Context, c *model.Categoria) error {
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCategoriaRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := r.categorias[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Activo = false
	return nil
}

func (r *stubCategoriaRepo) CreateSubcategoria(_ context.Context, s *model.Subcategoria) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.subcategorias[s.ID] = s
	return nil
}

func (r *stubCategoriaRepo) FindSubcategoriaByID(_ context.Context, id uuid.UUID) (*model.Subcategoria, error) {
	s, ok := r.subcategorias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubCategoriaRepo) FindSubcategoriaByNombre(_ context.Context, nombre string) (*model.Subcategoria, error) {
	for _, s := range r.subcategorias {
		if s.Nombre == nombre {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoriaRepo) ListSubcategorias(_ context.Context) ([]model.Subcategoria, error) {
	out := make([]model.Subcategoria, 0, len(r.subcategorias))
	for _, s := range r.subcategorias {
		out = append(out, *s)
	}
	return out, nil
}

var _ repository.CategoriaRepository = (*stubCategoriaRepo)(nil)
