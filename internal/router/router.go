package router

import (
	"time"

	"github.com/H-Riv/mundo-cartas/internal/config"
	"github.com/H-Riv/mundo-cartas/internal/handler"
	"github.com/H-Riv/mundo-cartas/internal/infra"
	"github.com/H-Riv/mundo-cartas/internal/middleware"
	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/repository"
	"github.com/H-Riv/mundo-cartas/internal/service"
	"github.com/H-Riv/mundo-cartas/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, webpayCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	webpayClient := infra.NewWebpayClient(cfg.WebpayBaseURL, cfg.WebpayCommerceCode, cfg.WebpayAPIKey)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	carritoRepo := repository.NewCarritoRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	productoSvc := service.NewProductoService(productoRepo, categoriaRepo, movimientoStockRepo, rdb)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoStockRepo)
	carritoSvc := service.NewCarritoService(carritoRepo, productoRepo)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, inventarioSvc, dispatcher)
	pedidoSvc := service.NewPedidoService(pedidoRepo, carritoRepo, ventaRepo, productoRepo, inventarioSvc, webpayClient, webpayCB, dispatcher, cfg.WebpayReturnURL)
	importacionSvc := service.NewImportacionService(productoRepo, categoriaRepo, movimientoStockRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	catalogoH := handler.NewCatalogoHandler(productoSvc, productoRepo, rdb)
	carritoH := handler.NewCarritoHandler(carritoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	pedidosH := handler.NewPedidosHandler(pedidoSvc)
	importacionH := handler.NewImportacionHandler(importacionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/registro", authH.Registro)
	}

	// Storefront — no auth required
	r.GET("/v1/catalogo", catalogoH.Listar)
	r.GET("/v1/catalogo/:sku", catalogoH.Obtener)
	r.GET("/v1/precio/:sku", catalogoH.ConsultaPrecio)

	// Webpay redirects the customer's browser here after paying; the token
	// is the only credential, so the route stays outside the JWT group.
	r.GET("/v1/pago/retorno", pedidosH.ConfirmarRetorno)
	r.POST("/v1/pago/retorno", pedidosH.ConfirmarRetorno)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/perfil", usuariosH.Perfil)

		// Shopping cart + checkout — any authenticated user
		carrito := v1.Group("/carrito")
		{
			carrito.GET("", carritoH.Get)
			carrito.POST("/items", carritoH.AgregarItem)
			carrito.PUT("/items/:id", carritoH.ActualizarCantidad)
			carrito.DELETE("/items/:id", carritoH.EliminarItem)
			carrito.DELETE("", carritoH.Vaciar)
		}
		v1.POST("/checkout", pedidosH.IniciarCheckout)
		v1.GET("/mis-pedidos", pedidosH.MisPedidos)

		// POS — staff only
		v1.POST("/ventas", middleware.RequireStaff(), ventasH.RegistrarVenta)
		v1.GET("/ventas", middleware.RequireStaff(), ventasH.ListarVentas)
		v1.GET("/ventas/:id", middleware.RequireStaff(), ventasH.Obtener)
		v1.DELETE("/ventas/:id", middleware.RequireStaff(), ventasH.AnularVenta)

		// Order board — staff only
		pedidos := v1.Group("/pedidos", middleware.RequireStaff())
		{
			pedidos.GET("", pedidosH.ListarPedidos)
			pedidos.GET("/:id", pedidosH.Obtener)
			pedidos.PATCH("/:id/estado", pedidosH.ActualizarEstado)
		}

		// Inventory — staff can read and move stock; AJUSTE is gated to
		// administrators inside the service.
		inv := v1.Group("/inventario", middleware.RequireStaff())
		{
			inv.POST("/productos/:id/ajustes", inventarioH.AjustarStock)
			inv.GET("/movimientos", inventarioH.Movimientos)
			inv.GET("/resumen", inventarioH.Resumen)
			inv.GET("/alertas", inventarioH.Alertas)
		}

		// Product catalog management — staff can read, administrador writes
		v1.GET("/productos", middleware.RequireStaff(), productosH.Listar)
		v1.GET("/productos/:id", middleware.RequireStaff(), productosH.Obtener)
		prods := v1.Group("/productos", middleware.RequireRol(model.RolAdministrador))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}

		// Categorías — staff reads, administrador writes
		v1.GET("/categorias", middleware.RequireStaff(), categoriasH.Listar)
		categorias := v1.Group("/categorias", middleware.RequireRol(model.RolAdministrador))
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Desactivar)
		}

		// Bulk import — administrador only
		imp := v1.Group("/importacion", middleware.RequireRol(model.RolAdministrador))
		{
			imp.POST("", importacionH.Importar)
			imp.GET("/plantilla", importacionH.Plantilla)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRol(model.RolAdministrador))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
