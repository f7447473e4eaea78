package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/H-Riv/mundo-cartas/internal/apierror"
	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/repository"
	"github.com/H-Riv/mundo-cartas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const precioCacheTTL = 4 * time.Hour

// CatalogoHandler serves the public storefront: product browsing and the
// price check endpoint. No authentication, no side effects.
type CatalogoHandler struct {
	svc  service.ProductoService
	repo repository.ProductoRepository
	rdb  *redis.Client
}

func NewCatalogoHandler(svc service.ProductoService, repo repository.ProductoRepository, rdb *redis.Client) *CatalogoHandler {
	return &CatalogoHandler{svc: svc, repo: repo, rdb: rdb}
}

// Listar godoc
// @Summary Catálogo público de productos
// @Description Lista solo productos activos con stock disponible. Acepta filtros de búsqueda y categoría.
// @Tags catalogo
// @Produce json
// @Param busqueda query string false "Texto a buscar en nombre o SKU"
// @Param categoria query string false "UUID de categoría"
// @Success 200 {object} dto.ProductoListResponse
// @Router /v1/catalogo [get]
func (h *CatalogoHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	// The storefront never sees inactive or sold-out products, whatever the
	// query says.
	filter.Activo = ""
	filter.ConStock = true

	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar catalogo"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogoHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.ObtenerPorSKU(c.Request.Context(), c.Param("sku"))
	if err != nil || !resp.Activo {
		c.JSON(http.StatusNotFound, apierror.New("Producto no encontrado"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConsultaPrecio godoc
// @Summary Consulta de precio por SKU (sin autenticacion)
// @Tags catalogo
// @Produce json
// @Param sku path string true "Codigo SKU"
// @Success 200 {object} dto.ConsultaPrecioResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/precio/{sku} [get]
func (h *CatalogoHandler) ConsultaPrecio(c *gin.Context) {
	sku := c.Param("sku")
	ctx := c.Request.Context()
	cacheKey := "precio:" + sku

	// 1. Try Redis cache
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.ConsultaPrecioResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	// 2. Cache miss — query DB
	producto, err := h.repo.FindBySKU(ctx, sku)
	if err != nil || !producto.Activo {
		c.JSON(http.StatusNotFound, apierror.New("Producto no encontrado"))
		return
	}

	resp := dto.ConsultaPrecioResponse{
		CodigoSKU:       producto.CodigoSKU,
		Nombre:          producto.Nombre,
		Precio:          producto.Precio,
		StockDisponible: producto.Stock,
		Categoria:       producto.Categoria.Nombre,
	}

	// 3. Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, precioCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
