package handler

import (
	"errors"
	"net/http"

	"github.com/H-Riv/mundo-cartas/internal/apierror"
	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/middleware"
	"github.com/H-Riv/mundo-cartas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// AjustarStock godoc
// @Summary      Movimiento manual de stock
// @Description  ENTRADA/SALIDA suman o restan; AJUSTE fija el stock absoluto (solo administrador).
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "UUID del producto"
// @Param        body body dto.AjustarStockRequest true "Detalle del movimiento"
// @Success      200  {object} dto.AjustarStockResponse
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Router       /v1/inventario/productos/{id}/ajustes [post]
func (h *InventarioHandler) AjustarStock(c *gin.Context) {
	productoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.AjustarStock(c.Request.Context(), productoID, usuarioID, middleware.GetRol(c), req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrAjusteSoloAdmin) {
			status = http.StatusForbidden
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimientos lists ledger entries, newest first.
func (h *InventarioHandler) Movimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListMovimientos(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar movimientos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumen feeds the inventory dashboard header.
func (h *InventarioHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.Resumen(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al calcular resumen"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Alertas lists low/critical stock products, critical first.
func (h *InventarioHandler) Alertas(c *gin.Context) {
	resp, err := h.svc.Alertas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar alertas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
