package handler

import (
	"net/http"

	"github.com/H-Riv/mundo-cartas/internal/apierror"
	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/middleware"
	"github.com/H-Riv/mundo-cartas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CarritoHandler exposes the authenticated user's shopping cart. Every
// operation is scoped to the caller's own cart via the JWT claims.
type CarritoHandler struct{ svc service.CarritoService }

func NewCarritoHandler(svc service.CarritoService) *CarritoHandler {
	return &CarritoHandler{svc: svc}
}

func (h *CarritoHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.GetCarrito(c.Request.Context(), usuarioID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al obtener carrito"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarItem godoc
// @Summary      Agregar producto al carrito
// @Description  Agrega un producto (o acumula cantidad sobre la línea existente), validando stock disponible.
// @Tags         carrito
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AgregarItemRequest true "Producto y cantidad"
// @Success      200  {object} dto.CarritoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/carrito/items [post]
func (h *CarritoHandler) AgregarItem(c *gin.Context) {
	var req dto.AgregarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.AgregarItem(c.Request.Context(), usuarioID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CarritoHandler) ActualizarCantidad(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarCantidadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.ActualizarCantidad(c.Request.Context(), usuarioID, itemID, req.Cantidad)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CarritoHandler) EliminarItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.EliminarItem(c.Request.Context(), usuarioID, itemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CarritoHandler) Vaciar(c *gin.Context) {
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.Vaciar(c.Request.Context(), usuarioID); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al vaciar carrito"))
		return
	}
	c.Status(http.StatusNoContent)
}
