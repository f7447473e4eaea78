package handler

import (
	"net/http"

	"github.com/H-Riv/mundo-cartas/internal/apierror"
	"github.com/H-Riv/mundo-cartas/internal/dto"
	"github.com/H-Riv/mundo-cartas/internal/middleware"
	"github.com/H-Riv/mundo-cartas/internal/model"
	"github.com/H-Riv/mundo-cartas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PedidosHandler struct{ svc service.PedidoService }

func NewPedidosHandler(svc service.PedidoService) *PedidosHandler {
	return &PedidosHandler{svc: svc}
}

// IniciarCheckout godoc
// @Summary      Iniciar checkout del carrito
// @Description  Congela el carrito en un pedido pendiente y crea la transacción en Webpay. El cliente debe redirigirse a redirect_url con el token.
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object} dto.IniciarCheckoutResponse
// @Failure      400  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/checkout [post]
func (h *PedidosHandler) IniciarCheckout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.IniciarCheckout(c.Request.Context(), usuarioID)
	if err != nil {
		status := http.StatusBadRequest
		if err == service.ErrPagoNoDisponible {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ConfirmarRetorno godoc
// @Summary      Retorno de Webpay
// @Description  Endpoint público al que Webpay redirige al cliente. Confirma la transacción y cierra el pedido (pagado o cancelado). Idempotente.
// @Tags         pedidos
// @Produce      json
// @Param        token_ws query string false "Token de Webpay"
// @Success      200  {object} dto.ConfirmarPagoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/pago/retorno [get]
func (h *PedidosHandler) ConfirmarRetorno(c *gin.Context) {
	// Webpay returns by GET (query) on success and by POST (form) on abort.
	token := c.Query("token_ws")
	if token == "" {
		token = c.PostForm("token_ws")
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, apierror.New("token_ws requerido"))
		return
	}
	resp, err := h.svc.ConfirmarRetorno(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.GetPedido(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarPedidos returns the staff order board, filtered by estado and date.
func (h *PedidosHandler) ListarPedidos(c *gin.Context) {
	var filter dto.PedidoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListPedidos(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar pedidos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MisPedidos returns the authenticated customer's own order history.
func (h *PedidosHandler) MisPedidos(c *gin.Context) {
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.ListMisPedidos(c.Request.Context(), usuarioID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar pedidos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarEstado godoc
// @Summary      Avanzar estado de un pedido
// @Description  Transiciones válidas: pagado→preparado→entregado.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                            true "UUID del pedido"
// @Param        body body dto.ActualizarEstadoPedidoRequest true "Estado destino"
// @Success      200  {object} dto.PedidoResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/pedidos/{id}/estado [patch]
func (h *PedidosHandler) ActualizarEstado(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarEstadoPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarEstado(c.Request.Context(), id, model.EstadoPedido(req.Estado))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
