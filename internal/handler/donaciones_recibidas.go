package handler

import (
	"net/http"

	"github.com/NilsonPMMC/sgfs/internal/dto"
	"github.com/NilsonPMMC/sgfs/internal/middleware"
	"github.com/NilsonPMMC/sgfs/internal/service"

	"github.com/gin-gonic/gin"
)

type DonacionesRecibidasHandler struct{ svc service.DonacionRecibidaService }

func NewDonacionesRecibidasHandler(svc service.DonacionRecibidaService) *DonacionesRecibidasHandler {
	return &DonacionesRecibidasHandler{svc: svc}
}

// Registrar godoc
// @Summary      Registrar donación recibida
// @Description  Crea la donación y una entrada de estoque por línea, en una única transacción.
// @Tags         donaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.RegistrarDonacionRecibidaRequest true "Donación"
// @Success      201  {object} dto.DonacionRecibidaResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/donaciones-recibidas [post]
func (h *DonacionesRecibidasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarDonacionRecibidaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DonacionesRecibidasHandler) Listar(c *gin.Context) {
	var filter dto.DonacionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DonacionesRecibidasHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary      Editar donación recibida
// @Description  Si se envían líneas, reemplazan a las anteriores junto con sus entradas de estoque.
// @Description  Rechazado con 409 si la retirada dejaría algún ítem con saldo negativo.
// @Tags         donaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID de la donación"
// @Param        body body     dto.ActualizarDonacionRecibidaRequest true "Cambios"
// @Success      200  {object} dto.DonacionRecibidaResponse
// @Failure      409  {object} apierror.StockError
// @Router       /v1/donaciones-recibidas/{id} [put]
func (h *DonacionesRecibidasHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarDonacionRecibidaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), middleware.ActorID(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DonacionesRecibidasHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
