package handler

import (
	"fmt"
	"net/http"

	"github.com/NilsonPMMC/sgfs/internal/dto"
	"github.com/NilsonPMMC/sgfs/internal/middleware"
	"github.com/NilsonPMMC/sgfs/internal/service"

	"github.com/gin-gonic/gin"
)

type DonacionesRealizadasHandler struct{ svc service.DonacionRealizadaService }

func NewDonacionesRealizadasHandler(svc service.DonacionRealizadaService) *DonacionesRealizadasHandler {
	return &DonacionesRealizadasHandler{svc: svc}
}

// Registrar godoc
// @Summary      Registrar donación realizada
// @Description  Expande los kits en sus componentes, suma la demanda por ítem y la contrasta con el estoque.
// @Description  Si algún ítem no alcanza no se persiste nada y se responde 409 con el detalle de faltantes.
// @Tags         donaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.RegistrarDonacionRealizadaRequest true "Donación"
// @Success      201  {object} dto.DonacionRealizadaResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.StockError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/donaciones-realizadas [post]
func (h *DonacionesRealizadasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarDonacionRealizadaRequest
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

func (h *DonacionesRealizadasHandler) Listar(c *gin.Context) {
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

func (h *DonacionesRealizadasHandler) ObtenerPorID(c *gin.Context) {
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

// Eliminar removes the donation together with its salidas, restoring the stock.
func (h *DonacionesRealizadasHandler) Eliminar(c *gin.Context) {
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

// Comprobante godoc
// @Summary      Comprobante PDF de la donación
// @Tags         donaciones
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "UUID de la donación"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/donaciones-realizadas/{id}/comprobante [get]
func (h *DonacionesRealizadasHandler) Comprobante(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	pdf, err := h.svc.Comprobante(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="donacion_%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
