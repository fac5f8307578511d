package handler

import (
	"net/http"

	"github.com/NilsonPMMC/sgfs/internal/dto"
	"github.com/NilsonPMMC/sgfs/internal/service"

	"github.com/gin-gonic/gin"
)

type KitsHandler struct{ svc service.KitService }

func NewKitsHandler(svc service.KitService) *KitsHandler {
	return &KitsHandler{svc: svc}
}

func (h *KitsHandler) Crear(c *gin.Context) {
	var req dto.KitRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar kits con cantidad montable
// @Tags         kits
// @Produce      json
// @Security     BearerAuth
// @Param        q     query string false "Busca por nombre"
// @Param        page  query int    false "Página"
// @Param        limit query int    false "Tamaño de página (máx. 100)"
// @Success      200 {object} dto.KitListResponse
// @Router       /v1/kits [get]
func (h *KitsHandler) Listar(c *gin.Context) {
	var filter dto.KitFilter
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

func (h *KitsHandler) ObtenerPorID(c *gin.Context) {
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

func (h *KitsHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.KitRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *KitsHandler) Eliminar(c *gin.Context) {
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

// Factibilidad godoc
// @Summary      Kits montables con el estoque actual
// @Description  Por kit, cuántas unidades completas se pueden armar. null = ningún componente limita.
// @Tags         kits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.FactibilidadRequest true "IDs de kits"
// @Success      200  {object} dto.FactibilidadResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/kits/factibilidad [post]
func (h *KitsHandler) Factibilidad(c *gin.Context) {
	var req dto.FactibilidadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Factibilidad(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
