package handler

import (
	"net/http"

	"github.com/NilsonPMMC/sgfs/internal/dto"
	"github.com/NilsonPMMC/sgfs/internal/service"

	"github.com/gin-gonic/gin"
)

type ItemsHandler struct {
	svc     service.ItemService
	estoque service.EstoqueService
}

func NewItemsHandler(svc service.ItemService, estoque service.EstoqueService) *ItemsHandler {
	return &ItemsHandler{svc: svc, estoque: estoque}
}

// Crear godoc
// @Summary      Crear ítem
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CrearItemRequest true "Ítem"
// @Success      201  {object} dto.ItemResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/items [post]
func (h *ItemsHandler) Crear(c *gin.Context) {
	var req dto.CrearItemRequest
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
// @Summary      Listar ítems con su estoque actual
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        q            query string false "Busca por nombre o descripción"
// @Param        categoria_id query string false "UUID de categoría"
// @Param        page         query int    false "Página"
// @Param        limit        query int    false "Tamaño de página (máx. 100)"
// @Success      200  {object} dto.ItemListResponse
// @Router       /v1/items [get]
func (h *ItemsHandler) Listar(c *gin.Context) {
	var filter dto.ItemFilter
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

func (h *ItemsHandler) ObtenerPorID(c *gin.Context) {
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

func (h *ItemsHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarItemRequest
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

// Eliminar godoc
// @Summary      Eliminar ítem
// @Description  Rechazado con 409 mientras existan movimientos, kits o donaciones que lo referencien.
// @Tags         items
// @Security     BearerAuth
// @Param        id path string true "UUID del ítem"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/items/{id} [delete]
func (h *ItemsHandler) Eliminar(c *gin.Context) {
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

// Stock godoc
// @Summary      Estoque actual de un ítem
// @Description  Suma de todos los movimientos del ítem (0 si no tiene).
// @Tags         estoque
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del ítem"
// @Success      200 {object} dto.StockResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/items/{id}/stock [get]
func (h *ItemsHandler) Stock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.estoque.StockActual(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
