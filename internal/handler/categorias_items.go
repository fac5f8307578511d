package handler

import (
	"net/http"

	"github.com/NilsonPMMC/sgfs/internal/dto"
	"github.com/NilsonPMMC/sgfs/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoriasItemsHandler struct{ svc service.CategoriaItemService }

func NewCategoriasItemsHandler(svc service.CategoriaItemService) *CategoriasItemsHandler {
	return &CategoriasItemsHandler{svc: svc}
}

func (h *CategoriasItemsHandler) Crear(c *gin.Context) {
	var req dto.CategoriaItemRequest
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

func (h *CategoriasItemsHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoriasItemsHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CategoriaItemRequest
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

func (h *CategoriasItemsHandler) Eliminar(c *gin.Context) {
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
