package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/NilsonPMMC/sgfs/internal/dto"
	"github.com/NilsonPMMC/sgfs/internal/service"

	"github.com/gin-gonic/gin"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EstoqueHandler struct{ svc service.EstoqueService }

func NewEstoqueHandler(svc service.EstoqueService) *EstoqueHandler {
	return &EstoqueHandler{svc: svc}
}

// StockBulk godoc
// @Summary      Estoque actual de varios ítems
// @Description  Devuelve una entrada por cada id pedido; los ítems sin movimientos valen 0.
// @Tags         estoque
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.StockBulkRequest true "IDs de ítems"
// @Success      200  {object} dto.StockBulkResponse
// @Router       /v1/estoque/stock [post]
func (h *EstoqueHandler) StockBulk(c *gin.Context) {
	var req dto.StockBulkRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.StockActualBulk(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EstoqueHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportarMovimientos streams the filtered ledger as an XLSX download.
// The file is built in memory first so a failure still yields a JSON error.
func (h *EstoqueHandler) ExportarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportarMovimientos(c.Request.Context(), filter, &buf); err != nil {
		responderError(c, err)
		return
	}
	nombre := fmt.Sprintf("movimientos_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+nombre+`"`)
	c.Data(http.StatusOK, mimeXLSX, buf.Bytes())
}

// Consistencia godoc
// @Summary      Ítems con estoque negativo
// @Description  Una respuesta no vacía indica una postagem que escapó al control de estoque.
// @Tags         estoque
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.InconsistenciaResponse
// @Router       /v1/estoque/consistencia [get]
func (h *EstoqueHandler) Consistencia(c *gin.Context) {
	resp, err := h.svc.VerificarConsistencia(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
