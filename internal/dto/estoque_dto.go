package dto

import "github.com/shopspring/decimal"

type StockResponse struct {
	ItemID        string          `json:"item_id"`
	EstoqueActual decimal.Decimal `json:"estoque_atual"`
}

type StockBulkRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,max=500,dive,uuid"`
}

type StockBulkResponse struct {
	Stock map[string]decimal.Decimal `json:"stock"`
}

// MovimientoFilter is bound from the query string of GET /v1/estoque/movimientos.
type MovimientoFilter struct {
	ItemID string `form:"item_id" validate:"omitempty,uuid"`
	Tipo   string `form:"tipo"    validate:"omitempty,oneof=entrada salida"`
	Desde  string `form:"desde"` // YYYY-MM-DD
	Hasta  string `form:"hasta"` // YYYY-MM-DD, inclusive
	Page   int    `form:"page,default=1"    validate:"min=1"`
	Limit  int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type MovimientoResponse struct {
	ID                  string          `json:"id"`
	ItemID              string          `json:"item_id"`
	ItemNombre          string          `json:"item_nombre"`
	Tipo                string          `json:"tipo"`
	Cantidad            decimal.Decimal `json:"cantidad"`
	UsuarioID           *string         `json:"usuario_id"`
	Observacion         string          `json:"observacion"`
	DonacionRecibidaID  *string         `json:"donacion_recibida_id"`
	DonacionRealizadaID *string         `json:"donacion_realizada_id"`
	CreatedAt           string          `json:"created_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// InconsistenciaResponse lists an item whose derived stock went below zero.
type InconsistenciaResponse struct {
	ItemID        string          `json:"item_id"`
	Nombre        string          `json:"nombre"`
	EstoqueActual decimal.Decimal `json:"estoque_atual"`
}
