package dto

import "github.com/shopspring/decimal"

type ComponenteRequest struct {
	ItemID   string          `json:"item_id"  validate:"required,uuid"`
	Cantidad decimal.Decimal `json:"cantidad"`
}

// KitRequest is used for both create (POST) and full replacement (PUT).
type KitRequest struct {
	Nombre      string              `json:"nombre"      validate:"required,min=2,max=150"`
	Descripcion string              `json:"descripcion"`
	Componentes []ComponenteRequest `json:"componentes" validate:"dive"`
}

type KitFilter struct {
	Busqueda string `form:"q"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=10" validate:"min=1,max=100"`
}

type ComponenteResponse struct {
	ID           string          `json:"id"`
	ItemID       string          `json:"item_id"`
	ItemNombre   string          `json:"item_nombre"`
	UnidadMedida string          `json:"unidad_medida"`
	Cantidad     decimal.Decimal `json:"cantidad"`
}

type KitResponse struct {
	ID          string               `json:"id"`
	Nombre      string               `json:"nombre"`
	Descripcion string               `json:"descripcion"`
	Componentes []ComponenteResponse `json:"componentes"`
	// CantidadMontable is null when no component constrains the kit.
	CantidadMontable *int `json:"cantidad_montable"`
}

type KitListResponse struct {
	Data       []KitResponse `json:"data"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

type FactibilidadRequest struct {
	KitIDs []string `json:"kit_ids" validate:"required,min=1,max=500,dive,uuid"`
}

type FactibilidadResponse struct {
	Montables map[string]*int `json:"montables"`
}
