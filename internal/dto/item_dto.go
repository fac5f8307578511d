package dto

import "github.com/shopspring/decimal"

// ── Categorías de ítems ───────────────────────────────────────────────────────

type CategoriaItemRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=150"`
}

type CategoriaItemResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

// ── Ítems ─────────────────────────────────────────────────────────────────────

type CrearItemRequest struct {
	Nombre       string  `json:"nombre"        validate:"required,min=2,max=150"`
	Descripcion  string  `json:"descripcion"`
	UnidadMedida string  `json:"unidad_medida" validate:"required,max=50"`
	CategoriaID  *string `json:"categoria_id"  validate:"omitempty,uuid"`
}

type ActualizarItemRequest struct {
	Nombre       *string `json:"nombre"        validate:"omitempty,min=2,max=150"`
	Descripcion  *string `json:"descripcion"`
	UnidadMedida *string `json:"unidad_medida" validate:"omitempty,min=1,max=50"`
	CategoriaID  *string `json:"categoria_id"  validate:"omitempty,uuid"`
	// QuitarCategoria clears the category; CategoriaID is ignored when true.
	QuitarCategoria bool `json:"quitar_categoria"`
}

type ItemFilter struct {
	Busqueda    string `form:"q"`
	CategoriaID string `form:"categoria_id" validate:"omitempty,uuid"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type ItemResponse struct {
	ID            string                 `json:"id"`
	Nombre        string                 `json:"nombre"`
	Descripcion   string                 `json:"descripcion"`
	UnidadMedida  string                 `json:"unidad_medida"`
	Categoria     *CategoriaItemResponse `json:"categoria"`
	EstoqueActual decimal.Decimal        `json:"estoque_atual"`
}

type ItemListResponse struct {
	Data       []ItemResponse `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}
