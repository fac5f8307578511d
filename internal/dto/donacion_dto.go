package dto

import "github.com/shopspring/decimal"

// ─── Shared line shapes ──────────────────────────────────────────────────────

type LineaItemRequest struct {
	ItemID   string          `json:"item_id"`
	Cantidad decimal.Decimal `json:"cantidad"`
}

type LineaKitRequest struct {
	KitID    string `json:"kit_id"`
	Cantidad int    `json:"cantidad"`
}

type LineaItemResponse struct {
	ID         string          `json:"id"`
	ItemID     string          `json:"item_id"`
	ItemNombre string          `json:"item_nombre"`
	Cantidad   decimal.Decimal `json:"cantidad"`
}

type LineaKitResponse struct {
	ID        string `json:"id"`
	KitID     string `json:"kit_id"`
	KitNombre string `json:"kit_nombre"`
	Cantidad  int    `json:"cantidad"`
}

type DonacionFilter struct {
	Desde string `form:"desde"` // YYYY-MM-DD
	Hasta string `form:"hasta"` // YYYY-MM-DD, inclusive
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Donaciones recibidas ────────────────────────────────────────────────────

type DonanteRequest struct {
	Tipo string `json:"tipo" validate:"required,oneof=entidad persona"`
	ID   string `json:"id"   validate:"required,uuid"`
}

type RegistrarDonacionRecibidaRequest struct {
	Fecha         string             `json:"fecha"   validate:"required"` // YYYY-MM-DD
	Donante       DonanteRequest     `json:"donante" validate:"required"`
	Observaciones string             `json:"observaciones"`
	Lineas        []LineaItemRequest `json:"lineas"`
}

// ActualizarDonacionRecibidaRequest only touches the fields present in the payload.
// When Lineas is present the whole line set is replaced.
type ActualizarDonacionRecibidaRequest struct {
	Fecha         *string             `json:"fecha"`
	Donante       *DonanteRequest     `json:"donante"`
	Observaciones *string             `json:"observaciones"`
	Lineas        *[]LineaItemRequest `json:"lineas"`
}

type DonanteResponse struct {
	Tipo   string `json:"tipo"`
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type DonacionRecibidaResponse struct {
	ID            string              `json:"id"`
	Fecha         string              `json:"fecha"`
	Donante       DonanteResponse     `json:"donante"`
	Observaciones string              `json:"observaciones"`
	Lineas        []LineaItemResponse `json:"lineas"`
	CreatedAt     string              `json:"created_at"`
}

type DonacionRecibidaListResponse struct {
	Data  []DonacionRecibidaResponse `json:"data"`
	Total int64                      `json:"total"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}

// ─── Donaciones realizadas ───────────────────────────────────────────────────

type RegistrarDonacionRealizadaRequest struct {
	Fecha            string             `json:"fecha"              validate:"required"`
	EntidadGestoraID string             `json:"entidad_gestora_id" validate:"required,uuid"`
	Observaciones    string             `json:"observaciones"`
	Items            []LineaItemRequest `json:"items"`
	Kits             []LineaKitRequest  `json:"kits"`
}

type EntidadResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type DonacionRealizadaResponse struct {
	ID             string              `json:"id"`
	Fecha          string              `json:"fecha"`
	EntidadGestora EntidadResponse     `json:"entidad_gestora"`
	Observaciones  string              `json:"observaciones"`
	Items          []LineaItemResponse `json:"items"`
	Kits           []LineaKitResponse  `json:"kits"`
	// Salidas are the aggregated ledger postings produced by this donation.
	Salidas   []MovimientoResponse `json:"salidas"`
	CreatedAt string               `json:"created_at"`
}

type DonacionRealizadaListResponse struct {
	Data  []DonacionRealizadaResponse `json:"data"`
	Total int64                       `json:"total"`
	Page  int                         `json:"page"`
	Limit int                         `json:"limit"`
}
