// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import "github.com/shopspring/decimal"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Faltante is one short item in a rejected stock posting.
type Faltante struct {
	ItemID     string          `json:"item_id"`
	Nombre     string          `json:"nombre"`
	Disponible decimal.Decimal `json:"estoque_atual"`
	Solicitado decimal.Decimal `json:"solicitado"`
	Faltante   decimal.Decimal `json:"faltante"`
}

// StockError is returned with 409 when a posting would exceed available stock.
type StockError struct {
	Detail    string     `json:"detail"`
	Faltantes []Faltante `json:"faltantes"`
}

func NewStock(detail string, faltantes []Faltante) *StockError {
	return &StockError{Detail: detail, Faltantes: faltantes}
}
