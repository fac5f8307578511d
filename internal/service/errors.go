package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNoEncontrado is wrapped by every lookup of a path resource that does not exist.
var ErrNoEncontrado = errors.New("recurso no encontrado")

func noEncontrado(recurso string) error {
	return fmt.Errorf("%s: %w", recurso, ErrNoEncontrado)
}

// ValidationError carries every offending field of a request, keyed by its
// JSON path (e.g. "lineas[2].cantidad").
type ValidationError struct {
	Fields map[string]string
}

func nuevaValidacion() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) Error() string {
	campos := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		campos = append(campos, k)
	}
	sort.Strings(campos)
	partes := make([]string, 0, len(campos))
	for _, c := range campos {
		partes = append(partes, c+": "+e.Fields[c])
	}
	return "validación fallida: " + strings.Join(partes, "; ")
}

// agregar keeps the first message recorded for a field.
func (e *ValidationError) agregar(campo, msg string) {
	if _, ok := e.Fields[campo]; !ok {
		e.Fields[campo] = msg
	}
}

func (e *ValidationError) vacia() bool { return len(e.Fields) == 0 }

// err returns nil when no field was flagged so callers can `return v.err()`.
func (e *ValidationError) err() error {
	if e.vacia() {
		return nil
	}
	return e
}

// Faltante describes one item whose aggregated demand exceeds its stock.
type Faltante struct {
	ItemID     uuid.UUID
	Nombre     string
	Disponible decimal.Decimal
	Solicitado decimal.Decimal
	Faltante   decimal.Decimal
}

// InsufficientStockError lists every short item of a rejected posting.
type InsufficientStockError struct {
	Faltantes []Faltante
}

func (e *InsufficientStockError) Error() string {
	partes := make([]string, 0, len(e.Faltantes))
	for _, f := range e.Faltantes {
		partes = append(partes, fmt.Sprintf("stock insuficiente para el ítem '%s'. Saldo actual: %s, salida solicitada: %s",
			f.Nombre, f.Disponible.StringFixed(2), f.Solicitado.StringFixed(2)))
	}
	return strings.Join(partes, "; ")
}

// ConflictError signals a uniqueness or referential restriction.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func conflicto(format string, args ...interface{}) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

func isNoEncontrado(err error) bool { return errors.Is(err, ErrNoEncontrado) }
