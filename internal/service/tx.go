package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const formatoFecha = "2006-01-02"

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// validarCantidad returns a message when c is not a positive amount with at most two decimals.
func validarCantidad(c decimal.Decimal) string {
	if !c.IsPositive() {
		return "la cantidad debe ser mayor que cero"
	}
	if !c.Equal(c.Round(2)) {
		return "la cantidad admite como máximo 2 decimales"
	}
	return ""
}

func parseFecha(s string) (time.Time, bool) {
	t, err := time.Parse(formatoFecha, s)
	return t, err == nil
}

// parseRango turns the optional YYYY-MM-DD filters into [desde, hasta] pointers.
func parseRango(desde, hasta string, v *ValidationError) (*time.Time, *time.Time) {
	var d, h *time.Time
	if desde != "" {
		if t, ok := parseFecha(desde); ok {
			d = &t
		} else {
			v.agregar("desde", "formato esperado YYYY-MM-DD")
		}
	}
	if hasta != "" {
		if t, ok := parseFecha(hasta); ok {
			h = &t
		} else {
			v.agregar("hasta", "formato esperado YYYY-MM-DD")
		}
	}
	return d, h
}

func totalPaginas(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// campoIndice builds the JSON path of a list element, e.g. "lineas[2].cantidad".
func campoIndice(lista string, i int, campo string) string {
	if campo == "" {
		return fmt.Sprintf("%s[%d]", lista, i)
	}
	return fmt.Sprintf("%s[%d].%s", lista, i, campo)
}

func itoa(i int) string { return strconv.Itoa(i) }

// unicosIDs drops duplicates and uuid.Nil, keeping first-seen order.
func unicosIDs(ids []uuid.UUID) []uuid.UUID {
	vistos := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := vistos[id]; ok {
			continue
		}
		vistos[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
