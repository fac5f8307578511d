package service

import (
	"github.com/NilsonPMMC/sgfs/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SinLimite marks a kit whose components impose no bound on how many can be assembled.
const SinLimite = -1

// CalcularMontables returns, per kit, how many complete units current stock allows.
// stock must hold every item referenced by the kits; a missing item counts as zero.
// The function is pure.
func CalcularMontables(kits []model.Kit, stock map[uuid.UUID]decimal.Decimal) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(kits))
	for _, k := range kits {
		out[k.ID] = montables(k, stock)
	}
	return out
}

func montables(k model.Kit, stock map[uuid.UUID]decimal.Decimal) int {
	if len(k.Componentes) == 0 {
		return 0
	}
	minimo := SinLimite
	for _, c := range k.Componentes {
		// Non-positive rows are rejected on write; if one is read it does not bound the kit.
		if !c.Cantidad.IsPositive() {
			continue
		}
		disponible := stock[c.ItemID]
		if disponible.IsNegative() {
			disponible = decimal.Zero
		}
		n := int(disponible.Div(c.Cantidad).Floor().IntPart())
		if minimo == SinLimite || n < minimo {
			minimo = n
		}
	}
	return minimo
}

// itemsDeKits lists each distinct item referenced by the kits, in first-seen order.
func itemsDeKits(kits []model.Kit) []uuid.UUID {
	vistos := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, k := range kits {
		for _, c := range k.Componentes {
			if _, ok := vistos[c.ItemID]; ok {
				continue
			}
			vistos[c.ItemID] = struct{}{}
			ids = append(ids, c.ItemID)
		}
	}
	return ids
}

func montablePtr(n int) *int {
	if n == SinLimite {
		return nil
	}
	return &n
}
