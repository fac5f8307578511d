package service

import (
	"context"

	"github.com/NilsonPMMC/sgfs/internal/dto"
	"github.com/NilsonPMMC/sgfs/internal/model"
	"github.com/NilsonPMMC/sgfs/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type lineaResuelta struct {
	item     model.Item
	cantidad decimal.Decimal
}

// resolverLineasItems validates (item_id, cantidad) rows under the JSON list
// name lista, recording every problem in v. Items are fetched in one query.
// The returned error is reserved for storage failures.
func resolverLineasItems(ctx context.Context, repo repository.ItemRepository, lista string, lineas []dto.LineaItemRequest, v *ValidationError) ([]lineaResuelta, error) {
	ids := make([]uuid.UUID, len(lineas))
	parseados := make([]bool, len(lineas))
	for i, l := range lineas {
		if msg := validarCantidad(l.Cantidad); msg != "" {
			v.agregar(campoIndice(lista, i, "cantidad"), msg)
		}
		id, err := uuid.Parse(l.ItemID)
		if err != nil {
			v.agregar(campoIndice(lista, i, "item_id"), "uuid inválido")
			continue
		}
		ids[i], parseados[i] = id, true
	}

	encontrados, err := repo.BuscarPorIDs(ctx, unicosIDs(ids))
	if err != nil {
		return nil, err
	}
	porID := make(map[uuid.UUID]model.Item, len(encontrados))
	for _, it := range encontrados {
		porID[it.ID] = it
	}

	out := make([]lineaResuelta, 0, len(lineas))
	for i, l := range lineas {
		if !parseados[i] {
			continue
		}
		it, ok := porID[ids[i]]
		if !ok {
			v.agregar(campoIndice(lista, i, "item_id"), "ítem inexistente")
			continue
		}
		out = append(out, lineaResuelta{item: it, cantidad: l.Cantidad})
	}
	return out, nil
}
