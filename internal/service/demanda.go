package service

import (
	"bytes"
	"sort"

	"github.com/NilsonPMMC/sgfs/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Demanda aggregates the quantity a donation-out needs per item, after kit expansion.
type Demanda struct {
	cantidades map[uuid.UUID]decimal.Decimal
}

func NuevaDemanda() *Demanda {
	return &Demanda{cantidades: make(map[uuid.UUID]decimal.Decimal)}
}

// Agregar adds a direct item line.
func (d *Demanda) Agregar(itemID uuid.UUID, cantidad decimal.Decimal) {
	d.cantidades[itemID] = d.cantidades[itemID].Add(cantidad)
}

// AgregarKit expands veces units of k into its components.
func (d *Demanda) AgregarKit(k model.Kit, veces int) {
	n := decimal.NewFromInt(int64(veces))
	for _, c := range k.Componentes {
		if !c.Cantidad.IsPositive() {
			continue
		}
		d.Agregar(c.ItemID, c.Cantidad.Mul(n))
	}
}

func (d *Demanda) Cantidad(itemID uuid.UUID) decimal.Decimal { return d.cantidades[itemID] }

func (d *Demanda) Vacia() bool { return len(d.cantidades) == 0 }

// Items returns the demanded item ids in ascending byte order, the same
// order the row locks are taken in.
func (d *Demanda) Items() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(d.cantidades))
	for id := range d.cantidades {
		ids = append(ids, id)
	}
	ordenarIDs(ids)
	return ids
}

// Faltantes compares the demand with stock and returns every short item.
func (d *Demanda) Faltantes(stock map[uuid.UUID]decimal.Decimal, nombres map[uuid.UUID]string) []Faltante {
	var out []Faltante
	for _, id := range d.Items() {
		pedido := d.cantidades[id]
		disponible := stock[id]
		if disponible.LessThan(pedido) {
			out = append(out, Faltante{
				ItemID:     id,
				Nombre:     nombres[id],
				Disponible: disponible,
				Solicitado: pedido,
				Faltante:   pedido.Sub(disponible),
			})
		}
	}
	return out
}

func ordenarIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
}
