package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MovimientoEntrada = "entrada"
	MovimientoSalida  = "salida"
)

// Movimiento is one append-only row of the stock ledger.
// Cantidad is signed (entrada > 0, salida < 0); Tipo repeats the sign for audit filters.
// Rows are only ever deleted together with the donation they are correlated to.
type Movimiento struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ItemID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo        string          `gorm:"type:varchar(10);not null;index"`
	Cantidad    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UsuarioID   *uuid.UUID      `gorm:"type:uuid"`
	Observacion string          `gorm:"type:text;not null;default:''"`
	// Exactly one of these is set for movements posted by a donation.
	DonacionRecibidaID  *uuid.UUID `gorm:"type:uuid;index"`
	DonacionRealizadaID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt           time.Time  `gorm:"not null;index"`

	Item *Item `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT"`
}

// NuevaEntrada builds a positive ledger row.
func NuevaEntrada(itemID uuid.UUID, cantidad decimal.Decimal, usuarioID *uuid.UUID, observacion string) Movimiento {
	return Movimiento{
		ItemID:      itemID,
		Tipo:        MovimientoEntrada,
		Cantidad:    cantidad.Abs(),
		UsuarioID:   usuarioID,
		Observacion: observacion,
	}
}

// NuevaSalida builds a negative ledger row; cantidad is the (positive) amount leaving stock.
func NuevaSalida(itemID uuid.UUID, cantidad decimal.Decimal, usuarioID *uuid.UUID, observacion string) Movimiento {
	return Movimiento{
		ItemID:      itemID,
		Tipo:        MovimientoSalida,
		Cantidad:    cantidad.Abs().Neg(),
		UsuarioID:   usuarioID,
		Observacion: observacion,
	}
}
