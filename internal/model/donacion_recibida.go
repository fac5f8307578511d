package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonanteTipo tags which directory table DonanteID points to.
type DonanteTipo string

const (
	DonanteEntidad DonanteTipo = "entidad"
	DonantePersona DonanteTipo = "persona"
)

// Valido reports whether t is one of the known donor kinds.
func (t DonanteTipo) Valido() bool {
	return t == DonanteEntidad || t == DonantePersona
}

// DonacionRecibida is a donation-in event. Each of its lineas posts one entrada movement.
type DonacionRecibida struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha         time.Time   `gorm:"type:date;not null;index"`
	DonanteTipo   DonanteTipo `gorm:"type:varchar(20);not null"`
	DonanteID     uuid.UUID   `gorm:"type:uuid;not null;index"`
	Observaciones string      `gorm:"type:text;not null;default:''"`
	CreatedAt     time.Time

	Lineas []DonacionRecibidaLinea `gorm:"foreignKey:DonacionRecibidaID;constraint:OnDelete:CASCADE"`
}

func (DonacionRecibida) TableName() string { return "donaciones_recibidas" }

type DonacionRecibidaLinea struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DonacionRecibidaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad           decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Item *Item `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT"`
}

func (DonacionRecibidaLinea) TableName() string { return "donaciones_recibidas_lineas" }
