package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonacionRealizada is a donation-out to a managing organization.
// Items and Kits keep the request exactly as entered; the ledger holds one
// aggregated salida per item touched.
type DonacionRealizada struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha            time.Time `gorm:"type:date;not null;index"`
	EntidadGestoraID uuid.UUID `gorm:"type:uuid;not null;index"`
	Observaciones    string    `gorm:"type:text;not null;default:''"`
	CreatedAt        time.Time

	Items []ItemSalida `gorm:"foreignKey:DonacionRealizadaID;constraint:OnDelete:CASCADE"`
	Kits  []KitSalida  `gorm:"foreignKey:DonacionRealizadaID;constraint:OnDelete:CASCADE"`

	EntidadGestora *Entidad `gorm:"foreignKey:EntidadGestoraID;constraint:OnDelete:RESTRICT"`
}

func (DonacionRealizada) TableName() string { return "donaciones_realizadas" }

type ItemSalida struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DonacionRealizadaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad            decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Item *Item `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT"`
}

func (ItemSalida) TableName() string { return "donaciones_realizadas_items" }

type KitSalida struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DonacionRealizadaID uuid.UUID `gorm:"type:uuid;not null;index"`
	KitID               uuid.UUID `gorm:"type:uuid;not null;index"`
	Cantidad            int       `gorm:"not null"`

	Kit *Kit `gorm:"foreignKey:KitID;constraint:OnDelete:RESTRICT"`
}

func (KitSalida) TableName() string { return "donaciones_realizadas_kits" }
