package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kit is a named bundle of items (e.g. "Cesta básica") assembled from stock on demand.
type Kit struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	Descripcion string    `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Componentes []KitComponente `gorm:"foreignKey:KitID;constraint:OnDelete:CASCADE"`
}

// KitComponente is one composition row: Cantidad units of Item per assembled kit.
// A kit holds at most one row per item.
type KitComponente struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	KitID    uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_kit_item;not null"`
	ItemID   uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_kit_item;not null;index"`
	Cantidad decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Item *Item `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT"`
}

// TableName overrides GORM's default pluralization (kit_componentes is already correct,
// kept explicit so renames of the struct do not move the table).
func (KitComponente) TableName() string { return "kit_componentes" }
