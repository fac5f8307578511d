package model

import (
	"time"

	"github.com/google/uuid"
)

// Item is a stockable good ("Arroz 5kg", "Sabonete"). Its stock is never stored
// here: it is always the sum of its movimientos.
type Item struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string     `gorm:"type:varchar(150);uniqueIndex;not null"`
	Descripcion  string     `gorm:"type:text;not null;default:''"`
	UnidadMedida string     `gorm:"type:varchar(50);not null"`
	CategoriaID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Categoria *CategoriaItem `gorm:"foreignKey:CategoriaID;constraint:OnDelete:SET NULL"`
}
