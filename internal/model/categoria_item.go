package model

import (
	"time"

	"github.com/google/uuid"
)

// CategoriaItem classifies inventory items (alimentos, higiene, limpieza...).
// Deleting a category leaves its items uncategorized.
type CategoriaItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralization (categoria_items → categorias_items).
func (CategoriaItem) TableName() string { return "categorias_items" }
