package repository

import (
	"context"

	"github.com/NilsonPMMC/sgfs/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoriaItemRepository defines CRUD operations for CategoriaItem.
type CategoriaItemRepository interface {
	Crear(ctx context.Context, c *model.CategoriaItem) error
	Listar(ctx context.Context) ([]model.CategoriaItem, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.CategoriaItem, error)
	ObtenerPorNombre(ctx context.Context, nombre string) (*model.CategoriaItem, error)
	Actualizar(ctx context.Context, c *model.CategoriaItem) error
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type categoriaItemRepository struct{ db *gorm.DB }

func NewCategoriaItemRepository(db *gorm.DB) CategoriaItemRepository {
	return &categoriaItemRepository{db: db}
}

func (r *categoriaItemRepository) Crear(ctx context.Context, c *model.CategoriaItem) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoriaItemRepository) Listar(ctx context.Context) ([]model.CategoriaItem, error) {
	var list []model.CategoriaItem
	err := r.db.WithContext(ctx).Order("nombre asc").Find(&list).Error
	return list, err
}

func (r *categoriaItemRepository) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.CategoriaItem, error) {
	var c model.CategoriaItem
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoriaItemRepository) ObtenerPorNombre(ctx context.Context, nombre string) (*model.CategoriaItem, error) {
	var c model.CategoriaItem
	if err := r.db.WithContext(ctx).Where("lower(nombre) = lower(?)", nombre).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoriaItemRepository) Actualizar(ctx context.Context, c *model.CategoriaItem) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Eliminar relies on ON DELETE SET NULL to detach the category's items.
func (r *categoriaItemRepository) Eliminar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CategoriaItem{}, "id = ?", id).Error
}
