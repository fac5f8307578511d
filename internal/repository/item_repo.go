package repository

import (
	"context"

	"github.com/NilsonPMMC/sgfs/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemFiltro narrows GET /v1/items.
type ItemFiltro struct {
	Busqueda    string
	CategoriaID *uuid.UUID
	Page        int
	Limit       int
}

// ItemRepository defines the data access contract for inventory items.
type ItemRepository interface {
	Crear(ctx context.Context, it *model.Item) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	ObtenerPorNombre(ctx context.Context, nombre string) (*model.Item, error)
	BuscarPorIDs(ctx context.Context, ids []uuid.UUID) ([]model.Item, error)
	Listar(ctx context.Context, filtro ItemFiltro) ([]model.Item, int64, error)
	Actualizar(ctx context.Context, it *model.Item) error
	Eliminar(ctx context.Context, id uuid.UUID) error

	// ContarReferencias counts ledger rows, kit components and donation lines
	// pointing at the item. Deletion is only allowed at zero.
	ContarReferencias(ctx context.Context, id uuid.UUID) (int64, error)
}

type itemRepo struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) Crear(ctx context.Context, it *model.Item) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(it).Error
}

func (r *itemRepo) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var it model.Item
	if err := r.db.WithContext(ctx).Preload("Categoria").First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *itemRepo) ObtenerPorNombre(ctx context.Context, nombre string) (*model.Item, error) {
	var it model.Item
	if err := r.db.WithContext(ctx).Where("lower(nombre) = lower(?)", nombre).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *itemRepo) BuscarPorIDs(ctx context.Context, ids []uuid.UUID) ([]model.Item, error) {
	var items []model.Item
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *itemRepo) Listar(ctx context.Context, filtro ItemFiltro) ([]model.Item, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Item{})
	if filtro.Busqueda != "" {
		like := "%" + filtro.Busqueda + "%"
		q = q.Where("nombre ILIKE ? OR descripcion ILIKE ?", like, like)
	}
	if filtro.CategoriaID != nil {
		q = q.Where("categoria_id = ?", *filtro.CategoriaID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginar(filtro.Page, filtro.Limit, 20, 100)
	var items []model.Item
	err := q.Preload("Categoria").Order("nombre ASC").Limit(limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (r *itemRepo) Actualizar(ctx context.Context, it *model.Item) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(it).Error
}

func (r *itemRepo) Eliminar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Item{}, "id = ?", id).Error
}

func (r *itemRepo) ContarReferencias(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT (SELECT COUNT(*) FROM movimientos WHERE item_id = ?)
		     + (SELECT COUNT(*) FROM kit_componentes WHERE item_id = ?)
		     + (SELECT COUNT(*) FROM donaciones_recibidas_lineas WHERE item_id = ?)
		     + (SELECT COUNT(*) FROM donaciones_realizadas_items WHERE item_id = ?)`,
		id, id, id, id).Row().Scan(&total)
	return total, err
}
