package repository

import (
	"context"

	"github.com/NilsonPMMC/sgfs/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KitFiltro struct {
	Busqueda string
	Page     int
	Limit    int
}

// KitRepository owns kits and their composition rows.
type KitRepository interface {
	CrearTx(tx *gorm.DB, k *model.Kit) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Kit, error)
	ObtenerPorNombre(ctx context.Context, nombre string) (*model.Kit, error)
	// BuscarPorIDs returns the kits found, components and their items preloaded.
	BuscarPorIDs(ctx context.Context, ids []uuid.UUID) ([]model.Kit, error)
	Listar(ctx context.Context, filtro KitFiltro) ([]model.Kit, int64, error)
	// ReemplazarTx updates nombre/descripcion and swaps the whole component set.
	ReemplazarTx(tx *gorm.DB, k *model.Kit) error
	Eliminar(ctx context.Context, id uuid.UUID) error
	ContarSalidas(ctx context.Context, id uuid.UUID) (int64, error)
	// ComponentesTx share-locks the kit rows, in id order, and reads their
	// committed composition. ReemplazarTx updates the kit row first, so the two
	// serialize on it.
	ComponentesTx(tx *gorm.DB, kitIDs []uuid.UUID) ([]model.KitComponente, error)

	DB() *gorm.DB
}

type kitRepo struct{ db *gorm.DB }

func NewKitRepository(db *gorm.DB) KitRepository { return &kitRepo{db: db} }

func (r *kitRepo) DB() *gorm.DB { return r.db }

func (r *kitRepo) CrearTx(tx *gorm.DB, k *model.Kit) error {
	componentes := k.Componentes
	k.Componentes = nil
	if err := tx.Omit(clause.Associations).Create(k).Error; err != nil {
		return err
	}
	k.Componentes = componentes
	return r.crearComponentesTx(tx, k)
}

func (r *kitRepo) crearComponentesTx(tx *gorm.DB, k *model.Kit) error {
	if len(k.Componentes) == 0 {
		return nil
	}
	for i := range k.Componentes {
		k.Componentes[i].KitID = k.ID
	}
	return tx.Omit(clause.Associations).Create(&k.Componentes).Error
}

func (r *kitRepo) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.Kit, error) {
	var k model.Kit
	if err := r.db.WithContext(ctx).Preload("Componentes.Item").First(&k, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *kitRepo) ObtenerPorNombre(ctx context.Context, nombre string) (*model.Kit, error) {
	var k model.Kit
	if err := r.db.WithContext(ctx).Where("lower(nombre) = lower(?)", nombre).First(&k).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *kitRepo) BuscarPorIDs(ctx context.Context, ids []uuid.UUID) ([]model.Kit, error) {
	var kits []model.Kit
	if len(ids) == 0 {
		return kits, nil
	}
	err := r.db.WithContext(ctx).Preload("Componentes.Item").Where("id IN ?", ids).Find(&kits).Error
	return kits, err
}

func (r *kitRepo) Listar(ctx context.Context, filtro KitFiltro) ([]model.Kit, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Kit{})
	if filtro.Busqueda != "" {
		q = q.Where("nombre ILIKE ?", "%"+filtro.Busqueda+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginar(filtro.Page, filtro.Limit, 10, 100)
	var kits []model.Kit
	err := q.Preload("Componentes.Item").Order("nombre ASC").Limit(limit).Offset(offset).Find(&kits).Error
	return kits, total, err
}

func (r *kitRepo) ReemplazarTx(tx *gorm.DB, k *model.Kit) error {
	if err := tx.Model(&model.Kit{}).Where("id = ?", k.ID).Updates(map[string]interface{}{
		"nombre":      k.Nombre,
		"descripcion": k.Descripcion,
	}).Error; err != nil {
		return err
	}
	if err := tx.Where("kit_id = ?", k.ID).Delete(&model.KitComponente{}).Error; err != nil {
		return err
	}
	return r.crearComponentesTx(tx, k)
}

// Eliminar cascades to kit_componentes.
func (r *kitRepo) Eliminar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Kit{}, "id = ?", id).Error
}

func (r *kitRepo) ContarSalidas(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.KitSalida{}).Where("kit_id = ?", id).Count(&total).Error
	return total, err
}

func (r *kitRepo) ComponentesTx(tx *gorm.DB, kitIDs []uuid.UUID) ([]model.KitComponente, error) {
	var comps []model.KitComponente
	if len(kitIDs) == 0 {
		return comps, nil
	}
	var bloqueados []uuid.UUID
	if err := tx.Model(&model.Kit{}).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id IN ?", kitIDs).
		Order("id").
		Pluck("id", &bloqueados).Error; err != nil {
		return nil, err
	}
	err := tx.Preload("Item").Where("kit_id IN ?", kitIDs).Find(&comps).Error
	return comps, err
}
