package repository

import (
	"context"

	"github.com/NilsonPMMC/sgfs/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DonacionRealizadaRepository interface {
	CrearTx(tx *gorm.DB, d *model.DonacionRealizada) error
	CrearItemsTx(tx *gorm.DB, items []model.ItemSalida) error
	CrearKitsTx(tx *gorm.DB, kits []model.KitSalida) error
	EliminarTx(tx *gorm.DB, id uuid.UUID) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.DonacionRealizada, error)
	Listar(ctx context.Context, filtro DonacionFiltro) ([]model.DonacionRealizada, int64, error)
	DB() *gorm.DB
}

type donacionRealizadaRepo struct{ db *gorm.DB }

func NewDonacionRealizadaRepository(db *gorm.DB) DonacionRealizadaRepository {
	return &donacionRealizadaRepo{db: db}
}

func (r *donacionRealizadaRepo) DB() *gorm.DB { return r.db }

func (r *donacionRealizadaRepo) CrearTx(tx *gorm.DB, d *model.DonacionRealizada) error {
	return tx.Omit(clause.Associations).Create(d).Error
}

func (r *donacionRealizadaRepo) CrearItemsTx(tx *gorm.DB, items []model.ItemSalida) error {
	if len(items) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Create(&items).Error
}

func (r *donacionRealizadaRepo) CrearKitsTx(tx *gorm.DB, kits []model.KitSalida) error {
	if len(kits) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Create(&kits).Error
}

func (r *donacionRealizadaRepo) EliminarTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("donacion_realizada_id = ?", id).Delete(&model.ItemSalida{}).Error; err != nil {
		return err
	}
	if err := tx.Where("donacion_realizada_id = ?", id).Delete(&model.KitSalida{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.DonacionRealizada{}, "id = ?", id).Error
}

func (r *donacionRealizadaRepo) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.DonacionRealizada, error) {
	var d model.DonacionRealizada
	err := r.db.WithContext(ctx).
		Preload("Items.Item").
		Preload("Kits.Kit").
		Preload("EntidadGestora").
		First(&d, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *donacionRealizadaRepo) Listar(ctx context.Context, filtro DonacionFiltro) ([]model.DonacionRealizada, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.DonacionRealizada{})
	if filtro.Desde != nil {
		q = q.Where("fecha >= ?", *filtro.Desde)
	}
	if filtro.Hasta != nil {
		q = q.Where("fecha <= ?", *filtro.Hasta)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginar(filtro.Page, filtro.Limit, 20, 100)
	var list []model.DonacionRealizada
	err := q.Preload("Items.Item").Preload("Kits.Kit").Preload("EntidadGestora").
		Order("fecha DESC, created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}
