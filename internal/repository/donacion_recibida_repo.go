package repository

import (
	"context"
	"time"

	"github.com/NilsonPMMC/sgfs/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DonacionFiltro is shared by both donation listings.
type DonacionFiltro struct {
	Desde *time.Time
	Hasta *time.Time // inclusive
	Page  int
	Limit int
}

type DonacionRecibidaRepository interface {
	CrearTx(tx *gorm.DB, d *model.DonacionRecibida) error
	CrearLineasTx(tx *gorm.DB, lineas []model.DonacionRecibidaLinea) error
	ActualizarCabeceraTx(tx *gorm.DB, d *model.DonacionRecibida) error
	EliminarLineasTx(tx *gorm.DB, donacionID uuid.UUID) error
	EliminarTx(tx *gorm.DB, id uuid.UUID) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.DonacionRecibida, error)
	// BloquearTx locks the donation row FOR UPDATE and reads its lines inside tx.
	BloquearTx(tx *gorm.DB, id uuid.UUID) (*model.DonacionRecibida, error)
	Listar(ctx context.Context, filtro DonacionFiltro) ([]model.DonacionRecibida, int64, error)
	DB() *gorm.DB
}

type donacionRecibidaRepo struct{ db *gorm.DB }

func NewDonacionRecibidaRepository(db *gorm.DB) DonacionRecibidaRepository {
	return &donacionRecibidaRepo{db: db}
}

func (r *donacionRecibidaRepo) DB() *gorm.DB { return r.db }

func (r *donacionRecibidaRepo) CrearTx(tx *gorm.DB, d *model.DonacionRecibida) error {
	return tx.Omit(clause.Associations).Create(d).Error
}

func (r *donacionRecibidaRepo) CrearLineasTx(tx *gorm.DB, lineas []model.DonacionRecibidaLinea) error {
	if len(lineas) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Create(&lineas).Error
}

func (r *donacionRecibidaRepo) ActualizarCabeceraTx(tx *gorm.DB, d *model.DonacionRecibida) error {
	return tx.Model(&model.DonacionRecibida{}).Where("id = ?", d.ID).Updates(map[string]interface{}{
		"fecha":         d.Fecha,
		"donante_tipo":  d.DonanteTipo,
		"donante_id":    d.DonanteID,
		"observaciones": d.Observaciones,
	}).Error
}

func (r *donacionRecibidaRepo) EliminarLineasTx(tx *gorm.DB, donacionID uuid.UUID) error {
	return tx.Where("donacion_recibida_id = ?", donacionID).Delete(&model.DonacionRecibidaLinea{}).Error
}

func (r *donacionRecibidaRepo) EliminarTx(tx *gorm.DB, id uuid.UUID) error {
	if err := r.EliminarLineasTx(tx, id); err != nil {
		return err
	}
	return tx.Delete(&model.DonacionRecibida{}, "id = ?", id).Error
}

func (r *donacionRecibidaRepo) ObtenerPorID(ctx context.Context, id uuid.UUID) (*model.DonacionRecibida, error) {
	var d model.DonacionRecibida
	if err := r.db.WithContext(ctx).Preload("Lineas.Item").First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *donacionRecibidaRepo) BloquearTx(tx *gorm.DB, id uuid.UUID) (*model.DonacionRecibida, error) {
	var d model.DonacionRecibida
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	// Lines only change under the parent lock, so a plain read is stable here.
	if err := tx.Preload("Item").Where("donacion_recibida_id = ?", id).Find(&d.Lineas).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *donacionRecibidaRepo) Listar(ctx context.Context, filtro DonacionFiltro) ([]model.DonacionRecibida, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.DonacionRecibida{})
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
	var list []model.DonacionRecibida
	err := q.Preload("Lineas.Item").Order("fecha DESC, created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}
