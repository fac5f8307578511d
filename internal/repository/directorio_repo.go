package repository

import (
	"context"

	"github.com/NilsonPMMC/sgfs/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DirectorioRepository reads the CRM tables. It never writes.
type DirectorioRepository interface {
	ObtenerEntidad(ctx context.Context, id uuid.UUID) (*model.Entidad, error)
	ObtenerPersona(ctx context.Context, id uuid.UUID) (*model.PersonaFisica, error)
	EntidadesPorIDs(ctx context.Context, ids []uuid.UUID) ([]model.Entidad, error)
	PersonasPorIDs(ctx context.Context, ids []uuid.UUID) ([]model.PersonaFisica, error)
}

type directorioRepo struct{ db *gorm.DB }

func NewDirectorioRepository(db *gorm.DB) DirectorioRepository { return &directorioRepo{db: db} }

func (r *directorioRepo) ObtenerEntidad(ctx context.Context, id uuid.UUID) (*model.Entidad, error) {
	var e model.Entidad
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *directorioRepo) ObtenerPersona(ctx context.Context, id uuid.UUID) (*model.PersonaFisica, error) {
	var p model.PersonaFisica
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *directorioRepo) EntidadesPorIDs(ctx context.Context, ids []uuid.UUID) ([]model.Entidad, error) {
	var list []model.Entidad
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *directorioRepo) PersonasPorIDs(ctx context.Context, ids []uuid.UUID) ([]model.PersonaFisica, error) {
	var list []model.PersonaFisica
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}
