package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/NilsonPMMC/sgfs/internal/model"
	"github.com/NilsonPMMC/sgfs/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rotulable is a directory record that can label a donation.
type Rotulable interface {
	Rotulo() string
}

var errNoGestora = errors.New("la entidad no está habilitada como gestora")

// Directorio resolves donor and recipient references against the CRM tables.
type Directorio interface {
	// ResolverDonante maps a (tipo, id) pair to the concrete record it names.
	ResolverDonante(ctx context.Context, tipo model.DonanteTipo, id uuid.UUID) (Rotulable, error)
	EntidadGestora(ctx context.Context, id uuid.UUID) (*model.Entidad, error)
	// RotulosDonantes labels a page of donations with two queries at most.
	RotulosDonantes(ctx context.Context, donaciones []model.DonacionRecibida) (map[uuid.UUID]string, error)
}

type directorio struct {
	repo repository.DirectorioRepository
}

func NewDirectorio(repo repository.DirectorioRepository) Directorio {
	return &directorio{repo: repo}
}

func (d *directorio) ResolverDonante(ctx context.Context, tipo model.DonanteTipo, id uuid.UUID) (Rotulable, error) {
	switch tipo {
	case model.DonanteEntidad:
		e, err := d.repo.ObtenerEntidad(ctx, id)
		if err != nil {
			return nil, mapNoEncontrado(err, "entidad")
		}
		return *e, nil
	case model.DonantePersona:
		p, err := d.repo.ObtenerPersona(ctx, id)
		if err != nil {
			return nil, mapNoEncontrado(err, "persona")
		}
		return *p, nil
	default:
		return nil, fmt.Errorf("tipo de donante desconocido %q", tipo)
	}
}

func (d *directorio) EntidadGestora(ctx context.Context, id uuid.UUID) (*model.Entidad, error) {
	e, err := d.repo.ObtenerEntidad(ctx, id)
	if err != nil {
		return nil, mapNoEncontrado(err, "entidad")
	}
	if !e.EsGestor {
		return nil, errNoGestora
	}
	return e, nil
}

func (d *directorio) RotulosDonantes(ctx context.Context, donaciones []model.DonacionRecibida) (map[uuid.UUID]string, error) {
	var entidadIDs, personaIDs []uuid.UUID
	for _, don := range donaciones {
		switch don.DonanteTipo {
		case model.DonanteEntidad:
			entidadIDs = append(entidadIDs, don.DonanteID)
		case model.DonantePersona:
			personaIDs = append(personaIDs, don.DonanteID)
		}
	}

	rotulos := make(map[uuid.UUID]string, len(donaciones))
	entidades, err := d.repo.EntidadesPorIDs(ctx, entidadIDs)
	if err != nil {
		return nil, err
	}
	for _, e := range entidades {
		rotulos[e.ID] = e.Rotulo()
	}
	personas, err := d.repo.PersonasPorIDs(ctx, personaIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range personas {
		rotulos[p.ID] = p.Rotulo()
	}
	return rotulos, nil
}

// mapNoEncontrado turns gorm.ErrRecordNotFound into ErrNoEncontrado.
func mapNoEncontrado(err error, recurso string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return noEncontrado(recurso)
	}
	return err
}
