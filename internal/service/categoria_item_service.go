package service

import (
	"context"
	"errors"

	"github.com/NilsonPMMC/sgfs/internal/dto"
	"github.com/NilsonPMMC/sgfs/internal/model"
	"github.com/NilsonPMMC/sgfs/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoriaItemService defines business operations for item categories.
type CategoriaItemService interface {
	Crear(ctx context.Context, req dto.CategoriaItemRequest) (dto.CategoriaItemResponse, error)
	Listar(ctx context.Context) ([]dto.CategoriaItemResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.CategoriaItemRequest) (dto.CategoriaItemResponse, error)
	// Eliminar leaves the category's items uncategorized.
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type categoriaItemService struct {
	repo repository.CategoriaItemRepository
}

func NewCategoriaItemService(repo repository.CategoriaItemRepository) CategoriaItemService {
	return &categoriaItemService{repo: repo}
}

func mapCategoriaItem(c model.CategoriaItem) dto.CategoriaItemResponse {
	return dto.CategoriaItemResponse{ID: c.ID.String(), Nombre: c.Nombre}
}

func (s *categoriaItemService) nombreLibre(ctx context.Context, nombre string, propio uuid.UUID) error {
	existing, err := s.repo.ObtenerPorNombre(ctx, nombre)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != propio {
		return conflicto("ya existe una categoría con el nombre %q", nombre)
	}
	return nil
}

func (s *categoriaItemService) Crear(ctx context.Context, req dto.CategoriaItemRequest) (dto.CategoriaItemResponse, error) {
	if err := s.nombreLibre(ctx, req.Nombre, uuid.Nil); err != nil {
		return dto.CategoriaItemResponse{}, err
	}
	c := &model.CategoriaItem{Nombre: req.Nombre}
	if err := s.repo.Crear(ctx, c); err != nil {
		return dto.CategoriaItemResponse{}, err
	}
	return mapCategoriaItem(*c), nil
}

func (s *categoriaItemService) Listar(ctx context.Context) ([]dto.CategoriaItemResponse, error) {
	list, err := s.repo.Listar(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoriaItemResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoriaItem(c))
	}
	return result, nil
}

func (s *categoriaItemService) Actualizar(ctx context.Context, id uuid.UUID, req dto.CategoriaItemRequest) (dto.CategoriaItemResponse, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return dto.CategoriaItemResponse{}, mapNoEncontrado(err, "categoría")
	}
	if req.Nombre != c.Nombre {
		if err := s.nombreLibre(ctx, req.Nombre, id); err != nil {
			return dto.CategoriaItemResponse{}, err
		}
	}
	c.Nombre = req.Nombre
	if err := s.repo.Actualizar(ctx, c); err != nil {
		return dto.CategoriaItemResponse{}, err
	}
	return mapCategoriaItem(*c), nil
}

func (s *categoriaItemService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.ObtenerPorID(ctx, id); err != nil {
		return mapNoEncontrado(err, "categoría")
	}
	return s.repo.Eliminar(ctx, id)
}
