package service

import (
	"context"
	"errors"

	"github.com/NilsonPMMC/sgfs/internal/dto"
	"github.com/NilsonPMMC/sgfs/internal/model"
	"github.com/NilsonPMMC/sgfs/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemService manages the item catalog. Every response carries the item's
// derived stock.
type ItemService interface {
	Crear(ctx context.Context, req dto.CrearItemRequest) (*dto.ItemResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ItemResponse, error)
	Listar(ctx context.Context, filter dto.ItemFilter) (*dto.ItemListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarItemRequest) (*dto.ItemResponse, error)
	// Eliminar is refused while any movement, kit or donation line references the item.
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type itemService struct {
	repo       repository.ItemRepository
	categorias repository.CategoriaItemRepository
	movs       repository.MovimientoRepository
}

func NewItemService(repo repository.ItemRepository, categorias repository.CategoriaItemRepository, movs repository.MovimientoRepository) ItemService {
	return &itemService{repo: repo, categorias: categorias, movs: movs}
}

func mapItem(it model.Item, stock decimal.Decimal) dto.ItemResponse {
	r := dto.ItemResponse{
		ID:            it.ID.String(),
		Nombre:        it.Nombre,
		Descripcion:   it.Descripcion,
		UnidadMedida:  it.UnidadMedida,
		EstoqueActual: stock,
	}
	if it.Categoria != nil {
		c := mapCategoriaItem(*it.Categoria)
		r.Categoria = &c
	}
	return r
}

func (s *itemService) nombreLibre(ctx context.Context, nombre string, propio uuid.UUID) error {
	existing, err := s.repo.ObtenerPorNombre(ctx, nombre)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != propio {
		return conflicto("ya existe un ítem con el nombre %q", nombre)
	}
	return nil
}

// resolverCategoria validates the optional category reference as a field error.
func (s *itemService) resolverCategoria(ctx context.Context, raw string, v *ValidationError) *model.CategoriaItem {
	id, err := uuid.Parse(raw)
	if err != nil {
		v.agregar("categoria_id", "uuid inválido")
		return nil
	}
	c, err := s.categorias.ObtenerPorID(ctx, id)
	if err != nil {
		v.agregar("categoria_id", "categoría inexistente")
		return nil
	}
	return c
}

func (s *itemService) Crear(ctx context.Context, req dto.CrearItemRequest) (*dto.ItemResponse, error) {
	v := nuevaValidacion()
	it := &model.Item{
		Nombre:       req.Nombre,
		Descripcion:  req.Descripcion,
		UnidadMedida: req.UnidadMedida,
	}
	if req.CategoriaID != nil {
		if c := s.resolverCategoria(ctx, *req.CategoriaID, v); c != nil {
			it.CategoriaID = &c.ID
			it.Categoria = c
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}
	if err := s.nombreLibre(ctx, req.Nombre, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.repo.Crear(ctx, it); err != nil {
		return nil, err
	}
	resp := mapItem(*it, decimal.Zero)
	return &resp, nil
}

func (s *itemService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ItemResponse, error) {
	it, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, mapNoEncontrado(err, "ítem")
	}
	stock, err := s.movs.StockActual(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := mapItem(*it, stock)
	return &resp, nil
}

func (s *itemService) Listar(ctx context.Context, filter dto.ItemFilter) (*dto.ItemListResponse, error) {
	f := repository.ItemFiltro{Busqueda: filter.Busqueda, Page: filter.Page, Limit: filter.Limit}
	if filter.CategoriaID != "" {
		id, err := uuid.Parse(filter.CategoriaID)
		if err != nil {
			return nil, &ValidationError{Fields: map[string]string{"categoria_id": "uuid inválido"}}
		}
		f.CategoriaID = &id
	}

	items, total, err := s.repo.Listar(ctx, f)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	stock, err := s.movs.StockActualBulk(ctx, ids)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		data = append(data, mapItem(it, stock[it.ID]))
	}
	return &dto.ItemListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPaginas(total, filter.Limit),
	}, nil
}

func (s *itemService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarItemRequest) (*dto.ItemResponse, error) {
	it, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, mapNoEncontrado(err, "ítem")
	}

	v := nuevaValidacion()
	switch {
	case req.QuitarCategoria:
		it.CategoriaID = nil
		it.Categoria = nil
	case req.CategoriaID != nil:
		if c := s.resolverCategoria(ctx, *req.CategoriaID, v); c != nil {
			it.CategoriaID = &c.ID
			it.Categoria = c
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	if req.Nombre != nil && *req.Nombre != it.Nombre {
		if err := s.nombreLibre(ctx, *req.Nombre, id); err != nil {
			return nil, err
		}
		it.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		it.Descripcion = *req.Descripcion
	}
	if req.UnidadMedida != nil {
		it.UnidadMedida = *req.UnidadMedida
	}

	if err := s.repo.Actualizar(ctx, it); err != nil {
		return nil, err
	}
	stock, err := s.movs.StockActual(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := mapItem(*it, stock)
	return &resp, nil
}

func (s *itemService) Eliminar(ctx context.Context, id uuid.UUID) error {
	it, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return mapNoEncontrado(err, "ítem")
	}
	refs, err := s.repo.ContarReferencias(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return conflicto("el ítem %q tiene movimientos, kits o donaciones asociados y no puede eliminarse", it.Nombre)
	}
	return s.repo.Eliminar(ctx, id)
}
