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

// KitService manages kit definitions and answers how many of each kit
// current stock can assemble.
type KitService interface {
	Crear(ctx context.Context, req dto.KitRequest) (*dto.KitResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.KitResponse, error)
	Listar(ctx context.Context, filter dto.KitFilter) (*dto.KitListResponse, error)
	// Actualizar replaces name, description and the whole component set.
	Actualizar(ctx context.Context, id uuid.UUID, req dto.KitRequest) (*dto.KitResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	Factibilidad(ctx context.Context, req dto.FactibilidadRequest) (*dto.FactibilidadResponse, error)
}

type kitService struct {
	repo  repository.KitRepository
	items repository.ItemRepository
	movs  repository.MovimientoRepository
}

func NewKitService(repo repository.KitRepository, items repository.ItemRepository, movs repository.MovimientoRepository) KitService {
	return &kitService{repo: repo, items: items, movs: movs}
}

func mapKit(k model.Kit, montable int) dto.KitResponse {
	r := dto.KitResponse{
		ID:               k.ID.String(),
		Nombre:           k.Nombre,
		Descripcion:      k.Descripcion,
		Componentes:      make([]dto.ComponenteResponse, 0, len(k.Componentes)),
		CantidadMontable: montablePtr(montable),
	}
	for _, c := range k.Componentes {
		cr := dto.ComponenteResponse{
			ID:       c.ID.String(),
			ItemID:   c.ItemID.String(),
			Cantidad: c.Cantidad,
		}
		if c.Item != nil {
			cr.ItemNombre = c.Item.Nombre
			cr.UnidadMedida = c.Item.UnidadMedida
		}
		r.Componentes = append(r.Componentes, cr)
	}
	return r
}

// montablesDe fetches stock once for every item the kits reference.
func (s *kitService) montablesDe(ctx context.Context, kits []model.Kit) (map[uuid.UUID]int, error) {
	stock, err := s.movs.StockActualBulk(ctx, itemsDeKits(kits))
	if err != nil {
		return nil, err
	}
	return CalcularMontables(kits, stock), nil
}

// componentes validates the request rows and resolves their items in one query.
func (s *kitService) componentes(ctx context.Context, req dto.KitRequest) ([]model.KitComponente, error) {
	v := nuevaValidacion()
	ids := make([]uuid.UUID, len(req.Componentes))
	parseados := make([]bool, len(req.Componentes))
	vistos := make(map[uuid.UUID]int)
	for i, c := range req.Componentes {
		id, err := uuid.Parse(c.ItemID)
		if err != nil {
			v.agregar(campoIndice("componentes", i, "item_id"), "uuid inválido")
			continue
		}
		if j, dup := vistos[id]; dup {
			v.agregar(campoIndice("componentes", i, "item_id"), "ítem repetido en el kit (ya figura en componentes["+itoa(j)+"])")
		}
		vistos[id] = i
		ids[i], parseados[i] = id, true
		if msg := validarCantidad(c.Cantidad); msg != "" {
			v.agregar(campoIndice("componentes", i, "cantidad"), msg)
		}
	}

	encontrados, err := s.items.BuscarPorIDs(ctx, unicosIDs(ids))
	if err != nil {
		return nil, err
	}
	porID := make(map[uuid.UUID]model.Item, len(encontrados))
	for _, it := range encontrados {
		porID[it.ID] = it
	}

	out := make([]model.KitComponente, 0, len(req.Componentes))
	for i, c := range req.Componentes {
		if !parseados[i] {
			continue
		}
		it, ok := porID[ids[i]]
		if !ok {
			v.agregar(campoIndice("componentes", i, "item_id"), "ítem inexistente")
			continue
		}
		item := it
		out = append(out, model.KitComponente{ItemID: it.ID, Cantidad: c.Cantidad, Item: &item})
	}
	if err := v.err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *kitService) nombreLibre(ctx context.Context, nombre string, propio uuid.UUID) error {
	existing, err := s.repo.ObtenerPorNombre(ctx, nombre)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != propio {
		return conflicto("ya existe un kit con el nombre %q", nombre)
	}
	return nil
}

func (s *kitService) Crear(ctx context.Context, req dto.KitRequest) (*dto.KitResponse, error) {
	comps, err := s.componentes(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.nombreLibre(ctx, req.Nombre, uuid.Nil); err != nil {
		return nil, err
	}

	k := &model.Kit{Nombre: req.Nombre, Descripcion: req.Descripcion, Componentes: comps}
	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CrearTx(tx, k)
	}); err != nil {
		return nil, err
	}

	montables, err := s.montablesDe(ctx, []model.Kit{*k})
	if err != nil {
		return nil, err
	}
	resp := mapKit(*k, montables[k.ID])
	return &resp, nil
}

func (s *kitService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.KitResponse, error) {
	k, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, mapNoEncontrado(err, "kit")
	}
	montables, err := s.montablesDe(ctx, []model.Kit{*k})
	if err != nil {
		return nil, err
	}
	resp := mapKit(*k, montables[k.ID])
	return &resp, nil
}

func (s *kitService) Listar(ctx context.Context, filter dto.KitFilter) (*dto.KitListResponse, error) {
	kits, total, err := s.repo.Listar(ctx, repository.KitFiltro{
		Busqueda: filter.Busqueda,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	montables, err := s.montablesDe(ctx, kits)
	if err != nil {
		return nil, err
	}

	data := make([]dto.KitResponse, 0, len(kits))
	for _, k := range kits {
		data = append(data, mapKit(k, montables[k.ID]))
	}
	return &dto.KitListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPaginas(total, filter.Limit),
	}, nil
}

func (s *kitService) Actualizar(ctx context.Context, id uuid.UUID, req dto.KitRequest) (*dto.KitResponse, error) {
	k, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, mapNoEncontrado(err, "kit")
	}
	comps, err := s.componentes(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Nombre != k.Nombre {
		if err := s.nombreLibre(ctx, req.Nombre, id); err != nil {
			return nil, err
		}
	}

	k.Nombre = req.Nombre
	k.Descripcion = req.Descripcion
	k.Componentes = comps
	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.ReemplazarTx(tx, k)
	}); err != nil {
		return nil, err
	}

	montables, err := s.montablesDe(ctx, []model.Kit{*k})
	if err != nil {
		return nil, err
	}
	resp := mapKit(*k, montables[k.ID])
	return &resp, nil
}

func (s *kitService) Eliminar(ctx context.Context, id uuid.UUID) error {
	k, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return mapNoEncontrado(err, "kit")
	}
	n, err := s.repo.ContarSalidas(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return conflicto("el kit %q figura en donaciones realizadas y no puede eliminarse", k.Nombre)
	}
	return s.repo.Eliminar(ctx, id)
}

func (s *kitService) Factibilidad(ctx context.Context, req dto.FactibilidadRequest) (*dto.FactibilidadResponse, error) {
	v := nuevaValidacion()
	ids := make([]uuid.UUID, len(req.KitIDs))
	for i, raw := range req.KitIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			v.agregar(campoIndice("kit_ids", i, ""), "uuid inválido")
			continue
		}
		ids[i] = id
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	kits, err := s.repo.BuscarPorIDs(ctx, unicosIDs(ids))
	if err != nil {
		return nil, err
	}
	encontrados := make(map[uuid.UUID]struct{}, len(kits))
	for _, k := range kits {
		encontrados[k.ID] = struct{}{}
	}
	for i, id := range ids {
		if _, ok := encontrados[id]; !ok {
			v.agregar(campoIndice("kit_ids", i, ""), "kit inexistente")
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	montables, err := s.montablesDe(ctx, kits)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*int, len(montables))
	for id, n := range montables {
		out[id.String()] = montablePtr(n)
	}
	return &dto.FactibilidadResponse{Montables: out}, nil
}
