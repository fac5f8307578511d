package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NilsonPMMC/sgfs/internal/dto"
	"github.com/NilsonPMMC/sgfs/internal/infra"
	"github.com/NilsonPMMC/sgfs/internal/model"
	"github.com/NilsonPMMC/sgfs/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const origenDonacionRealizada = "donacion_realizada"

// DonacionRealizadaService posts donations-out to managing organizations.
type DonacionRealizadaService interface {
	// Registrar expands kit lines, aggregates demand per item and posts one
	// salida per item, or nothing at all when any item falls short.
	Registrar(ctx context.Context, usuarioID *uuid.UUID, req dto.RegistrarDonacionRealizadaRequest) (*dto.DonacionRealizadaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.DonacionRealizadaResponse, error)
	Listar(ctx context.Context, filter dto.DonacionFilter) (*dto.DonacionRealizadaListResponse, error)
	// Comprobante renders the delivery receipt as a PDF.
	Comprobante(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type donacionRealizadaService struct {
	repo         repository.DonacionRealizadaRepository
	items        repository.ItemRepository
	kits         repository.KitRepository
	movs         repository.MovimientoRepository
	dir          Directorio
	pub          Publicador
	organizacion string
}

func NewDonacionRealizadaService(
	repo repository.DonacionRealizadaRepository,
	items repository.ItemRepository,
	kits repository.KitRepository,
	movs repository.MovimientoRepository,
	dir Directorio,
	pub Publicador,
	organizacion string,
) DonacionRealizadaService {
	return &donacionRealizadaService{
		repo:         repo,
		items:        items,
		kits:         kits,
		movs:         movs,
		dir:          dir,
		pub:          pub,
		organizacion: organizacion,
	}
}

type lineaKitResuelta struct {
	indice   int
	kit      model.Kit
	cantidad int
}

func (s *donacionRealizadaService) resolverKits(ctx context.Context, lineas []dto.LineaKitRequest, v *ValidationError) ([]lineaKitResuelta, error) {
	ids := make([]uuid.UUID, len(lineas))
	parseados := make([]bool, len(lineas))
	for i, l := range lineas {
		if l.Cantidad <= 0 {
			v.agregar(campoIndice("kits", i, "cantidad"), "la cantidad debe ser un entero mayor que cero")
		}
		id, err := uuid.Parse(l.KitID)
		if err != nil {
			v.agregar(campoIndice("kits", i, "kit_id"), "uuid inválido")
			continue
		}
		ids[i], parseados[i] = id, true
	}

	encontrados, err := s.kits.BuscarPorIDs(ctx, unicosIDs(ids))
	if err != nil {
		return nil, err
	}
	porID := make(map[uuid.UUID]model.Kit, len(encontrados))
	for _, k := range encontrados {
		porID[k.ID] = k
	}

	out := make([]lineaKitResuelta, 0, len(lineas))
	for i, l := range lineas {
		if !parseados[i] {
			continue
		}
		k, ok := porID[ids[i]]
		switch {
		case !ok:
			v.agregar(campoIndice("kits", i, "kit_id"), "kit inexistente")
		case len(k.Componentes) == 0:
			v.agregar(campoIndice("kits", i, "kit_id"), "el kit no tiene componentes")
		default:
			out = append(out, lineaKitResuelta{indice: i, kit: k, cantidad: l.Cantidad})
		}
	}
	return out, nil
}

func (s *donacionRealizadaService) resolverGestora(ctx context.Context, raw string, v *ValidationError) (*model.Entidad, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		v.agregar("entidad_gestora_id", "uuid inválido")
		return nil, nil
	}
	e, err := s.dir.EntidadGestora(ctx, id)
	switch {
	case err == nil:
		return e, nil
	case isNoEncontrado(err):
		v.agregar("entidad_gestora_id", "entidad inexistente")
	case errors.Is(err, errNoGestora):
		v.agregar("entidad_gestora_id", errNoGestora.Error())
	default:
		return nil, err
	}
	return nil, nil
}

func (s *donacionRealizadaService) Registrar(ctx context.Context, usuarioID *uuid.UUID, req dto.RegistrarDonacionRealizadaRequest) (*dto.DonacionRealizadaResponse, error) {
	// 1. Validate every line, collecting all field errors
	v := nuevaValidacion()
	fecha, ok := parseFecha(req.Fecha)
	if !ok {
		v.agregar("fecha", "formato esperado YYYY-MM-DD")
	}
	gestora, err := s.resolverGestora(ctx, req.EntidadGestoraID, v)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 && len(req.Kits) == 0 {
		v.agregar("items", "se requiere al menos un ítem o kit")
	}
	lineas, err := resolverLineasItems(ctx, s.items, "items", req.Items, v)
	if err != nil {
		return nil, err
	}
	kits, err := s.resolverKits(ctx, req.Kits, v)
	if err != nil {
		return nil, err
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	d := &model.DonacionRealizada{
		Fecha:            fecha,
		EntidadGestoraID: gestora.ID,
		Observaciones:    req.Observaciones,
		EntidadGestora:   gestora,
	}
	var (
		salidas  []model.Movimiento
		demanda  *Demanda
		catalogo map[uuid.UUID]model.Item
	)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// 2. Expand kits, as committed now, and aggregate demand per item
		if err := s.recomponerKits(tx, kits); err != nil {
			return err
		}
		demanda, catalogo = armarDemanda(lineas, kits)
		nombres := make(map[uuid.UUID]string, len(catalogo))
		for id, it := range catalogo {
			nombres[id] = it.Nombre
		}

		// 3. Lock and read stock for exactly the demanded items
		ids := demanda.Items()
		if err := s.movs.BloquearItemsTx(tx, ids); err != nil {
			return err
		}
		stock, err := s.movs.StockActualBulkTx(tx, ids)
		if err != nil {
			return err
		}

		// 4. Reject wholesale on any shortfall
		if faltantes := demanda.Faltantes(stock, nombres); len(faltantes) > 0 {
			return &InsufficientStockError{Faltantes: faltantes}
		}

		// 5. Parent, aggregated ledger postings, then the request-shaped detail rows
		if err := s.repo.CrearTx(tx, d); err != nil {
			return err
		}

		obs := fmt.Sprintf("Salida por donación realizada %s", d.ID)
		salidas = make([]model.Movimiento, 0, len(ids))
		for _, id := range ids {
			m := model.NuevaSalida(id, demanda.Cantidad(id), usuarioID, obs)
			m.DonacionRealizadaID = &d.ID
			salidas = append(salidas, m)
		}
		if err := s.movs.RegistrarTx(tx, salidas); err != nil {
			return err
		}

		d.Items = make([]model.ItemSalida, 0, len(lineas))
		for _, l := range lineas {
			item := l.item
			d.Items = append(d.Items, model.ItemSalida{DonacionRealizadaID: d.ID, ItemID: l.item.ID, Cantidad: l.cantidad, Item: &item})
		}
		if err := s.repo.CrearItemsTx(tx, d.Items); err != nil {
			return err
		}

		d.Kits = make([]model.KitSalida, 0, len(kits))
		for _, lk := range kits {
			kit := lk.kit
			d.Kits = append(d.Kits, model.KitSalida{DonacionRealizadaID: d.ID, KitID: lk.kit.ID, Cantidad: lk.cantidad, Kit: &kit})
		}
		return s.repo.CrearKitsTx(tx, d.Kits)
	})
	if txErr != nil {
		var ise *InsufficientStockError
		if errors.As(txErr, &ise) {
			log.Warn().Int("faltantes", len(ise.Faltantes)).Msg("donación realizada rechazada por stock insuficiente")
		}
		return nil, txErr
	}

	for i := range salidas {
		it := catalogo[salidas[i].ItemID]
		salidas[i].Item = &it
	}
	log.Info().Str("donacion_id", d.ID.String()).Int("items", len(salidas)).Msg("donación realizada registrada")
	publicar(ctx, s.pub, origenDonacionRealizada, "registro", d.ID, demanda.Items())

	resp := mapDonacionRealizada(*d, salidas)
	return &resp, nil
}

// recomponerKits replaces each kit's composition with the committed one, read
// under a share lock held until the posting commits.
func (s *donacionRealizadaService) recomponerKits(tx *gorm.DB, kits []lineaKitResuelta) error {
	if len(kits) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(kits))
	for _, lk := range kits {
		ids = append(ids, lk.kit.ID)
	}
	comps, err := s.kits.ComponentesTx(tx, unicosIDs(ids))
	if err != nil {
		return err
	}
	porKit := make(map[uuid.UUID][]model.KitComponente, len(ids))
	for _, c := range comps {
		porKit[c.KitID] = append(porKit[c.KitID], c)
	}

	v := nuevaValidacion()
	for i := range kits {
		kits[i].kit.Componentes = porKit[kits[i].kit.ID]
		if len(kits[i].kit.Componentes) == 0 {
			v.agregar(campoIndice("kits", kits[i].indice, "kit_id"), "el kit no tiene componentes")
		}
	}
	return v.err()
}

func armarDemanda(lineas []lineaResuelta, kits []lineaKitResuelta) (*Demanda, map[uuid.UUID]model.Item) {
	demanda := NuevaDemanda()
	catalogo := make(map[uuid.UUID]model.Item)
	for _, l := range lineas {
		demanda.Agregar(l.item.ID, l.cantidad)
		catalogo[l.item.ID] = l.item
	}
	for _, lk := range kits {
		demanda.AgregarKit(lk.kit, lk.cantidad)
		for _, c := range lk.kit.Componentes {
			if c.Item != nil {
				catalogo[c.ItemID] = *c.Item
			}
		}
	}
	return demanda, catalogo
}

func (s *donacionRealizadaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	d, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return mapNoEncontrado(err, "donación realizada")
	}
	salidas, err := s.movs.ListarPorDonacionRealizada(ctx, id)
	if err != nil {
		return err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.movs.RetirarPorDonacionRealizadaTx(tx, d.ID); err != nil {
			return err
		}
		return s.repo.EliminarTx(tx, d.ID)
	})
	if txErr != nil {
		return txErr
	}

	afectados := make([]uuid.UUID, 0, len(salidas))
	for _, m := range salidas {
		afectados = append(afectados, m.ItemID)
	}
	log.Info().Str("donacion_id", d.ID.String()).Int("movimientos", len(salidas)).Msg("donación realizada eliminada")
	publicar(ctx, s.pub, origenDonacionRealizada, "eliminacion", d.ID, unicosIDs(afectados))
	return nil
}

func (s *donacionRealizadaService) cargar(ctx context.Context, id uuid.UUID) (*model.DonacionRealizada, []model.Movimiento, error) {
	d, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, nil, mapNoEncontrado(err, "donación realizada")
	}
	salidas, err := s.movs.ListarPorDonacionRealizada(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return d, salidas, nil
}

func (s *donacionRealizadaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.DonacionRealizadaResponse, error) {
	d, salidas, err := s.cargar(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := mapDonacionRealizada(*d, salidas)
	return &resp, nil
}

func (s *donacionRealizadaService) Listar(ctx context.Context, filter dto.DonacionFilter) (*dto.DonacionRealizadaListResponse, error) {
	v := nuevaValidacion()
	desde, hasta := parseRango(filter.Desde, filter.Hasta, v)
	if err := v.err(); err != nil {
		return nil, err
	}
	list, total, err := s.repo.Listar(ctx, repository.DonacionFiltro{Desde: desde, Hasta: hasta, Page: filter.Page, Limit: filter.Limit})
	if err != nil {
		return nil, err
	}
	data := make([]dto.DonacionRealizadaResponse, 0, len(list))
	for _, d := range list {
		data = append(data, mapDonacionRealizada(d, nil))
	}
	return &dto.DonacionRealizadaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *donacionRealizadaService) Comprobante(ctx context.Context, id uuid.UUID) ([]byte, error) {
	d, salidas, err := s.cargar(ctx, id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := infra.GenerarComprobanteDonacion(&buf, s.organizacion, d, salidas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mapDonacionRealizada(d model.DonacionRealizada, salidas []model.Movimiento) dto.DonacionRealizadaResponse {
	r := dto.DonacionRealizadaResponse{
		ID:             d.ID.String(),
		Fecha:          d.Fecha.Format(formatoFecha),
		EntidadGestora: dto.EntidadResponse{ID: d.EntidadGestoraID.String()},
		Observaciones:  d.Observaciones,
		Items:          make([]dto.LineaItemResponse, 0, len(d.Items)),
		Kits:           make([]dto.LineaKitResponse, 0, len(d.Kits)),
		Salidas:        make([]dto.MovimientoResponse, 0, len(salidas)),
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
	}
	if d.EntidadGestora != nil {
		r.EntidadGestora.Nombre = d.EntidadGestora.Rotulo()
	}
	for _, it := range d.Items {
		r.Items = append(r.Items, mapLineaItem(it.ID, it.ItemID, it.Item, it.Cantidad))
	}
	for _, k := range d.Kits {
		lk := dto.LineaKitResponse{ID: k.ID.String(), KitID: k.KitID.String(), Cantidad: k.Cantidad}
		if k.Kit != nil {
			lk.KitNombre = k.Kit.Nombre
		}
		r.Kits = append(r.Kits, lk)
	}
	for _, m := range salidas {
		r.Salidas = append(r.Salidas, mapMovimiento(m))
	}
	return r
}
