package service

import (
	"context"
	"fmt"
	"time"

	"github.com/NilsonPMMC/sgfs/internal/dto"
	"github.com/NilsonPMMC/sgfs/internal/model"
	"github.com/NilsonPMMC/sgfs/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const origenDonacionRecibida = "donacion_recibida"

// DonacionRecibidaService posts donations-in. Each line is recorded together
// with its own entrada movement in the same transaction.
type DonacionRecibidaService interface {
	Registrar(ctx context.Context, usuarioID *uuid.UUID, req dto.RegistrarDonacionRecibidaRequest) (*dto.DonacionRecibidaResponse, error)
	// Actualizar patches the header; a present Lineas retracts and reposts every line.
	Actualizar(ctx context.Context, usuarioID *uuid.UUID, id uuid.UUID, req dto.ActualizarDonacionRecibidaRequest) (*dto.DonacionRecibidaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.DonacionRecibidaResponse, error)
	Listar(ctx context.Context, filter dto.DonacionFilter) (*dto.DonacionRecibidaListResponse, error)
}

type donacionRecibidaService struct {
	repo  repository.DonacionRecibidaRepository
	items repository.ItemRepository
	movs  repository.MovimientoRepository
	dir   Directorio
	pub   Publicador
}

func NewDonacionRecibidaService(
	repo repository.DonacionRecibidaRepository,
	items repository.ItemRepository,
	movs repository.MovimientoRepository,
	dir Directorio,
	pub Publicador,
) DonacionRecibidaService {
	return &donacionRecibidaService{repo: repo, items: items, movs: movs, dir: dir, pub: pub}
}

// resolverDonante validates the donor reference as the "donante" field.
func (s *donacionRecibidaService) resolverDonante(ctx context.Context, req dto.DonanteRequest, v *ValidationError) (model.DonanteTipo, uuid.UUID, string, error) {
	tipo := model.DonanteTipo(req.Tipo)
	if !tipo.Valido() {
		v.agregar("donante.tipo", "debe ser 'entidad' o 'persona'")
		return "", uuid.Nil, "", nil
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		v.agregar("donante.id", "uuid inválido")
		return "", uuid.Nil, "", nil
	}
	r, err := s.dir.ResolverDonante(ctx, tipo, id)
	if err != nil {
		if isNoEncontrado(err) {
			v.agregar("donante", fmt.Sprintf("%s inexistente", tipo))
			return "", uuid.Nil, "", nil
		}
		return "", uuid.Nil, "", err
	}
	return tipo, id, r.Rotulo(), nil
}

func construirLineas(donacionID uuid.UUID, lineas []lineaResuelta, usuarioID *uuid.UUID) ([]model.DonacionRecibidaLinea, []model.Movimiento) {
	filas := make([]model.DonacionRecibidaLinea, 0, len(lineas))
	movs := make([]model.Movimiento, 0, len(lineas))
	obs := fmt.Sprintf("Entrada por donación recibida %s", donacionID)
	for _, l := range lineas {
		item := l.item
		filas = append(filas, model.DonacionRecibidaLinea{
			DonacionRecibidaID: donacionID,
			ItemID:             l.item.ID,
			Cantidad:           l.cantidad,
			Item:               &item,
		})
		m := model.NuevaEntrada(l.item.ID, l.cantidad, usuarioID, obs)
		m.DonacionRecibidaID = &donacionID
		movs = append(movs, m)
	}
	return filas, movs
}

func (s *donacionRecibidaService) Registrar(ctx context.Context, usuarioID *uuid.UUID, req dto.RegistrarDonacionRecibidaRequest) (*dto.DonacionRecibidaResponse, error) {
	v := nuevaValidacion()
	fecha, ok := parseFecha(req.Fecha)
	if !ok {
		v.agregar("fecha", "formato esperado YYYY-MM-DD")
	}
	tipo, donanteID, rotulo, err := s.resolverDonante(ctx, req.Donante, v)
	if err != nil {
		return nil, err
	}
	lineas, err := resolverLineasItems(ctx, s.items, "lineas", req.Lineas, v)
	if err != nil {
		return nil, err
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	d := &model.DonacionRecibida{
		Fecha:         fecha,
		DonanteTipo:   tipo,
		DonanteID:     donanteID,
		Observaciones: req.Observaciones,
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CrearTx(tx, d); err != nil {
			return err
		}
		filas, movs := construirLineas(d.ID, lineas, usuarioID)
		if err := s.repo.CrearLineasTx(tx, filas); err != nil {
			return err
		}
		if err := s.movs.RegistrarTx(tx, movs); err != nil {
			return err
		}
		d.Lineas = filas
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("donacion_id", d.ID.String()).Int("lineas", len(d.Lineas)).Msg("donación recibida registrada")
	publicar(ctx, s.pub, origenDonacionRecibida, "registro", d.ID, itemsDeLineas(d.Lineas))
	resp := mapDonacionRecibida(*d, rotulo)
	return &resp, nil
}

func (s *donacionRecibidaService) Actualizar(ctx context.Context, usuarioID *uuid.UUID, id uuid.UUID, req dto.ActualizarDonacionRecibidaRequest) (*dto.DonacionRecibidaResponse, error) {
	if _, err := s.repo.ObtenerPorID(ctx, id); err != nil {
		return nil, mapNoEncontrado(err, "donación recibida")
	}

	v := nuevaValidacion()
	var fecha time.Time
	if req.Fecha != nil {
		f, ok := parseFecha(*req.Fecha)
		if !ok {
			v.agregar("fecha", "formato esperado YYYY-MM-DD")
		}
		fecha = f
	}
	var (
		tipo      model.DonanteTipo
		donanteID uuid.UUID
	)
	if req.Donante != nil {
		var err error
		tipo, donanteID, _, err = s.resolverDonante(ctx, *req.Donante, v)
		if err != nil {
			return nil, err
		}
	}
	var nuevas []lineaResuelta
	if req.Lineas != nil {
		var err error
		nuevas, err = resolverLineasItems(ctx, s.items, "lineas", *req.Lineas, v)
		if err != nil {
			return nil, err
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	var (
		d          *model.DonacionRecibida
		anteriores []model.DonacionRecibidaLinea
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// The patch applies to the locked row, never to the pre-validation read.
		actual, err := s.repo.BloquearTx(tx, id)
		if err != nil {
			return mapNoEncontrado(err, "donación recibida")
		}
		d = actual
		if req.Fecha != nil {
			d.Fecha = fecha
		}
		if req.Donante != nil {
			d.DonanteTipo, d.DonanteID = tipo, donanteID
		}
		if req.Observaciones != nil {
			d.Observaciones = *req.Observaciones
		}
		if err := s.repo.ActualizarCabeceraTx(tx, d); err != nil {
			return err
		}
		if req.Lineas == nil {
			return nil
		}

		// Stock already shipped out may depend on the lines being replaced.
		anteriores = d.Lineas
		retiro, nombres := retiroDeLineas(anteriores)
		for _, l := range nuevas {
			retiro.Agregar(l.item.ID, l.cantidad.Neg())
			nombres[l.item.ID] = l.item.Nombre
		}
		if err := s.verificarRetiro(tx, retiro, nombres); err != nil {
			return err
		}

		if _, err := s.movs.RetirarPorDonacionRecibidaTx(tx, d.ID); err != nil {
			return err
		}
		if err := s.repo.EliminarLineasTx(tx, d.ID); err != nil {
			return err
		}
		filas, movs := construirLineas(d.ID, nuevas, usuarioID)
		if err := s.repo.CrearLineasTx(tx, filas); err != nil {
			return err
		}
		if err := s.movs.RegistrarTx(tx, movs); err != nil {
			return err
		}
		d.Lineas = filas
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if req.Lineas != nil {
		afectados := append(itemsDeLineas(anteriores), itemsDeLineas(d.Lineas)...)
		log.Info().Str("donacion_id", d.ID.String()).Int("lineas", len(d.Lineas)).Msg("donación recibida: líneas reemplazadas")
		publicar(ctx, s.pub, origenDonacionRecibida, "edicion", d.ID, unicosIDs(afectados))
	}
	return s.responder(ctx, *d)
}

func (s *donacionRecibidaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	var d *model.DonacionRecibida
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		actual, err := s.repo.BloquearTx(tx, id)
		if err != nil {
			return mapNoEncontrado(err, "donación recibida")
		}
		d = actual
		retiro, nombres := retiroDeLineas(d.Lineas)
		if err := s.verificarRetiro(tx, retiro, nombres); err != nil {
			return err
		}
		if _, err := s.movs.RetirarPorDonacionRecibidaTx(tx, d.ID); err != nil {
			return err
		}
		return s.repo.EliminarTx(tx, d.ID)
	})
	if txErr != nil {
		return txErr
	}

	log.Info().Str("donacion_id", d.ID.String()).Msg("donación recibida eliminada")
	publicar(ctx, s.pub, origenDonacionRecibida, "eliminacion", d.ID, itemsDeLineas(d.Lineas))
	return nil
}

// retiroDeLineas is the stock a set of committed lines would give back on removal.
func retiroDeLineas(lineas []model.DonacionRecibidaLinea) (*Demanda, map[uuid.UUID]string) {
	retiro := NuevaDemanda()
	nombres := make(map[uuid.UUID]string)
	for _, l := range lineas {
		retiro.Agregar(l.ItemID, l.Cantidad)
		if l.Item != nil {
			nombres[l.ItemID] = l.Item.Nombre
		}
	}
	return retiro, nombres
}

// verificarRetiro locks the touched items and rejects the change when removing
// the net quantities in retiro would leave any of them below zero.
func (s *donacionRecibidaService) verificarRetiro(tx *gorm.DB, retiro *Demanda, nombres map[uuid.UUID]string) error {
	ids := retiro.Items()
	if len(ids) == 0 {
		return nil
	}
	if err := s.movs.BloquearItemsTx(tx, ids); err != nil {
		return err
	}
	stock, err := s.movs.StockActualBulkTx(tx, ids)
	if err != nil {
		return err
	}

	neto := NuevaDemanda()
	for _, id := range ids {
		if c := retiro.Cantidad(id); c.IsPositive() {
			neto.Agregar(id, c)
		}
	}
	if faltantes := neto.Faltantes(stock, nombres); len(faltantes) > 0 {
		return &InsufficientStockError{Faltantes: faltantes}
	}
	return nil
}

func (s *donacionRecibidaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.DonacionRecibidaResponse, error) {
	d, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, mapNoEncontrado(err, "donación recibida")
	}
	return s.responder(ctx, *d)
}

func (s *donacionRecibidaService) responder(ctx context.Context, d model.DonacionRecibida) (*dto.DonacionRecibidaResponse, error) {
	rotulos, err := s.dir.RotulosDonantes(ctx, []model.DonacionRecibida{d})
	if err != nil {
		return nil, err
	}
	resp := mapDonacionRecibida(d, rotulos[d.DonanteID])
	return &resp, nil
}

func (s *donacionRecibidaService) Listar(ctx context.Context, filter dto.DonacionFilter) (*dto.DonacionRecibidaListResponse, error) {
	v := nuevaValidacion()
	desde, hasta := parseRango(filter.Desde, filter.Hasta, v)
	if err := v.err(); err != nil {
		return nil, err
	}

	list, total, err := s.repo.Listar(ctx, repository.DonacionFiltro{Desde: desde, Hasta: hasta, Page: filter.Page, Limit: filter.Limit})
	if err != nil {
		return nil, err
	}
	rotulos, err := s.dir.RotulosDonantes(ctx, list)
	if err != nil {
		return nil, err
	}

	data := make([]dto.DonacionRecibidaResponse, 0, len(list))
	for _, d := range list {
		data = append(data, mapDonacionRecibida(d, rotulos[d.DonanteID]))
	}
	return &dto.DonacionRecibidaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func itemsDeLineas(lineas []model.DonacionRecibidaLinea) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lineas))
	for _, l := range lineas {
		ids = append(ids, l.ItemID)
	}
	return unicosIDs(ids)
}

func mapLineaItem(id, itemID uuid.UUID, item *model.Item, cantidad decimal.Decimal) dto.LineaItemResponse {
	r := dto.LineaItemResponse{ID: id.String(), ItemID: itemID.String(), Cantidad: cantidad}
	if item != nil {
		r.ItemNombre = item.Nombre
	}
	return r
}

func mapDonacionRecibida(d model.DonacionRecibida, rotulo string) dto.DonacionRecibidaResponse {
	r := dto.DonacionRecibidaResponse{
		ID:    d.ID.String(),
		Fecha: d.Fecha.Format(formatoFecha),
		Donante: dto.DonanteResponse{
			Tipo:   string(d.DonanteTipo),
			ID:     d.DonanteID.String(),
			Nombre: rotulo,
		},
		Observaciones: d.Observaciones,
		Lineas:        make([]dto.LineaItemResponse, 0, len(d.Lineas)),
		CreatedAt:     d.CreatedAt.Format(time.RFC3339),
	}
	for _, l := range d.Lineas {
		r.Lineas = append(r.Lineas, mapLineaItem(l.ID, l.ItemID, l.Item, l.Cantidad))
	}
	return r
}
