package service

import (
	"context"
	"io"
	"time"

	"github.com/NilsonPMMC/sgfs/internal/dto"
	"github.com/NilsonPMMC/sgfs/internal/infra"
	"github.com/NilsonPMMC/sgfs/internal/model"
	"github.com/NilsonPMMC/sgfs/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// EstoqueService is the read side of the stock ledger.
type EstoqueService interface {
	StockActual(ctx context.Context, itemID uuid.UUID) (*dto.StockResponse, error)
	StockActualBulk(ctx context.Context, req dto.StockBulkRequest) (*dto.StockBulkResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	// VerificarConsistencia returns every item with negative derived stock.
	// Any hit means a posting escaped the stock guard and is logged as an error.
	VerificarConsistencia(ctx context.Context) ([]dto.InconsistenciaResponse, error)
	ExportarMovimientos(ctx context.Context, filter dto.MovimientoFilter, w io.Writer) error
}

type estoqueService struct {
	movs  repository.MovimientoRepository
	items repository.ItemRepository
}

func NewEstoqueService(movs repository.MovimientoRepository, items repository.ItemRepository) EstoqueService {
	return &estoqueService{movs: movs, items: items}
}

func (s *estoqueService) StockActual(ctx context.Context, itemID uuid.UUID) (*dto.StockResponse, error) {
	if _, err := s.items.ObtenerPorID(ctx, itemID); err != nil {
		return nil, mapNoEncontrado(err, "ítem")
	}
	total, err := s.movs.StockActual(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return &dto.StockResponse{ItemID: itemID.String(), EstoqueActual: total}, nil
}

func (s *estoqueService) StockActualBulk(ctx context.Context, req dto.StockBulkRequest) (*dto.StockBulkResponse, error) {
	v := nuevaValidacion()
	ids := make([]uuid.UUID, 0, len(req.ItemIDs))
	for i, raw := range req.ItemIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			v.agregar(campoIndice("item_ids", i, ""), "uuid inválido")
			continue
		}
		ids = append(ids, id)
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	stock, err := s.movs.StockActualBulk(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(stock))
	for id, total := range stock {
		out[id.String()] = total
	}
	return &dto.StockBulkResponse{Stock: out}, nil
}

func (s *estoqueService) filtro(filter dto.MovimientoFilter) (repository.MovimientoFiltro, error) {
	v := nuevaValidacion()
	f := repository.MovimientoFiltro{Tipo: filter.Tipo, Page: filter.Page, Limit: filter.Limit}
	if filter.ItemID != "" {
		id, err := uuid.Parse(filter.ItemID)
		if err != nil {
			v.agregar("item_id", "uuid inválido")
		} else {
			f.ItemID = &id
		}
	}
	desde, hasta := parseRango(filter.Desde, filter.Hasta, v)
	f.Desde = desde
	if hasta != nil {
		fin := hasta.Add(24 * time.Hour)
		f.Hasta = &fin
	}
	return f, v.err()
}

func (s *estoqueService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	f, err := s.filtro(filter)
	if err != nil {
		return nil, err
	}
	movs, total, err := s.movs.Listar(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MovimientoResponse, 0, len(movs))
	for _, m := range movs {
		data = append(data, mapMovimiento(m))
	}
	return &dto.MovimientoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *estoqueService) VerificarConsistencia(ctx context.Context) ([]dto.InconsistenciaResponse, error) {
	negativos, err := s.movs.ItemsConStockNegativo(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InconsistenciaResponse, 0, len(negativos))
	for _, n := range negativos {
		log.Error().
			Str("item_id", n.ItemID.String()).
			Str("item", n.Nombre).
			Str("estoque_atual", n.Stock.String()).
			Msg("estoque negativo detectado en el ledger")
		out = append(out, dto.InconsistenciaResponse{
			ItemID:        n.ItemID.String(),
			Nombre:        n.Nombre,
			EstoqueActual: n.Stock,
		})
	}
	return out, nil
}

func (s *estoqueService) ExportarMovimientos(ctx context.Context, filter dto.MovimientoFilter, w io.Writer) error {
	f, err := s.filtro(filter)
	if err != nil {
		return err
	}
	movs, err := s.movs.ListarTodos(ctx, f)
	if err != nil {
		return err
	}
	return infra.EscribirMovimientosXLSX(w, movs)
}

func mapMovimiento(m model.Movimiento) dto.MovimientoResponse {
	r := dto.MovimientoResponse{
		ID:          m.ID.String(),
		ItemID:      m.ItemID.String(),
		Tipo:        m.Tipo,
		Cantidad:    m.Cantidad,
		Observacion: m.Observacion,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
	if m.Item != nil {
		r.ItemNombre = m.Item.Nombre
	}
	r.UsuarioID = uuidPtrString(m.UsuarioID)
	r.DonacionRecibidaID = uuidPtrString(m.DonacionRecibidaID)
	r.DonacionRealizadaID = uuidPtrString(m.DonacionRealizadaID)
	return r
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
