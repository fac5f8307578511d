package service

import (
	"context"
	"time"

	"github.com/NilsonPMMC/sgfs/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Publicador receives stock-change notifications once a posting has committed.
type Publicador interface {
	PublicarMovimiento(ctx context.Context, ev worker.EventoMovimiento) error
}

// publicar is best-effort: the posting is already durable, so a failure is only logged.
func publicar(ctx context.Context, p Publicador, origen, operacion string, donacionID uuid.UUID, items []uuid.UUID) {
	if p == nil {
		return
	}
	ids := make([]string, 0, len(items))
	for _, id := range items {
		ids = append(ids, id.String())
	}
	ev := worker.EventoMovimiento{
		Origen:     origen,
		Operacion:  operacion,
		DonacionID: donacionID.String(),
		ItemIDs:    ids,
		OcurridoEn: time.Now().UTC(),
	}
	if err := p.PublicarMovimiento(ctx, ev); err != nil {
		log.Warn().Err(err).Str("donacion_id", ev.DonacionID).Str("origen", origen).Msg("no se pudo publicar evento de estoque")
	}
}
