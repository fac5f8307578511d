package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// ColaEventosEstoque is consumed by the external low-stock alert job.
const ColaEventosEstoque = "eventos:estoque"

const TipoMovimientoEstoque = "estoque.movimiento"

// Job is the generic envelope pushed onto every Redis list.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EventoMovimiento announces that a committed posting or retraction changed stock.
type EventoMovimiento struct {
	Origen     string    `json:"origen"`    // donacion_recibida | donacion_realizada
	Operacion  string    `json:"operacion"` // registro | edicion | eliminacion
	DonacionID string    `json:"donacion_id"`
	ItemIDs    []string  `json:"item_ids"`
	OcurridoEn time.Time `json:"ocurrido_en"`
}

// Dispatcher enqueues events into Redis lists. A Dispatcher without a client
// drops every event, which is how REDIS_URL="" disables publishing.
type Dispatcher struct {
	rdb      *redis.Client
	circuito *Circuito
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb, circuito: NuevoCircuito(5, 30*time.Second)}
}

// EstadoCircuito reports the publish breaker state, or "disabled" without Redis.
func (d *Dispatcher) EstadoCircuito() string {
	if !d.Habilitado() {
		return "disabled"
	}
	return d.circuito.Estado()
}

// Habilitado reports whether events reach Redis.
func (d *Dispatcher) Habilitado() bool { return d != nil && d.rdb != nil }

// PublicarMovimiento pushes ev onto ColaEventosEstoque.
func (d *Dispatcher) PublicarMovimiento(ctx context.Context, ev EventoMovimiento) error {
	if !d.Habilitado() {
		return nil
	}
	encoded, err := codificar(TipoMovimientoEstoque, ev)
	if err != nil {
		return err
	}
	return d.circuito.Ejecutar(func() error {
		return d.rdb.LPush(ctx, ColaEventosEstoque, encoded).Err()
	})
}

func codificar(jobType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data})
}
