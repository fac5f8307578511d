package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodificar_EnvuelveElPayload(t *testing.T) {
	ev := EventoMovimiento{
		Origen:     "donacion_realizada",
		Operacion:  "registro",
		DonacionID: "d-1",
		ItemIDs:    []string{"a", "b"},
		OcurridoEn: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	raw, err := codificar(TipoMovimientoEstoque, ev)
	require.NoError(t, err)

	var job Job
	require.NoError(t, json.Unmarshal(raw, &job))
	assert.Equal(t, TipoMovimientoEstoque, job.Type)

	var got EventoMovimiento
	require.NoError(t, json.Unmarshal(job.Payload, &got))
	assert.Equal(t, ev, got)
}

func TestDispatcher_SinRedisNoPublica(t *testing.T) {
	d := NewDispatcher(nil)
	assert.False(t, d.Habilitado())
	assert.NoError(t, d.PublicarMovimiento(context.Background(), EventoMovimiento{}))

	var nilDispatcher *Dispatcher
	assert.NoError(t, nilDispatcher.PublicarMovimiento(context.Background(), EventoMovimiento{}))
}
