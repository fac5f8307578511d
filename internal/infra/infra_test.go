package infra

import (
	"bytes"
	"testing"
	"time"

	"github.com/NilsonPMMC/sgfs/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func donacionDePrueba() (*model.DonacionRealizada, []model.Movimiento) {
	arroz := &model.Item{ID: uuid.New(), Nombre: "Arroz 5kg", UnidadMedida: "pacote"}
	cesta := &model.Kit{ID: uuid.New(), Nombre: "Cesta básica"}
	d := &model.DonacionRealizada{
		ID:               uuid.New(),
		Fecha:            time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		EntidadGestoraID: uuid.New(),
		Observaciones:    "Entrega mensual",
		EntidadGestora:   &model.Entidad{RazonSocial: "Associação Bairro Novo", NombreFantasia: "ABN"},
		Items:            []model.ItemSalida{{ItemID: arroz.ID, Cantidad: decimal.NewFromInt(2), Item: arroz}},
		Kits:             []model.KitSalida{{KitID: cesta.ID, Cantidad: 3, Kit: cesta}},
	}
	salida := model.NuevaSalida(arroz.ID, decimal.NewFromInt(8), nil, "Salida por donación realizada")
	salida.DonacionRealizadaID = &d.ID
	salida.Item = arroz
	salida.CreatedAt = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	return d, []model.Movimiento{salida}
}

func TestGenerarComprobanteDonacion(t *testing.T) {
	d, salidas := donacionDePrueba()

	var buf bytes.Buffer
	require.NoError(t, GenerarComprobanteDonacion(&buf, "Fundo Social", d, salidas))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestEscribirMovimientosXLSX(t *testing.T) {
	d, salidas := donacionDePrueba()

	var buf bytes.Buffer
	require.NoError(t, EscribirMovimientosXLSX(&buf, salidas))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(hojaMovimientos)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ítem", rows[0][1])
	assert.Equal(t, "Arroz 5kg", rows[1][1])
	assert.Equal(t, model.MovimientoSalida, rows[1][2])
	assert.Equal(t, "-8", rows[1][3])
	assert.Equal(t, "donación realizada", rows[1][4])
	assert.Equal(t, d.ID.String(), rows[1][5])
}

func TestEscribirMovimientosXLSX_SinFilas(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EscribirMovimientosXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(hojaMovimientos)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestNewRedis_SinURLDeshabilitaEventos(t *testing.T) {
	rdb, err := NewRedis("")
	require.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestNewRedis_URLInvalida(t *testing.T) {
	rdb, err := NewRedis("http://localhost:6379")
	assert.Error(t, err)
	assert.Nil(t, rdb)
}
