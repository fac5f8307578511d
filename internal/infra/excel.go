package infra

import (
	"fmt"
	"io"

	"github.com/NilsonPMMC/sgfs/internal/model"

	"github.com/xuri/excelize/v2"
)

const hojaMovimientos = "Movimientos"

// EscribirMovimientosXLSX exports ledger rows, one per line, oldest first.
func EscribirMovimientosXLSX(w io.Writer, movs []model.Movimiento) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", hojaMovimientos); err != nil {
		return err
	}

	encabezado := []interface{}{"Fecha", "Ítem", "Tipo", "Cantidad", "Origen", "Donación", "Observación"}
	if err := f.SetSheetRow(hojaMovimientos, "A1", &encabezado); err != nil {
		return err
	}

	for i, m := range movs {
		nombre := ""
		if m.Item != nil {
			nombre = m.Item.Nombre
		}
		origen, donacion := "", ""
		switch {
		case m.DonacionRecibidaID != nil:
			origen, donacion = "donación recibida", m.DonacionRecibidaID.String()
		case m.DonacionRealizadaID != nil:
			origen, donacion = "donación realizada", m.DonacionRealizadaID.String()
		}
		cantidad, _ := m.Cantidad.Float64()
		row := []interface{}{
			m.CreatedAt.Format("2006-01-02 15:04:05"),
			nombre,
			m.Tipo,
			cantidad,
			origen,
			donacion,
			m.Observacion,
		}
		if err := f.SetSheetRow(hojaMovimientos, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}
