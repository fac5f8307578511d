package infra

// pdf.go: delivery receipt ("comprovante de entrega") for a donation-out,
// rendered with go-pdf/fpdf on A4:
//   - Organization header and receipt number
//   - Managing organization and date
//   - Requested item and kit lines, as entered
//   - Aggregated stock postings
//   - Signature lines

import (
	"fmt"
	"io"

	"github.com/NilsonPMMC/sgfs/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerarComprobanteDonacion writes the receipt PDF for d to w.
// salidas are the ledger movements correlated to d.
func GenerarComprobanteDonacion(w io.Writer, organizacion string, d *model.DonacionRealizada, salidas []model.Movimiento) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(organizacion), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Comprobante de entrega de donación"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	gestora := d.EntidadGestoraID.String()
	if d.EntidadGestora != nil {
		gestora = d.EntidadGestora.Rotulo()
	}
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("N° "+d.ID.String()), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr("Fecha: "+d.Fecha.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr("Entidad gestora: "+gestora), "", 1, "L", false, 0, "")
	if d.Observaciones != "" {
		pdf.MultiCell(contentW, 5, tr("Observaciones: "+d.Observaciones), "", "L", false)
	}
	pdf.Ln(3)

	col1 := contentW * 0.75
	col2 := contentW * 0.25

	// ── Requested lines ──────────────────────────────────────────────────────
	if len(d.Items) > 0 {
		tabla(pdf, tr, "Ítems", col1, col2)
		for _, it := range d.Items {
			nombre := it.ItemID.String()
			if it.Item != nil {
				nombre = it.Item.Nombre
			}
			fila(pdf, tr, nombre, it.Cantidad.StringFixed(2), col1, col2)
		}
		pdf.Ln(3)
	}
	if len(d.Kits) > 0 {
		tabla(pdf, tr, "Kits", col1, col2)
		for _, k := range d.Kits {
			nombre := k.KitID.String()
			if k.Kit != nil {
				nombre = k.Kit.Nombre
			}
			fila(pdf, tr, nombre, fmt.Sprintf("%d", k.Cantidad), col1, col2)
		}
		pdf.Ln(3)
	}

	// ── Stock postings ───────────────────────────────────────────────────────
	tabla(pdf, tr, "Total entregado por ítem", col1, col2)
	for _, m := range salidas {
		nombre := m.ItemID.String()
		if m.Item != nil {
			nombre = m.Item.Nombre
		}
		fila(pdf, tr, nombre, m.Cantidad.Abs().StringFixed(2), col1, col2)
	}

	// ── Signatures ───────────────────────────────────────────────────────────
	pdf.Ln(20)
	half := contentW / 2
	y := pdf.GetY()
	pdf.Line(20, y, 15+half-10, y)
	pdf.Line(15+half+10, y, pageW-20, y)
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(half, 4, tr("Entregado por"), "", 0, "C", false, 0, "")
	pdf.CellFormat(half, 4, tr("Recibido por"), "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}

func tabla(pdf *fpdf.Fpdf, tr func(string) string, titulo string, col1, col2 float64) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, tr(titulo), "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, tr("Cantidad"), "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
}

func fila(pdf *fpdf.Fpdf, tr func(string) string, nombre, cantidad string, col1, col2 float64) {
	if len(nombre) > 70 {
		nombre = nombre[:69] + "…"
	}
	pdf.CellFormat(col1, 5, tr(nombre), "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, cantidad, "", 1, "R", false, 0, "")
}
