package infra

// pdf.go: receipt rendering with go-pdf/fpdf.
// 74mm wide thermal-style receipt:
//   - Shop name header
//   - Receipt number, timestamp and customer
//   - Item table (product, quantity, line total)
//   - Bold total and payment method
//
// The page height grows with the number of lines so long sales never spill
// onto a second page.

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/pablini31/papelria/internal/model"
)

// GenerateReciboPDF renders the receipt of venta into w. Items must have
// their Producto preloaded to print names.
func GenerateReciboPDF(w io.Writer, venta *model.Venta, tienda string) error {
	height := 70.0 + 5.0*float64(len(venta.Items))
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(tienda), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Recibo de venta", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr("Recibo N° "+venta.NumeroRecibo), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, venta.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Cliente: "+nombreCliente(venta)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Importe", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range venta.Items {
		nombre := fmt.Sprintf("Producto #%d", item.ProductoID)
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		if r := []rune(nombre); len(r) > 22 {
			nombre = string(r[:21]) + "…"
		}
		pdf.CellFormat(col1, 5, tr(nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.PrecioTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+venta.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr("Pago: "+venta.MetodoPago), "", 1, "L", false, 0, "")
	if venta.Estado != model.EstadoCompletada {
		pdf.CellFormat(contentW, 4, tr("Estado: "+venta.Estado), "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}

func nombreCliente(v *model.Venta) string {
	switch {
	case v.Cliente != nil:
		return v.Cliente.Nombre
	case v.NombreCliente != nil && *v.NombreCliente != "":
		return *v.NombreCliente
	default:
		return "Cliente ocasional"
	}
}
