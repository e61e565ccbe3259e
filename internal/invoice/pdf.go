package invoice

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"storefront/internal/config"
	"storefront/internal/domain"
)

// Renderer lays an order out as a single-page A4 invoice using a PDF core font.
type Renderer struct {
	StoreName string
	Font      string
}

func NewRenderer(cfg config.Invoice) *Renderer {
	return &Renderer{StoreName: cfg.StoreName, Font: cfg.Font}
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Product", 95, "L"},
	{"Qty", 20, "R"},
	{"Unit price", 35, "R"},
	{"Total", 35, "R"},
}

func (r *Renderer) Render(w io.Writer, d domain.OrderDetail) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Invoice %d", d.Order.ID), true)
	pdf.SetCreator(r.StoreName, true)
	pdf.AddPage()

	pdf.SetFont(r.Font, "B", 18)
	pdf.CellFormat(0, 10, tr(r.StoreName), "", 1, "L", false, 0, "")
	pdf.SetFont(r.Font, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Invoice for order #%d", d.Order.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+d.Order.CreatedAt, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Status: "+string(d.Order.Status), "", 1, "L", false, 0, "")
	if d.Order.PaymentReference != "" {
		pdf.CellFormat(0, 6, "Payment reference: "+tr(d.Order.PaymentReference), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont(r.Font, "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range columns {
		pdf.CellFormat(col.width, 8, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(r.Font, "", 11)
	for _, it := range d.Items {
		cells := []string{
			tr(it.ProductName),
			strconv.Itoa(it.Quantity),
			it.UnitPrice.StringFixed(2),
			it.TotalPrice().StringFixed(2),
		}
		for i, col := range columns {
			pdf.CellFormat(col.width, 7, cells[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	label := columns[0].width + columns[1].width + columns[2].width
	total := func(name, value string) {
		pdf.CellFormat(label, 7, name, "", 0, "R", false, 0, "")
		pdf.CellFormat(columns[3].width, 7, value, "", 1, "R", false, 0, "")
	}
	total("Subtotal", d.Subtotal().StringFixed(2))
	total("Tax (18%)", d.TaxAmount().StringFixed(2))
	pdf.SetFont(r.Font, "B", 12)
	total("Grand total", d.GrandTotal().StringFixed(2))

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("layout invoice %d: %w", d.Order.ID, err)
	}
	return pdf.Output(w)
}
