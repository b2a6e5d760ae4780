// Package export renders reports as documents.
package export

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-settlement/internal/domain/commission"
)

func money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

func pct(f float64) string {
	return fmt.Sprintf("%+.2f%%", f)
}

// CommissionPDF renders r as an A4 document.
func CommissionPDF(r *commission.Report, title string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Relatório de comissões - "+title))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, tr(fmt.Sprintf(
		"Período: %s a %s   Taxa: %s%%",
		r.Period.Start.Format("02/01/2006"),
		r.Period.End.AddDate(0, 0, -1).Format("02/01/2006"),
		r.Rate.Mul(decimal.NewFromInt(100)).StringFixed(0),
	)))
	pdf.Ln(12)

	// ====== Totais ======
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Totais")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	totals := [][3]string{
		{"Faturamento", money(r.Current.Earnings), pct(r.Changes.Earnings)},
		{"Comissões", money(r.Current.Commissions), pct(r.Changes.Commissions)},
		{"Retenção", money(r.Current.Retention), pct(r.Changes.Retention)},
		{"Serviços", fmt.Sprint(r.Current.Services), pct(r.Changes.Services)},
		{"Média por barbeiro", money(r.Current.AvgCommissionPerBarber), pct(r.Changes.AvgCommission)},
	}
	for _, row := range totals {
		pdf.CellFormat(70, 7, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, row[1], "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, row[2], "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	// ====== Barbeiros ======
	pdf.SetFont("Arial", "B", 11)
	header := []string{"Barbeiro", "Serviços", "Faturamento", "Comissão", "Variação"}
	widths := []float64{60, 25, 35, 35, 30}
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, b := range r.Barbers {
		pdf.CellFormat(widths[0], 7, tr(b.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprint(b.TotalServices), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, money(b.TotalEarnings), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, money(b.Commission), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, pct(b.EarningsChange), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
