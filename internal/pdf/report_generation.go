package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Generator — интерфейс (удобно мокать в тестах)
type Generator interface {
	GenerateReport(data ReportData) ([]byte, error)
}

type ReportRow struct {
	Name     string
	BMI      float64
	Feedback float64
	RiskText string
}

type ReportData struct {
	BMIFilter      string
	FeedbackFilter string
	Rows           []ReportRow
}

// ReportGenerator — реализация на gofpdf.
type ReportGenerator struct{}

func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{}
}

func (g *ReportGenerator) GenerateReport(data ReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Clinician Report", false)
	pdf.SetAuthor("Clinic Portal", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Clinician Report (Filtered - Last 3)", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 7,
		fmt.Sprintf("BMI Filter: %s   |   Feedback Filter: %s", data.BMIFilter, data.FeedbackFilter),
		"", 1, "L", false, 0, "")
	g.hr(pdf)
	pdf.Ln(2)

	// ===== Шапка таблицы
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(60, 7, "Patient", "", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "BMI", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "Avg Feedback", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Risk", "", 1, "L", false, 0, "")
	g.hr(pdf)

	pdf.SetFont("Helvetica", "", 9)
	if len(data.Rows) == 0 {
		pdf.CellFormat(0, 7, "No patients matched the selected filters.", "", 1, "L", false, 0, "")
	}
	for _, row := range data.Rows {
		name := row.Name
		if name == "" {
			name = "Unknown"
		}
		pdf.CellFormat(60, 7, truncate(name, 30), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.2f", row.BMI), "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("%.1f/5", row.Feedback), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, truncate(row.RiskText, 35), "", 1, "L", false, 0, "")
	}

	// ===== Нумерация страниц
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Page %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ===== helpers =====

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
