package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// DailyReportInput is the export-layer shape of a daily report.
type DailyReportInput struct {
	ProjectID          string
	Day                string
	GeneratedAt        time.Time
	TotalSubmissions   int
	Pending            int
	Approved           int
	Rejected           int
	ClassifierCoverage int
	Submitters         []SubmitterRow
	Ledger             []LedgerRow
}

// SubmitterRow is one worker's summary line.
type SubmitterRow struct {
	SubmitterID string
	Submitted   int
	Approved    int
	Rejected    int
	Pending     int
}

// LedgerRow is one submission line in the detail section.
type LedgerRow struct {
	SubmissionID    string
	TaskID          string
	SubmitterID     string
	Kind            string
	Status          string
	SubmittedAt     time.Time
	HasPrediction   bool
	PredictedStatus string
	Confidence      float64
	RejectionReason string
}

// PDFOptions configures PDF generation
type PDFOptions struct {
	PageSize       string   `json:"page_size"`   // A4, Letter
	Orientation    string   `json:"orientation"` // portrait, landscape
	FontFamily     string   `json:"font_family"`
	FontSize       float64  `json:"font_size"`
	TitleFontSize  float64  `json:"title_font_size"`
	HeaderColor    PDFColor `json:"header_color"`
	AlternateRows  bool     `json:"alternate_rows"`
	AlternateColor PDFColor `json:"alternate_color"`
}

// PDFColor represents an RGB color
type PDFColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// DefaultPDFOptions returns default PDF options
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:       "A4",
		Orientation:    "portrait",
		FontFamily:     "Arial",
		FontSize:       9,
		TitleFontSize:  16,
		HeaderColor:    PDFColor{R: 52, G: 73, B: 94},
		AlternateRows:  true,
		AlternateColor: PDFColor{R: 240, G: 243, B: 246},
	}
}

// PDFGenerator renders daily verification reports.
type PDFGenerator struct {
	options PDFOptions
}

// NewPDFGenerator creates a PDF generator.
func NewPDFGenerator(options PDFOptions) *PDFGenerator {
	return &PDFGenerator{options: options}
}

// DailyReport renders the report and returns the PDF bytes.
func (g *PDFGenerator) DailyReport(in DailyReportInput) ([]byte, error) {
	orientation := "P"
	if g.options.Orientation == "landscape" {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", g.options.PageSize, "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Title block
	pdf.SetFont(g.options.FontFamily, "B", g.options.TitleFontSize)
	pdf.Cell(0, 10, "Daily Verification Report")
	pdf.Ln(8)
	pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	pdf.Cell(0, 6, fmt.Sprintf("Project %s  |  Day %s  |  Generated %s",
		in.ProjectID, in.Day, in.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(12)

	// Totals
	pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize+2)
	pdf.Cell(0, 6, "Summary")
	pdf.Ln(8)
	pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	for _, line := range []string{
		fmt.Sprintf("Submissions: %d", in.TotalSubmissions),
		fmt.Sprintf("Approved: %d    Rejected: %d    Pending: %d", in.Approved, in.Rejected, in.Pending),
		fmt.Sprintf("With classifier prediction: %d", in.ClassifierCoverage),
	} {
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}
	pdf.Ln(6)

	// Per-submitter table
	pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize+2)
	pdf.Cell(0, 6, "Per Submitter")
	pdf.Ln(8)
	g.tableHeader(pdf, []colSpec{
		{"Submitter", 70}, {"Submitted", 28}, {"Approved", 28}, {"Rejected", 28}, {"Pending", 28},
	})
	for i, row := range in.Submitters {
		g.tableRow(pdf, i, []colCell{
			{row.SubmitterID, 70}, {fmt.Sprint(row.Submitted), 28},
			{fmt.Sprint(row.Approved), 28}, {fmt.Sprint(row.Rejected), 28},
			{fmt.Sprint(row.Pending), 28},
		})
	}
	pdf.Ln(8)

	// Ledger detail
	pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize+2)
	pdf.Cell(0, 6, "Submissions")
	pdf.Ln(8)
	g.tableHeader(pdf, []colSpec{
		{"Time", 22}, {"Kind", 32}, {"Status", 22}, {"Prediction", 40}, {"Reason", 66},
	})
	for i, row := range in.Ledger {
		prediction := "-"
		if row.HasPrediction {
			prediction = fmt.Sprintf("%s (%.0f%%)", row.PredictedStatus, row.Confidence*100)
		}
		g.tableRow(pdf, i, []colCell{
			{row.SubmittedAt.Format("15:04"), 22},
			{row.Kind, 32},
			{row.Status, 22},
			{prediction, 40},
			{row.RejectionReason, 66},
		})
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

type colSpec struct {
	title string
	width float64
}

type colCell struct {
	text  string
	width float64
}

func (g *PDFGenerator) tableHeader(pdf *gofpdf.Fpdf, cols []colSpec) {
	pdf.SetFillColor(g.options.HeaderColor.R, g.options.HeaderColor.G, g.options.HeaderColor.B)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
	for _, col := range cols {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
}

func (g *PDFGenerator) tableRow(pdf *gofpdf.Fpdf, index int, cells []colCell) {
	fill := g.options.AlternateRows && index%2 == 1
	if fill {
		pdf.SetFillColor(g.options.AlternateColor.R, g.options.AlternateColor.G, g.options.AlternateColor.B)
	}
	for _, cell := range cells {
		pdf.CellFormat(cell.width, 6, cell.text, "1", 0, "L", fill, 0, "")
	}
	pdf.Ln(-1)
}
