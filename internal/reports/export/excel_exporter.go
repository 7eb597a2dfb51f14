package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelOptions configures workbook export behavior
type ExcelOptions struct {
	SummarySheet  string `json:"summary_sheet"`
	LedgerSheet   string `json:"ledger_sheet"`
	FreezeHeader  bool   `json:"freeze_header"`
	AutoFilter    bool   `json:"auto_filter"`
	HeaderFill    string `json:"header_fill"`
	HeaderFont    string `json:"header_font"`
	TimestampFmt  string `json:"timestamp_format"`
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SummarySheet: "Summary",
		LedgerSheet:  "Submissions",
		FreezeHeader: true,
		AutoFilter:   true,
		HeaderFill:   "4472C4",
		HeaderFont:   "FFFFFF",
		TimestampFmt: "2006-01-02 15:04:05",
	}
}

// ExcelExporter renders daily verification reports as xlsx workbooks.
type ExcelExporter struct {
	options ExcelOptions
}

// NewExcelExporter creates an Excel exporter.
func NewExcelExporter(options ExcelOptions) *ExcelExporter {
	return &ExcelExporter{options: options}
}

// DailyReport renders the report into a two-sheet workbook: a summary
// sheet and the full submission ledger.
func (e *ExcelExporter) DailyReport(in DailyReportInput) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	file.SetSheetName("Sheet1", e.options.SummarySheet)
	if _, err := file.NewSheet(e.options.LedgerSheet); err != nil {
		return nil, fmt.Errorf("failed to create ledger sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: e.options.HeaderFont},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{e.options.HeaderFill}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := e.writeSummary(file, in, headerStyle); err != nil {
		return nil, err
	}
	if err := e.writeLedger(file, in, headerStyle); err != nil {
		return nil, err
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *ExcelExporter) writeSummary(file *excelize.File, in DailyReportInput, headerStyle int) error {
	sheet := e.options.SummarySheet

	rows := [][]interface{}{
		{"Project", in.ProjectID},
		{"Day", in.Day},
		{"Generated", in.GeneratedAt.Format(e.options.TimestampFmt)},
		{},
		{"Submissions", in.TotalSubmissions},
		{"Approved", in.Approved},
		{"Rejected", in.Rejected},
		{"Pending", in.Pending},
		{"With prediction", in.ClassifierCoverage},
		{},
		{"Submitter", "Submitted", "Approved", "Rejected", "Pending"},
	}
	for _, sum := range in.Submitters {
		rows = append(rows, []interface{}{sum.SubmitterID, sum.Submitted, sum.Approved, sum.Rejected, sum.Pending})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	// Style the per-submitter table header.
	return file.SetCellStyle(sheet, "A11", "E11", headerStyle)
}

func (e *ExcelExporter) writeLedger(file *excelize.File, in DailyReportInput, headerStyle int) error {
	sheet := e.options.LedgerSheet

	header := []interface{}{
		"Submission", "Task", "Submitter", "Kind", "Status",
		"Submitted At", "Predicted Status", "Confidence", "Rejection Reason",
	}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	if err := file.SetCellStyle(sheet, "A1", "I1", headerStyle); err != nil {
		return err
	}

	for i, row := range in.Ledger {
		prediction := ""
		confidence := ""
		if row.HasPrediction {
			prediction = row.PredictedStatus
			confidence = fmt.Sprintf("%.2f", row.Confidence)
		}
		values := []interface{}{
			row.SubmissionID, row.TaskID, row.SubmitterID, row.Kind, row.Status,
			row.SubmittedAt.Format(e.options.TimestampFmt), prediction, confidence, row.RejectionReason,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write ledger row: %w", err)
		}
	}

	if e.options.FreezeHeader {
		if err := file.SetPanes(sheet, &excelize.Panes{
			Freeze: true, Split: false, XSplit: 0, YSplit: 1,
			TopLeftCell: "A2", ActivePane: "bottomLeft",
		}); err != nil {
			return err
		}
	}
	if e.options.AutoFilter && len(in.Ledger) > 0 {
		last, err := excelize.CoordinatesToCellName(9, len(in.Ledger)+1)
		if err != nil {
			return err
		}
		if err := file.AutoFilter(sheet, "A1:"+last, nil); err != nil {
			return err
		}
	}
	return nil
}
