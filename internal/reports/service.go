package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-lens/field-portal/field-portal-backend/internal/reports/export"
	"site-lens/field-portal/field-portal-backend/internal/verification"
)

// SubmissionSource is the slice of the verification ledger the report
// builder reads from.
type SubmissionSource interface {
	ListByProjectAndDay(ctx context.Context, projectID uuid.UUID, day time.Time) ([]verification.Submission, error)
}

// Service builds and renders daily verification reports.
type Service struct {
	source SubmissionSource
	logger *zap.Logger
}

// NewService creates a reports service.
func NewService(source SubmissionSource, logger *zap.Logger) *Service {
	return &Service{source: source, logger: logger}
}

// BuildDailyReport aggregates a project's submissions for one day.
func (s *Service) BuildDailyReport(ctx context.Context, projectID uuid.UUID, day time.Time) (*DailyReport, error) {
	subs, err := s.source.ListByProjectAndDay(ctx, projectID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}

	report := &DailyReport{
		ProjectID:   projectID,
		Day:         day.Format("2006-01-02"),
		GeneratedAt: time.Now(),
		Ledger:      subs,
	}

	perSubmitter := make(map[uuid.UUID]*SubmitterSummary)
	order := make([]uuid.UUID, 0)

	for _, sub := range subs {
		report.TotalSubmissions++
		if sub.Prediction != nil {
			report.ClassifierCoverage++
		}

		summary, seen := perSubmitter[sub.SubmitterID]
		if !seen {
			summary = &SubmitterSummary{SubmitterID: sub.SubmitterID}
			perSubmitter[sub.SubmitterID] = summary
			order = append(order, sub.SubmitterID)
		}
		summary.Submitted++

		switch sub.Status {
		case verification.StatusPending:
			report.Pending++
			summary.Pending++
		case verification.StatusApproved:
			report.Approved++
			summary.Approved++
		case verification.StatusRejected:
			report.Rejected++
			summary.Rejected++
		}
	}

	for _, id := range order {
		report.Submitters = append(report.Submitters, *perSubmitter[id])
	}
	return report, nil
}

// RenderPDF renders the daily report as a PDF document.
func (s *Service) RenderPDF(report *DailyReport) ([]byte, error) {
	gen := export.NewPDFGenerator(export.DefaultPDFOptions())
	return gen.DailyReport(pdfInput(report))
}

// RenderExcel renders the daily report as an xlsx workbook.
func (s *Service) RenderExcel(report *DailyReport) ([]byte, error) {
	exp := export.NewExcelExporter(export.DefaultExcelOptions())
	return exp.DailyReport(pdfInput(report))
}

// pdfInput flattens the report into the export layer's neutral shape so
// the exporters do not depend on the verification package.
func pdfInput(report *DailyReport) export.DailyReportInput {
	in := export.DailyReportInput{
		ProjectID:          report.ProjectID.String(),
		Day:                report.Day,
		GeneratedAt:        report.GeneratedAt,
		TotalSubmissions:   report.TotalSubmissions,
		Pending:            report.Pending,
		Approved:           report.Approved,
		Rejected:           report.Rejected,
		ClassifierCoverage: report.ClassifierCoverage,
	}

	for _, sum := range report.Submitters {
		in.Submitters = append(in.Submitters, export.SubmitterRow{
			SubmitterID: sum.SubmitterID.String(),
			Submitted:   sum.Submitted,
			Approved:    sum.Approved,
			Rejected:    sum.Rejected,
			Pending:     sum.Pending,
		})
	}

	for _, sub := range report.Ledger {
		row := export.LedgerRow{
			SubmissionID: sub.ID.String(),
			TaskID:       sub.TaskID.String(),
			SubmitterID:  sub.SubmitterID.String(),
			Kind:         string(sub.Kind),
			Status:       string(sub.Status),
			SubmittedAt:  sub.SubmittedAt,
		}
		if sub.Prediction != nil {
			row.PredictedStatus = string(sub.Prediction.Status)
			row.Confidence = sub.Prediction.Confidence
			row.HasPrediction = true
		}
		if sub.RejectionReason != nil {
			row.RejectionReason = *sub.RejectionReason
		}
		in.Ledger = append(in.Ledger, row)
	}
	return in
}
