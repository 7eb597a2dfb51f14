package reports

import (
	"time"

	"github.com/google/uuid"

	"site-lens/field-portal/field-portal-backend/internal/verification"
)

// DailyReport summarizes one project day of evidence verification.
type DailyReport struct {
	ProjectID   uuid.UUID `json:"project_id"`
	Day         string    `json:"day"`
	GeneratedAt time.Time `json:"generated_at"`

	TotalSubmissions int `json:"total_submissions"`
	Pending          int `json:"pending"`
	Approved         int `json:"approved"`
	Rejected         int `json:"rejected"`

	// ClassifierCoverage counts submissions that carried a prediction.
	ClassifierCoverage int `json:"classifier_coverage"`

	Submitters []SubmitterSummary `json:"submitters"`

	// Ledger holds the day's submissions, newest first, for the detail
	// sections of the exports.
	Ledger []verification.Submission `json:"-"`
}

// SubmitterSummary is one worker's row in the daily report.
type SubmitterSummary struct {
	SubmitterID uuid.UUID `json:"submitter_id"`
	Submitted   int       `json:"submitted"`
	Approved    int       `json:"approved"`
	Rejected    int       `json:"rejected"`
	Pending     int       `json:"pending"`
}
