package verification

import (
	"time"

	"github.com/google/uuid"

	"site-lens/field-portal/field-portal-backend/internal/classifier"
)

// dayLayout keys submissions to the submitter's local calendar day.
const dayLayout = "2006-01-02"

// SubmissionStatus represents the lifecycle status of a submission
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

// SubmissionKind distinguishes what an approved submission does.
type SubmissionKind string

const (
	KindTaskPhoto      SubmissionKind = "task_photo"
	KindMaterialUsage  SubmissionKind = "material_usage"
	KindEquipmentUsage SubmissionKind = "equipment_usage"
	KindDamageReport   SubmissionKind = "damage_report"
)

// Submission represents a single photographic evidence submission.
// At most one submission per (task, submitter, day) may be pending or
// approved; the partial unique index on submitted_day enforces that at
// the storage layer.
type Submission struct {
	ID               uuid.UUID                    `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID           uuid.UUID                    `json:"task_id" gorm:"type:uuid;index"`
	ProjectID        uuid.UUID                    `json:"project_id" gorm:"type:uuid;index"`
	SubmitterID      uuid.UUID                    `json:"submitter_id" gorm:"type:uuid;index"`
	Kind             SubmissionKind               `json:"kind" gorm:"not null"`
	PhotoRef         string                       `json:"photo_ref" gorm:"not null"`
	Prediction       *classifier.StatusPrediction `json:"prediction,omitempty" gorm:"type:jsonb;serializer:json"`
	ClassifierDriven bool                         `json:"classifier_driven"`
	InventoryItemID  *uuid.UUID                   `json:"inventory_item_id,omitempty" gorm:"type:uuid"`
	EquipmentID      *uuid.UUID                   `json:"equipment_id,omitempty" gorm:"type:uuid"`
	Quantity         *float64                     `json:"quantity,omitempty"`
	Status           SubmissionStatus             `json:"status" gorm:"not null;index"`
	SubmittedAt      time.Time                    `json:"submitted_at"`
	SubmittedDay     string                       `json:"submitted_day" gorm:"not null;index"`
	ReviewedAt       *time.Time                   `json:"reviewed_at,omitempty"`
	ReviewerID       *uuid.UUID                   `json:"reviewer_id,omitempty" gorm:"type:uuid"`
	RejectionReason  *string                      `json:"rejection_reason,omitempty"`
}

// GateDecision is the submission gate's answer for a new submission attempt.
type GateDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// SubmitterGroup is the dashboard grouping of a submitter's submissions.
type SubmitterGroup struct {
	SubmitterID    uuid.UUID    `json:"submitter_id"`
	PendingCount   int          `json:"pending_count"`
	LastActivityAt time.Time    `json:"last_activity_at"`
	Submissions    []Submission `json:"submissions"`
}
