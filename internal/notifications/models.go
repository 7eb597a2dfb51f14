package notifications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EventKind identifies the discrete notification events the core emits.
type EventKind string

const (
	// EventSubmissionPending tells project reviewers a new submission awaits review.
	EventSubmissionPending EventKind = "submission_pending_review"
	// EventSubmissionRejected tells the submitter why their submission was rejected.
	EventSubmissionRejected EventKind = "submission_rejected"
	// EventLowStock warns that an inventory item dropped to or below its threshold.
	EventLowStock EventKind = "low_stock"
	// EventProjectAssignment tells a worker they were assigned to a task.
	EventProjectAssignment EventKind = "project_assignment"
)

// Event is a discrete notification emitted by the core. Delivery is
// entirely the dispatcher's concern; the core never waits on it.
type Event struct {
	RecipientID uuid.UUID              `json:"recipient_id"`
	ProjectID   uuid.UUID              `json:"project_id"`
	Kind        EventKind              `json:"kind"`
	Payload     map[string]interface{} `json:"payload"`
}

// SentNotification is the persisted record of a dispatched event.
type SentNotification struct {
	ID          uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	RecipientID uuid.UUID      `json:"recipient_id" gorm:"type:uuid;index"`
	ProjectID   uuid.UUID      `json:"project_id" gorm:"type:uuid;index"`
	Kind        string         `json:"kind" gorm:"not null"`
	Payload     datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	Channel     string         `json:"channel" gorm:"not null"`
	Status      string         `json:"status" gorm:"not null"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// Delivery statuses
const (
	StatusSent   = "SENT"
	StatusFailed = "FAILED"
)

// Channel names
const (
	ChannelWebSocket = "WEBSOCKET"
	ChannelPush      = "PUSH"
	ChannelEmail     = "EMAIL"
)
