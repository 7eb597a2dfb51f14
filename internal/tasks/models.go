package tasks

import (
	"time"

	"github.com/google/uuid"

	"site-lens/field-portal/field-portal-backend/internal/classifier"
)

// TaskStatus represents the lifecycle status of a construction task
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
	StatusCancelled  TaskStatus = "cancelled"
)

// Task represents a unit of construction work on a project.
// ActivityKind is empty for tasks the on-device model cannot classify.
type Task struct {
	ID           uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID    uuid.UUID  `json:"project_id" gorm:"type:uuid;index"`
	Name         string     `json:"name" gorm:"not null"`
	Description  string     `json:"description"`
	ActivityKind string     `json:"activity_kind"`
	Status       TaskStatus `json:"status" gorm:"not null"`
	AssigneeID   *uuid.UUID `json:"assignee_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// ClassifierEligible reports whether the task's activity is supported
// by the on-device model.
func (t *Task) ClassifierEligible() bool {
	return classifier.IsEligibleActivity(t.ActivityKind)
}
