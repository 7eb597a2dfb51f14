package settings

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPreferences controls which delivery channels a user
// receives notifications on. Missing rows mean everything enabled.
type NotificationPreferences struct {
	UserID       uuid.UUID `json:"user_id" gorm:"primaryKey;type:uuid"`
	InAppEnabled bool      `json:"in_app_enabled"`
	PushEnabled  bool      `json:"push_enabled"`
	EmailEnabled bool      `json:"email_enabled"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// DefaultPreferences returns the all-enabled defaults for a user.
func DefaultPreferences(userID uuid.UUID) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:       userID,
		InAppEnabled: true,
		PushEnabled:  true,
		EmailEnabled: true,
	}
}
