package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role controls what a user may do: workers submit evidence, reviewers
// decide on it, managers additionally manage tasks and inventory.
type Role string

const (
	RoleWorker   Role = "worker"
	RoleReviewer Role = "reviewer"
	RoleManager  Role = "manager"
)

// User represents an account on the portal
type User struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
