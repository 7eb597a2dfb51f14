package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProjectStatus represents the lifecycle status of a construction project
type ProjectStatus string

const (
	StatusPlanning  ProjectStatus = "planning"
	StatusActive    ProjectStatus = "active"
	StatusOnHold    ProjectStatus = "on_hold"
	StatusCompleted ProjectStatus = "completed"
	StatusCancelled ProjectStatus = "cancelled"
)

// Project represents a construction site
type Project struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Status      ProjectStatus  `gorm:"not null" json:"status"`
	ManagerID   uuid.UUID      `gorm:"type:uuid;not null" json:"manager_id"`
	// SiteBoundary is the site perimeter as GeoJSON; the centroid is
	// derived from it for map pinning.
	SiteBoundary datatypes.JSON `json:"site_boundary,omitempty"`
	AreaHectares float64        `json:"area_hectares"`
	CentroidLng  float64        `json:"centroid_lng"`
	CentroidLat  float64        `json:"centroid_lat"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// ProjectMember represents a worker or reviewer attached to a project
type ProjectMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Role      string    `gorm:"not null" json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}
