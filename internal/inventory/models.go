package inventory

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLowStockThreshold applies to items created without an explicit threshold.
const DefaultLowStockThreshold = 10

// InventoryItem represents a tracked construction material
type InventoryItem struct {
	ID                uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID         uuid.UUID `json:"project_id" gorm:"type:uuid;index"`
	Name              string    `json:"name" gorm:"not null"`
	QuantityOnHand    float64   `json:"quantity_on_hand"`
	Unit              string    `json:"unit"`
	LowStockThreshold float64   `json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// EquipmentStatus represents the operational state of a piece of equipment
type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "available"
	EquipmentInUse       EquipmentStatus = "in_use"
	EquipmentMaintenance EquipmentStatus = "maintenance"
)

// Equipment represents a tracked piece of site equipment
type Equipment struct {
	ID         uuid.UUID       `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID  uuid.UUID       `json:"project_id" gorm:"type:uuid;index"`
	Name       string          `json:"name" gorm:"not null"`
	Status     EquipmentStatus `json:"status" gorm:"not null"`
	LastUsedAt *time.Time      `json:"last_used_at,omitempty"`
	LastUsedBy *uuid.UUID      `json:"last_used_by,omitempty" gorm:"type:uuid"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// UsageResult reports the outcome of applying a material usage.
type UsageResult struct {
	ItemID    uuid.UUID `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Remaining float64   `json:"remaining"`
	Unit      string    `json:"unit"`
	LowStock  bool      `json:"low_stock"`
}
