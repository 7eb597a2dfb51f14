package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service applies inventory side effects of approved usage submissions.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates an inventory service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ApplyUsage decrements an item's stock by the used quantity, clamped
// at zero. The result reports whether the item is now at or below its
// low-stock threshold so the caller can emit the low-stock event.
func (s *Service) ApplyUsage(ctx context.Context, itemID uuid.UUID, quantity float64) (*UsageResult, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("usage quantity must not be negative, got %v", quantity)
	}

	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("inventory item %s not found", itemID)
	}

	remaining := item.QuantityOnHand - quantity
	if remaining < 0 {
		s.logger.Warn("usage exceeds stock on hand, clamping to zero",
			zap.String("item_id", itemID.String()),
			zap.Float64("on_hand", item.QuantityOnHand),
			zap.Float64("used", quantity))
		remaining = 0
	}

	item.QuantityOnHand = remaining
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}

	return &UsageResult{
		ItemID:    item.ID,
		ItemName:  item.Name,
		Remaining: remaining,
		Unit:      item.Unit,
		LowStock:  remaining <= item.LowStockThreshold,
	}, nil
}

// MarkEquipmentInUse transitions equipment to in_use and stamps last-used metadata.
func (s *Service) MarkEquipmentInUse(ctx context.Context, equipmentID, userID uuid.UUID) error {
	eq, err := s.repo.GetEquipmentByID(ctx, equipmentID)
	if err != nil {
		return fmt.Errorf("failed to load equipment: %w", err)
	}
	if eq == nil {
		return fmt.Errorf("equipment %s not found", equipmentID)
	}

	now := time.Now()
	eq.Status = EquipmentInUse
	eq.LastUsedAt = &now
	eq.LastUsedBy = &userID

	if err := s.repo.UpdateEquipment(ctx, eq); err != nil {
		return fmt.Errorf("failed to update equipment: %w", err)
	}
	return nil
}

// AddItem registers a new tracked material for a project.
func (s *Service) AddItem(ctx context.Context, item *InventoryItem) error {
	if item.Name == "" {
		return fmt.Errorf("item name is required")
	}
	if item.QuantityOnHand < 0 {
		return fmt.Errorf("quantity on hand must not be negative")
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return s.repo.CreateItem(ctx, item)
}

// AddEquipment registers a new piece of equipment as available.
func (s *Service) AddEquipment(ctx context.Context, eq *Equipment) error {
	if eq.Name == "" {
		return fmt.Errorf("equipment name is required")
	}
	if eq.ID == uuid.Nil {
		eq.ID = uuid.New()
	}
	if eq.Status == "" {
		eq.Status = EquipmentAvailable
	}
	return s.repo.CreateEquipment(ctx, eq)
}

// ListItems returns the inventory for a project.
func (s *Service) ListItems(ctx context.Context, projectID uuid.UUID) ([]InventoryItem, error) {
	return s.repo.ListItems(ctx, projectID)
}

// ListLowStockItems returns all items at or below their threshold.
func (s *Service) ListLowStockItems(ctx context.Context) ([]InventoryItem, error) {
	return s.repo.ListLowStockItems(ctx)
}
