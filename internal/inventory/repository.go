package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the storage contract for inventory and equipment.
type Repository interface {
	CreateItem(ctx context.Context, item *InventoryItem) error
	GetItemByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
	ListItems(ctx context.Context, projectID uuid.UUID) ([]InventoryItem, error)
	ListLowStockItems(ctx context.Context) ([]InventoryItem, error)
	UpdateItem(ctx context.Context, item *InventoryItem) error

	CreateEquipment(ctx context.Context, eq *Equipment) error
	GetEquipmentByID(ctx context.Context, id uuid.UUID) (*Equipment, error)
	UpdateEquipment(ctx context.Context, eq *Equipment) error
}

type postgresRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed inventory repository and migrates its tables.
func NewRepository(db *gorm.DB) (Repository, error) {
	if err := db.AutoMigrate(&InventoryItem{}, &Equipment{}); err != nil {
		return nil, err
	}
	return &postgresRepository{db: db}, nil
}

func (r *postgresRepository) CreateItem(ctx context.Context, item *InventoryItem) error {
	if item.LowStockThreshold == 0 {
		item.LowStockThreshold = DefaultLowStockThreshold
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *postgresRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error) {
	var item InventoryItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *postgresRepository) ListItems(ctx context.Context, projectID uuid.UUID) ([]InventoryItem, error) {
	var items []InventoryItem
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

func (r *postgresRepository) ListLowStockItems(ctx context.Context) ([]InventoryItem, error) {
	var items []InventoryItem
	err := r.db.WithContext(ctx).
		Where("quantity_on_hand <= low_stock_threshold").
		Order("quantity_on_hand ASC").
		Find(&items).Error
	return items, err
}

func (r *postgresRepository) UpdateItem(ctx context.Context, item *InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *postgresRepository) CreateEquipment(ctx context.Context, eq *Equipment) error {
	return r.db.WithContext(ctx).Create(eq).Error
}

func (r *postgresRepository) GetEquipmentByID(ctx context.Context, id uuid.UUID) (*Equipment, error) {
	var eq Equipment
	err := r.db.WithContext(ctx).First(&eq, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *postgresRepository) UpdateEquipment(ctx context.Context, eq *Equipment) error {
	return r.db.WithContext(ctx).Save(eq).Error
}
