package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"site-lens/field-portal/field-portal-backend/internal/config"
	"site-lens/field-portal/field-portal-backend/internal/inventory"
	"site-lens/field-portal/field-portal-backend/internal/notifications"
)

// StockWorker periodically scans the inventory and raises low-stock
// events for items at or below their threshold. Inline decrement checks
// already fire on approval; the digest catches items that drifted low
// through manual stock corrections.
type StockWorker struct {
	inventory  *inventory.Service
	dispatcher notifications.Dispatcher
	logger     *zap.Logger
}

// NewStockWorker creates a stock digest worker.
func NewStockWorker(inv *inventory.Service, dispatcher notifications.Dispatcher, logger *zap.Logger) *StockWorker {
	return &StockWorker{inventory: inv, dispatcher: dispatcher, logger: logger}
}

// Scan runs one digest pass over the inventory.
func (w *StockWorker) Scan(ctx context.Context) {
	items, err := w.inventory.ListLowStockItems(ctx)
	if err != nil {
		w.logger.Error("Failed to list low-stock items", zap.Error(err))
		return
	}
	if len(items) == 0 {
		return
	}

	w.logger.Info("Low-stock digest", zap.Int("items", len(items)))
	for _, item := range items {
		if err := w.dispatcher.Dispatch(ctx, notifications.Event{
			ProjectID: item.ProjectID,
			Kind:      notifications.EventLowStock,
			Payload: map[string]interface{}{
				"item_id":   item.ID.String(),
				"item_name": item.Name,
				"remaining": item.QuantityOnHand,
				"unit":      item.Unit,
				"threshold": item.LowStockThreshold,
			},
		}); err != nil {
			w.logger.Warn("Failed to dispatch low-stock event",
				zap.String("item_id", item.ID.String()),
				zap.Error(err))
		}
	}
}

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	invRepo, err := inventory.NewRepository(db)
	if err != nil {
		logger.Fatal("Failed to initialize inventory repository", zap.Error(err))
	}
	invService := inventory.NewService(invRepo, logger)

	// The worker records digest notifications in the same ledger as the
	// API but has no websocket clients, so it runs without channels.
	dispatcher, err := notifications.NewService(db, logger)
	if err != nil {
		logger.Fatal("Failed to initialize notifications", zap.Error(err))
	}

	worker := NewStockWorker(invService, dispatcher, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	schedule := os.Getenv("STOCK_DIGEST_SCHEDULE")
	if schedule == "" {
		schedule = "0 7 * * *" // daily at 07:00
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, func() { worker.Scan(ctx) }); err != nil {
		logger.Fatal("Invalid digest schedule", zap.String("schedule", schedule), zap.Error(err))
	}

	logger.Info("Stock worker starting", zap.String("schedule", schedule))
	scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received")
	cancel()
	<-scheduler.Stop().Done()
	logger.Info("Stock worker stopped")
}
