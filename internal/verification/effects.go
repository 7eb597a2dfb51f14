package verification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-lens/field-portal/field-portal-backend/internal/inventory"
	"site-lens/field-portal/field-portal-backend/internal/notifications"
)

// EffectKind identifies a review side effect.
type EffectKind string

const (
	// EffectCompleteTask transitions the task to completed (reliable
	// classifier prediction approved).
	EffectCompleteTask EffectKind = "complete_task"
	// EffectDecrementInventory applies a material usage to stock.
	EffectDecrementInventory EffectKind = "decrement_inventory"
	// EffectEquipmentInUse marks equipment as in use.
	EffectEquipmentInUse EffectKind = "equipment_in_use"
	// EffectNotify dispatches a notification event.
	EffectNotify EffectKind = "notify"
)

// Effect is one side effect of a review decision. Approve and reject
// return an ordered list of these instead of firing side effects
// inline, so each one is executed and retried independently and a
// notification failure can never mask an inventory mutation.
type Effect struct {
	Kind        EffectKind
	TaskID      uuid.UUID
	ItemID      uuid.UUID
	EquipmentID uuid.UUID
	ActorID     uuid.UUID
	Quantity    float64
	Event       *notifications.Event
}

// TaskCompleter is the slice of the task service the runner needs.
type TaskCompleter interface {
	CompleteTask(ctx context.Context, taskID uuid.UUID) error
}

// InventoryApplier is the slice of the inventory service the runner needs.
type InventoryApplier interface {
	ApplyUsage(ctx context.Context, itemID uuid.UUID, quantity float64) (*inventory.UsageResult, error)
	MarkEquipmentInUse(ctx context.Context, equipmentID, userID uuid.UUID) error
}

// EffectRunner executes review effects in order. A failed effect is
// logged and reported but never stops the remaining effects.
type EffectRunner struct {
	tasks      TaskCompleter
	inventory  InventoryApplier
	dispatcher notifications.Dispatcher
	logger     *zap.Logger
}

// NewEffectRunner creates an effect runner.
func NewEffectRunner(tasks TaskCompleter, inv InventoryApplier, dispatcher notifications.Dispatcher, logger *zap.Logger) *EffectRunner {
	return &EffectRunner{tasks: tasks, inventory: inv, dispatcher: dispatcher, logger: logger}
}

// Run applies every effect, collecting failures. The returned error is
// for observability; the ledger transition that produced the effects
// has already committed.
func (r *EffectRunner) Run(ctx context.Context, projectID uuid.UUID, effects []Effect) error {
	var errs []error
	for _, effect := range effects {
		if err := r.apply(ctx, projectID, effect); err != nil {
			r.logger.Error("review effect failed",
				zap.String("effect", string(effect.Kind)),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *EffectRunner) apply(ctx context.Context, projectID uuid.UUID, effect Effect) error {
	switch effect.Kind {
	case EffectCompleteTask:
		return r.tasks.CompleteTask(ctx, effect.TaskID)

	case EffectDecrementInventory:
		result, err := r.inventory.ApplyUsage(ctx, effect.ItemID, effect.Quantity)
		if err != nil {
			return err
		}
		if result.LowStock {
			return r.dispatcher.Dispatch(ctx, notifications.Event{
				ProjectID: projectID,
				Kind:      notifications.EventLowStock,
				Payload: map[string]interface{}{
					"item_id":   result.ItemID.String(),
					"item_name": result.ItemName,
					"remaining": result.Remaining,
					"unit":      result.Unit,
				},
			})
		}
		return nil

	case EffectEquipmentInUse:
		return r.inventory.MarkEquipmentInUse(ctx, effect.EquipmentID, effect.ActorID)

	case EffectNotify:
		if effect.Event == nil {
			return nil
		}
		return r.dispatcher.Dispatch(ctx, *effect.Event)

	default:
		r.logger.Warn("unknown review effect", zap.String("effect", string(effect.Kind)))
		return nil
	}
}
