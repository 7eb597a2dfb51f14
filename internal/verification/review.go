package verification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-lens/field-portal/field-portal-backend/internal/classifier"
	"site-lens/field-portal/field-portal-backend/internal/notifications"
)

// ReviewWorkflow applies approve/reject decisions to pending
// submissions and derives the side effects of each decision.
//
// A submission moves pending -> approved or pending -> rejected, both
// terminal. A rejected submission unblocks the submitter for a new
// attempt the same day; approval side effects depend on the submission
// kind.
type ReviewWorkflow struct {
	repo   Repository
	logger *zap.Logger
}

// NewReviewWorkflow creates a review workflow over the ledger.
func NewReviewWorkflow(repo Repository, logger *zap.Logger) *ReviewWorkflow {
	return &ReviewWorkflow{repo: repo, logger: logger}
}

// Approve transitions a pending submission to approved and returns the
// effects to apply. Approving a non-pending submission is an error so
// inventory side effects can never be applied twice.
func (w *ReviewWorkflow) Approve(ctx context.Context, submissionID, reviewerID uuid.UUID) (*Submission, []Effect, error) {
	sub, err := w.repo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}
	if sub == nil {
		return nil, nil, ErrSubmissionNotFound
	}
	if sub.Status != StatusPending {
		return nil, nil, &InvalidStateTransitionError{From: sub.Status, To: StatusApproved}
	}

	now := time.Now()
	sub.Status = StatusApproved
	sub.ReviewedAt = &now
	sub.ReviewerID = &reviewerID

	if err := w.repo.TransitionFromPending(ctx, sub); err != nil {
		return nil, nil, err
	}

	return sub, w.approvalEffects(sub), nil
}

// Reject transitions a pending submission to rejected. The reason is
// mandatory and is sent to the submitter so they know what to correct
// before resubmitting.
func (w *ReviewWorkflow) Reject(ctx context.Context, submissionID, reviewerID uuid.UUID, reason string) (*Submission, []Effect, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, nil, &ValidationError{Message: "rejection reason must not be empty"}
	}

	sub, err := w.repo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}
	if sub == nil {
		return nil, nil, ErrSubmissionNotFound
	}
	if sub.Status != StatusPending {
		return nil, nil, &InvalidStateTransitionError{From: sub.Status, To: StatusRejected}
	}

	now := time.Now()
	sub.Status = StatusRejected
	sub.ReviewedAt = &now
	sub.ReviewerID = &reviewerID
	sub.RejectionReason = &reason

	if err := w.repo.TransitionFromPending(ctx, sub); err != nil {
		return nil, nil, err
	}

	effects := []Effect{{
		Kind: EffectNotify,
		Event: &notifications.Event{
			RecipientID: sub.SubmitterID,
			ProjectID:   sub.ProjectID,
			Kind:        notifications.EventSubmissionRejected,
			Payload: map[string]interface{}{
				"submission_id": sub.ID.String(),
				"task_id":       sub.TaskID.String(),
				"reason":        reason,
			},
		},
	}}

	return sub, effects, nil
}

// approvalEffects derives the ordered side effects of an approval.
func (w *ReviewWorkflow) approvalEffects(sub *Submission) []Effect {
	switch sub.Kind {
	case KindTaskPhoto:
		// Auto-completion only when the approved prediction is reliable
		// and the submission actually went through inference. The
		// reviewer stays in the loop either way: reliability adds the
		// completion side effect to a human approval, it never bypasses
		// review.
		if sub.ClassifierDriven && sub.Prediction != nil &&
			classifier.IsReliable(sub.Prediction.Confidence, sub.Prediction.TaskMatch) {
			return []Effect{{Kind: EffectCompleteTask, TaskID: sub.TaskID}}
		}
		return nil

	case KindMaterialUsage:
		if sub.InventoryItemID == nil || sub.Quantity == nil {
			w.logger.Warn("material usage submission missing item or quantity",
				zap.String("submission_id", sub.ID.String()))
			return nil
		}
		return []Effect{{
			Kind:     EffectDecrementInventory,
			ItemID:   *sub.InventoryItemID,
			Quantity: *sub.Quantity,
		}}

	case KindEquipmentUsage:
		if sub.EquipmentID == nil {
			w.logger.Warn("equipment usage submission missing equipment id",
				zap.String("submission_id", sub.ID.String()))
			return nil
		}
		return []Effect{{
			Kind:        EffectEquipmentInUse,
			EquipmentID: *sub.EquipmentID,
			ActorID:     sub.SubmitterID,
		}}

	default:
		// Damage reports are informational only.
		return nil
	}
}
