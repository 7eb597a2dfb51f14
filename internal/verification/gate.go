package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gate decides whether a submitter may create a new submission for a
// task today. One active (pending or approved) submission per task,
// submitter and local calendar day; a rejection unblocks resubmission.
type Gate struct {
	repo   Repository
	logger *zap.Logger
}

// NewGate creates a submission gate over the ledger.
func NewGate(repo Repository, logger *zap.Logger) *Gate {
	return &Gate{repo: repo, logger: logger}
}

// CanSubmit checks the submitter's history for the calendar day
// containing now. now must already be in the submitter's local time
// zone so the day boundary is their local midnight.
//
// A lookup failure denies: an erroneous duplicate is harder to
// reconcile after the fact than a retried request.
func (g *Gate) CanSubmit(ctx context.Context, taskID, submitterID uuid.UUID, now time.Time) GateDecision {
	day := now.Format(dayLayout)

	subs, err := g.repo.ListForTaskAndDay(ctx, taskID, submitterID, day)
	if err != nil {
		g.logger.Error("submission gate lookup failed, failing closed",
			zap.String("task_id", taskID.String()),
			zap.String("submitter_id", submitterID.String()),
			zap.Error(err))
		return GateDecision{Allowed: false, Reason: ReasonLookupFailed}
	}

	if len(subs) == 0 {
		return GateDecision{Allowed: true}
	}

	switch subs[0].Status {
	case StatusRejected:
		return GateDecision{Allowed: true}
	case StatusApproved:
		return GateDecision{Allowed: false, Reason: ReasonAlreadyApproved}
	default:
		return GateDecision{Allowed: false, Reason: ReasonAwaitingReview}
	}
}
