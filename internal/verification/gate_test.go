package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var gateNow = time.Date(2025, 6, 12, 14, 30, 0, 0, time.UTC)

func gateFixture(t *testing.T, history []Submission, lookupErr error) GateDecision {
	t.Helper()

	mockRepo := new(MockRepository)
	taskID := uuid.New()
	submitterID := uuid.New()

	ctx := context.Background()
	if lookupErr != nil {
		mockRepo.On("ListForTaskAndDay", ctx, taskID, submitterID, "2025-06-12").
			Return(nil, lookupErr)
	} else {
		mockRepo.On("ListForTaskAndDay", ctx, taskID, submitterID, "2025-06-12").
			Return(history, nil)
	}

	gate := NewGate(mockRepo, zap.NewNop())
	return gate.CanSubmit(ctx, taskID, submitterID, gateNow)
}

func TestGateAllowsFirstSubmissionOfDay(t *testing.T) {
	decision := gateFixture(t, []Submission{}, nil)
	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.Reason)
}

func TestGateDeniesWhilePending(t *testing.T) {
	decision := gateFixture(t, []Submission{
		{Status: StatusPending, SubmittedAt: gateNow.Add(-2 * time.Hour)},
	}, nil)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonAwaitingReview, decision.Reason)
}

func TestGateDeniesAfterApproval(t *testing.T) {
	decision := gateFixture(t, []Submission{
		{Status: StatusApproved, SubmittedAt: gateNow.Add(-2 * time.Hour)},
	}, nil)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonAlreadyApproved, decision.Reason)
}

func TestGateAllowsResubmissionAfterRejection(t *testing.T) {
	// Most recent first, matching the repository ordering.
	decision := gateFixture(t, []Submission{
		{Status: StatusRejected, SubmittedAt: gateNow.Add(-time.Hour)},
		{Status: StatusRejected, SubmittedAt: gateNow.Add(-3 * time.Hour)},
	}, nil)
	assert.True(t, decision.Allowed)
}

func TestGateMostRecentSubmissionWins(t *testing.T) {
	// An older rejection does not unblock while a newer attempt is pending.
	decision := gateFixture(t, []Submission{
		{Status: StatusPending, SubmittedAt: gateNow.Add(-time.Hour)},
		{Status: StatusRejected, SubmittedAt: gateNow.Add(-3 * time.Hour)},
	}, nil)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonAwaitingReview, decision.Reason)
}

func TestGateFailsClosedOnLookupError(t *testing.T) {
	decision := gateFixture(t, nil, errors.New("connection refused"))
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonLookupFailed, decision.Reason)
}

func TestGateUsesSubmitterLocalDay(t *testing.T) {
	mockRepo := new(MockRepository)
	taskID := uuid.New()
	submitterID := uuid.New()

	// 23:30 on June 12 in UTC+5: the lookup must key on June 12, not the
	// UTC date (June 12 18:30 UTC is still June 12, so use a harder case).
	loc := time.FixedZone("UTC+5", 5*3600)
	localNow := time.Date(2025, 6, 13, 1, 30, 0, 0, loc) // June 12 20:30 UTC

	ctx := context.Background()
	mockRepo.On("ListForTaskAndDay", ctx, taskID, submitterID, "2025-06-13").
		Return([]Submission{}, nil)

	gate := NewGate(mockRepo, zap.NewNop())
	decision := gate.CanSubmit(ctx, taskID, submitterID, localNow)

	assert.True(t, decision.Allowed)
	mockRepo.AssertExpectations(t)
}
