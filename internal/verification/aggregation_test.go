package verification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupBySubmitter(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	base := time.Date(2025, 6, 12, 8, 0, 0, 0, time.UTC)

	submissions := []Submission{
		{SubmitterID: alice, Status: StatusApproved, SubmittedAt: base},
		{SubmitterID: bob, Status: StatusPending, SubmittedAt: base.Add(3 * time.Hour)},
		{SubmitterID: alice, Status: StatusPending, SubmittedAt: base.Add(5 * time.Hour)},
		{SubmitterID: alice, Status: StatusRejected, SubmittedAt: base.Add(time.Hour)},
		{SubmitterID: bob, Status: StatusApproved, SubmittedAt: base.Add(2 * time.Hour)},
	}

	groups := GroupBySubmitter(submissions)

	require.Len(t, groups, 2)

	// Alice has the latest activity overall, so her group comes first.
	assert.Equal(t, alice, groups[0].SubmitterID)
	assert.Equal(t, 1, groups[0].PendingCount)
	assert.Equal(t, base.Add(5*time.Hour), groups[0].LastActivityAt)
	require.Len(t, groups[0].Submissions, 3)
	// Newest first within the group.
	assert.Equal(t, base.Add(5*time.Hour), groups[0].Submissions[0].SubmittedAt)
	assert.Equal(t, base.Add(time.Hour), groups[0].Submissions[1].SubmittedAt)
	assert.Equal(t, base, groups[0].Submissions[2].SubmittedAt)

	assert.Equal(t, bob, groups[1].SubmitterID)
	assert.Equal(t, 1, groups[1].PendingCount)
	assert.Equal(t, base.Add(3*time.Hour), groups[1].LastActivityAt)
}

func TestGroupBySubmitterEmpty(t *testing.T) {
	assert.Empty(t, GroupBySubmitter(nil))
	assert.Empty(t, GroupBySubmitter([]Submission{}))
}

func TestGroupBySubmitterDoesNotMutateInput(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	base := time.Now()

	submissions := []Submission{
		{SubmitterID: first, SubmittedAt: base},
		{SubmitterID: second, SubmittedAt: base.Add(time.Hour)},
	}

	GroupBySubmitter(submissions)

	assert.Equal(t, first, submissions[0].SubmitterID)
	assert.Equal(t, second, submissions[1].SubmitterID)
}
