package verification

import (
	"sort"

	"github.com/google/uuid"
)

// GroupBySubmitter builds the per-worker dashboard view: submissions
// sorted newest-first and grouped by submitter, with pending counts and
// last-activity timestamps. Pure read-side transformation.
func GroupBySubmitter(submissions []Submission) []SubmitterGroup {
	sorted := make([]Submission, len(submissions))
	copy(sorted, submissions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedAt.After(sorted[j].SubmittedAt)
	})

	index := make(map[uuid.UUID]int)
	var groups []SubmitterGroup

	for _, sub := range sorted {
		i, ok := index[sub.SubmitterID]
		if !ok {
			i = len(groups)
			index[sub.SubmitterID] = i
			groups = append(groups, SubmitterGroup{
				SubmitterID: sub.SubmitterID,
				// Globally sorted, so the first submission seen per
				// submitter carries their latest activity.
				LastActivityAt: sub.SubmittedAt,
			})
		}
		groups[i].Submissions = append(groups[i].Submissions, sub)
		if sub.Status == StatusPending {
			groups[i].PendingCount++
		}
	}

	return groups
}
