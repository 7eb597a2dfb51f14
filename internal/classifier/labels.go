package classifier

import "strings"

// Status represents the completion state encoded in a classifier label
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// statusSuffixes are the label suffixes the model is trained to emit,
// checked in this order.
var statusSuffixes = []Status{StatusNotStarted, StatusInProgress, StatusCompleted}

// EligibleActivities is the fixed set of activities the on-device model
// was trained on. Tasks outside this set never go through inference.
var EligibleActivities = map[string]bool{
	"concrete_pouring":   true,
	"bricklaying":        true,
	"tile_laying":        true,
	"rebar_installation": true,
	"plastering":         true,
	"painting":           true,
	"excavation":         true,
	"scaffolding":        true,
}

// IsEligibleActivity reports whether activity is supported by the model.
func IsEligibleActivity(activity string) bool {
	return EligibleActivities[activity]
}

// ParseLabel decodes a compound model label of the form
// "<activity>_<status>" into its activity and status parts.
// A label without a recognized status suffix is treated as in_progress
// with the whole label as the activity; callers log that case as a
// data-quality signal rather than failing.
func ParseLabel(label string) (activity string, status Status, known bool) {
	for _, suffix := range statusSuffixes {
		if strings.HasSuffix(label, "_"+string(suffix)) {
			return strings.TrimSuffix(label, "_"+string(suffix)), suffix, true
		}
	}
	return label, StatusInProgress, false
}

// ProgressPercent maps a status to its display progress value.
func ProgressPercent(status Status) int {
	switch status {
	case StatusNotStarted:
		return 0
	case StatusCompleted:
		return 100
	default:
		return 50
	}
}

// ConfidenceBucket is the display tier for a prediction confidence.
type ConfidenceBucket string

const (
	ConfidenceHigh   ConfidenceBucket = "high"
	ConfidenceMedium ConfidenceBucket = "medium"
	ConfidenceLow    ConfidenceBucket = "low"
)

// BucketConfidence classifies a confidence value for display purposes only.
func BucketConfidence(confidence float64) ConfidenceBucket {
	switch {
	case confidence >= 0.80:
		return ConfidenceHigh
	case confidence >= 0.70:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
