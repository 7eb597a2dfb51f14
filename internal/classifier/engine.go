package classifier

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ReliabilityThreshold is the minimum confidence for a task-matched
// prediction to drive any automatic side effect.
const ReliabilityThreshold = 0.70

// LabelScore is a single (label, score) pair from the model output.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// StatusPrediction is the task-scoped interpretation of a raw model
// output. Immutable once attached to a submission.
type StatusPrediction struct {
	Status            Status           `json:"status"`
	Confidence        float64          `json:"confidence"`
	ConfidenceBucket  ConfidenceBucket `json:"confidence_bucket"`
	ProgressPercent   int              `json:"progress_percent"`
	TaskMatch         bool             `json:"task_match"`
	PredictedActivity string           `json:"predicted_activity,omitempty"`
	ProducedAt        time.Time        `json:"produced_at"`
}

// IsReliable reports whether a prediction is trustworthy enough to
// trigger auto-completion: confident and consistent with the known task.
func IsReliable(confidence float64, taskMatch bool) bool {
	return confidence >= ReliabilityThreshold && taskMatch
}

// Engine turns raw multi-class model output into a task-scoped prediction.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new inference interpretation engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Predict interprets the raw model output for a task whose activity is
// already known from application state.
//
// Scores for other activities are noise once the task identity is known,
// so the engine keeps only the labels matching knownActivity and
// renormalizes their scores to sum to 1. The winning status's
// renormalized share is a more honest confidence than the raw global
// score. If the model produced no label at all for the known activity,
// the globally top-ranked label is returned as-is with TaskMatch=false
// so callers can warn that the model saw a different kind of work.
func (e *Engine) Predict(output []LabelScore, knownActivity string) (*StatusPrediction, error) {
	if !IsEligibleActivity(knownActivity) {
		return nil, fmt.Errorf("activity %q is not classifier-eligible", knownActivity)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("empty classifier output")
	}

	var (
		subsetSum  float64
		bestStatus Status
		bestScore  = -1.0
	)
	for _, ls := range output {
		activity, status, known := ParseLabel(ls.Label)
		if !known {
			e.logger.Warn("classifier label has no status suffix",
				zap.String("label", ls.Label))
		}
		if activity != knownActivity {
			continue
		}
		subsetSum += ls.Score
		if ls.Score > bestScore {
			bestScore = ls.Score
			bestStatus = status
		}
	}

	if subsetSum > 0 {
		confidence := bestScore / subsetSum
		return &StatusPrediction{
			Status:           bestStatus,
			Confidence:       confidence,
			ConfidenceBucket: BucketConfidence(confidence),
			ProgressPercent:  ProgressPercent(bestStatus),
			TaskMatch:        true,
			ProducedAt:       time.Now(),
		}, nil
	}

	// Model anomaly: no mass at all on the known activity. Fall back to
	// the global top-1 with its raw score, flagged as a task mismatch.
	top := output[0]
	for _, ls := range output[1:] {
		if ls.Score > top.Score {
			top = ls
		}
	}
	activity, status, _ := ParseLabel(top.Label)
	e.logger.Warn("classifier output contains no labels for known activity",
		zap.String("known_activity", knownActivity),
		zap.String("top_label", top.Label))

	return &StatusPrediction{
		Status:            status,
		Confidence:        top.Score,
		ConfidenceBucket:  BucketConfidence(top.Score),
		ProgressPercent:   ProgressPercent(status),
		TaskMatch:         false,
		PredictedActivity: activity,
		ProducedAt:        time.Now(),
	}, nil
}
