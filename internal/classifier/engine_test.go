package classifier

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine() *Engine {
	return NewEngine(zap.NewNop())
}

func TestPredictRenormalizesOverKnownActivity(t *testing.T) {
	// Example from the product requirements: 0.42/0.75 = 0.56 for
	// completed after discarding the tile_laying mass.
	output := []LabelScore{
		{Label: "concrete_pouring_completed", Score: 0.42},
		{Label: "concrete_pouring_in_progress", Score: 0.31},
		{Label: "tile_laying_completed", Score: 0.10},
		{Label: "concrete_pouring_not_started", Score: 0.02},
	}

	pred, err := newTestEngine().Predict(output, "concrete_pouring")
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, pred.Status)
	assert.InDelta(t, 0.42/0.75, pred.Confidence, 1e-9)
	assert.Equal(t, ConfidenceLow, pred.ConfidenceBucket)
	assert.True(t, pred.TaskMatch)
	assert.Equal(t, 100, pred.ProgressPercent)
	assert.Empty(t, pred.PredictedActivity)
	assert.False(t, IsReliable(pred.Confidence, pred.TaskMatch))
}

func TestPredictRenormalizedScoresSumToOne(t *testing.T) {
	output := []LabelScore{
		{Label: "bricklaying_completed", Score: 0.25},
		{Label: "bricklaying_in_progress", Score: 0.15},
		{Label: "bricklaying_not_started", Score: 0.05},
		{Label: "painting_completed", Score: 0.55},
	}

	var subsetSum float64
	for _, ls := range output[:3] {
		subsetSum += ls.Score
	}
	var renormalized float64
	for _, ls := range output[:3] {
		renormalized += ls.Score / subsetSum
	}
	assert.True(t, math.Abs(renormalized-1.0) < 1e-6)

	pred, err := newTestEngine().Predict(output, "bricklaying")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, pred.Status)
	assert.InDelta(t, 0.25/0.45, pred.Confidence, 1e-9)
}

func TestPredictFallsBackOnTaskMismatch(t *testing.T) {
	output := []LabelScore{
		{Label: "tile_laying_in_progress", Score: 0.30},
		{Label: "tile_laying_completed", Score: 0.61},
		{Label: "excavation_not_started", Score: 0.09},
	}

	pred, err := newTestEngine().Predict(output, "concrete_pouring")
	require.NoError(t, err)

	assert.False(t, pred.TaskMatch)
	assert.Equal(t, "tile_laying", pred.PredictedActivity)
	assert.Equal(t, StatusCompleted, pred.Status)
	// Raw score passes through untouched when no renormalization is possible.
	assert.InDelta(t, 0.61, pred.Confidence, 1e-9)
	assert.False(t, IsReliable(pred.Confidence, pred.TaskMatch))
}

func TestPredictBucketsConfidenceForDisplay(t *testing.T) {
	output := []LabelScore{
		{Label: "concrete_pouring_completed", Score: 0.85},
		{Label: "concrete_pouring_in_progress", Score: 0.05},
		{Label: "painting_completed", Score: 0.10},
	}

	pred, err := newTestEngine().Predict(output, "concrete_pouring")
	require.NoError(t, err)

	assert.InDelta(t, 0.85/0.90, pred.Confidence, 1e-9)
	assert.Equal(t, ConfidenceHigh, pred.ConfidenceBucket)
	assert.True(t, IsReliable(pred.Confidence, pred.TaskMatch))
}

func TestPredictRejectsIneligibleActivity(t *testing.T) {
	output := []LabelScore{{Label: "concrete_pouring_completed", Score: 0.9}}

	_, err := newTestEngine().Predict(output, "paperwork")
	assert.Error(t, err)
}

func TestPredictRejectsEmptyOutput(t *testing.T) {
	_, err := newTestEngine().Predict(nil, "concrete_pouring")
	assert.Error(t, err)
}

func TestIsReliableBoundary(t *testing.T) {
	assert.True(t, IsReliable(0.70, true))
	assert.True(t, IsReliable(0.99, true))
	assert.False(t, IsReliable(0.70, false))
	assert.False(t, IsReliable(0.69, true))
	assert.False(t, IsReliable(0.69, false))
}

func TestHandleCachesInitFailure(t *testing.T) {
	calls := 0
	handle := NewHandle(func() (Runtime, error) {
		calls++
		return nil, errors.New("model file corrupt")
	}, zap.NewNop())

	_, err := handle.RunInference(context.Background(), "photo.jpg")
	assert.ErrorIs(t, err, ErrModelUnavailable)

	_, err = handle.RunInference(context.Background(), "photo.jpg")
	assert.ErrorIs(t, err, ErrModelUnavailable)

	// Initialization is attempted once, not retried per call.
	assert.Equal(t, 1, calls)
}

type stubRuntime struct {
	output []LabelScore
}

func (s stubRuntime) RunInference(ctx context.Context, photoPath string) ([]LabelScore, error) {
	return s.output, nil
}

func TestHandleDelegatesWhenReady(t *testing.T) {
	want := []LabelScore{{Label: "painting_completed", Score: 0.8}}
	handle := NewHandle(func() (Runtime, error) {
		return stubRuntime{output: want}, nil
	}, zap.NewNop())

	got, err := handle.RunInference(context.Background(), "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
