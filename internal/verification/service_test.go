package verification

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"site-lens/field-portal/field-portal-backend/internal/classifier"
	"site-lens/field-portal/field-portal-backend/internal/notifications"
	"site-lens/field-portal/field-portal-backend/internal/tasks"
)

type serviceFixture struct {
	repo       *MockRepository
	taskDir    *MockTaskDirectory
	blobs      *MockBlobStore
	model      *MockInferenceRunner
	dispatcher *MockDispatcher
	service    *Service
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		repo:       new(MockRepository),
		taskDir:    new(MockTaskDirectory),
		blobs:      new(MockBlobStore),
		model:      new(MockInferenceRunner),
		dispatcher: new(MockDispatcher),
	}
	logger := zap.NewNop()
	f.service = NewService(
		NewGate(f.repo, logger),
		f.repo,
		f.taskDir,
		f.blobs,
		f.model,
		classifier.NewEngine(logger),
		f.dispatcher,
		logger,
	)
	return f
}

func photoTask() *tasks.Task {
	return &tasks.Task{
		ID:           uuid.New(),
		ProjectID:    uuid.New(),
		Name:         "Pour slab B2",
		ActivityKind: "concrete_pouring",
		Status:       tasks.StatusInProgress,
	}
}

func submitRequest(task *tasks.Task) SubmitRequest {
	return SubmitRequest{
		TaskID:      task.ID,
		SubmitterID: uuid.New(),
		Kind:        KindTaskPhoto,
		Photo:       strings.NewReader("jpeg bytes"),
		PhotoName:   "slab.jpg",
		SubmittedAt: time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC),
	}
}

func TestSubmitAttachesRenormalizedPrediction(t *testing.T) {
	f := newServiceFixture()
	task := photoTask()
	req := submitRequest(task)
	ctx := context.Background()

	f.repo.On("ListForTaskAndDay", ctx, task.ID, req.SubmitterID, "2025-06-12").
		Return([]Submission{}, nil)
	f.taskDir.On("GetByID", ctx, task.ID).Return(task, nil)
	f.blobs.On("UploadPhoto", ctx, mock.AnythingOfType("string"), req.Photo).
		Return("photos/ref.jpg", nil)
	f.model.On("RunInference", ctx, "photos/ref.jpg").Return([]classifier.LabelScore{
		{Label: "concrete_pouring_completed", Score: 0.42},
		{Label: "concrete_pouring_in_progress", Score: 0.31},
		{Label: "tile_laying_completed", Score: 0.10},
		{Label: "concrete_pouring_not_started", Score: 0.02},
	}, nil)
	f.repo.On("Create", ctx, mock.AnythingOfType("*verification.Submission")).Return(nil)
	f.dispatcher.On("Dispatch", ctx, mock.MatchedBy(func(e notifications.Event) bool {
		return e.Kind == notifications.EventSubmissionPending
	})).Return(nil)

	result, err := f.service.Submit(ctx, req)

	require.NoError(t, err)
	sub := result.Submission
	assert.Equal(t, StatusPending, sub.Status)
	assert.Equal(t, "photos/ref.jpg", sub.PhotoRef)
	assert.True(t, sub.ClassifierDriven)
	require.NotNil(t, sub.Prediction)
	assert.Equal(t, classifier.StatusCompleted, sub.Prediction.Status)
	assert.InDelta(t, 0.56, sub.Prediction.Confidence, 1e-9)
	assert.True(t, sub.Prediction.TaskMatch)
	assert.Empty(t, result.Warning)
	f.repo.AssertExpectations(t)
}

func TestSubmitDeniedWhilePending(t *testing.T) {
	f := newServiceFixture()
	task := photoTask()
	req := submitRequest(task)
	ctx := context.Background()

	f.repo.On("ListForTaskAndDay", ctx, task.ID, req.SubmitterID, "2025-06-12").
		Return([]Submission{{Status: StatusPending, SubmittedAt: req.SubmittedAt.Add(-time.Hour)}}, nil)

	_, err := f.service.Submit(ctx, req)

	var denied *EligibilityDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, ReasonAwaitingReview, denied.Reason)
	f.blobs.AssertNotCalled(t, "UploadPhoto", mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitDegradesWhenModelUnavailable(t *testing.T) {
	f := newServiceFixture()
	task := photoTask()
	req := submitRequest(task)
	ctx := context.Background()

	f.repo.On("ListForTaskAndDay", ctx, task.ID, req.SubmitterID, "2025-06-12").
		Return([]Submission{}, nil)
	f.taskDir.On("GetByID", ctx, task.ID).Return(task, nil)
	f.blobs.On("UploadPhoto", ctx, mock.AnythingOfType("string"), req.Photo).
		Return("photos/ref.jpg", nil)
	f.model.On("RunInference", ctx, "photos/ref.jpg").
		Return(nil, classifier.ErrModelUnavailable)
	f.repo.On("Create", ctx, mock.AnythingOfType("*verification.Submission")).Return(nil)
	f.dispatcher.On("Dispatch", ctx, mock.Anything).Return(nil)

	result, err := f.service.Submit(ctx, req)

	// The evidence flow must keep functioning without the classifier.
	require.NoError(t, err)
	assert.Nil(t, result.Submission.Prediction)
	assert.False(t, result.Submission.ClassifierDriven)
}

func TestSubmitWarnsOnTaskMismatch(t *testing.T) {
	f := newServiceFixture()
	task := photoTask()
	req := submitRequest(task)
	ctx := context.Background()

	f.repo.On("ListForTaskAndDay", ctx, task.ID, req.SubmitterID, "2025-06-12").
		Return([]Submission{}, nil)
	f.taskDir.On("GetByID", ctx, task.ID).Return(task, nil)
	f.blobs.On("UploadPhoto", ctx, mock.AnythingOfType("string"), req.Photo).
		Return("photos/ref.jpg", nil)
	f.model.On("RunInference", ctx, "photos/ref.jpg").Return([]classifier.LabelScore{
		{Label: "tile_laying_completed", Score: 0.88},
	}, nil)
	f.repo.On("Create", ctx, mock.AnythingOfType("*verification.Submission")).Return(nil)
	f.dispatcher.On("Dispatch", ctx, mock.Anything).Return(nil)

	result, err := f.service.Submit(ctx, req)

	require.NoError(t, err)
	assert.Contains(t, result.Warning, "tile_laying")
	require.NotNil(t, result.Submission.Prediction)
	assert.False(t, result.Submission.Prediction.TaskMatch)
}

func TestSubmitFailsClosedOnStorageRace(t *testing.T) {
	f := newServiceFixture()
	task := photoTask()
	req := submitRequest(task)
	req.Kind = KindDamageReport
	ctx := context.Background()

	f.repo.On("ListForTaskAndDay", ctx, task.ID, req.SubmitterID, "2025-06-12").
		Return([]Submission{}, nil)
	f.taskDir.On("GetByID", ctx, task.ID).Return(task, nil)
	f.blobs.On("UploadPhoto", ctx, mock.AnythingOfType("string"), req.Photo).
		Return("photos/ref.jpg", nil)
	f.repo.On("Create", ctx, mock.AnythingOfType("*verification.Submission")).
		Return(ErrDuplicateActiveSubmission)
	f.blobs.On("DeletePhoto", ctx, "photos/ref.jpg").Return(nil)

	_, err := f.service.Submit(ctx, req)

	var denied *EligibilityDeniedError
	require.ErrorAs(t, err, &denied)
	// The blob uploaded ahead of the failed create must not linger.
	f.blobs.AssertCalled(t, "DeletePhoto", ctx, "photos/ref.jpg")
}

func TestSubmitValidatesUsageFields(t *testing.T) {
	f := newServiceFixture()
	task := photoTask()

	req := submitRequest(task)
	req.Kind = KindMaterialUsage

	_, err := f.service.Submit(context.Background(), req)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	req.Kind = KindEquipmentUsage
	_, err = f.service.Submit(context.Background(), req)
	require.ErrorAs(t, err, &validationErr)
}

func TestSubmitSkipsInferenceForIneligibleTask(t *testing.T) {
	f := newServiceFixture()
	task := photoTask()
	task.ActivityKind = "" // not classifier-eligible
	req := submitRequest(task)
	ctx := context.Background()

	f.repo.On("ListForTaskAndDay", ctx, task.ID, req.SubmitterID, "2025-06-12").
		Return([]Submission{}, nil)
	f.taskDir.On("GetByID", ctx, task.ID).Return(task, nil)
	f.blobs.On("UploadPhoto", ctx, mock.AnythingOfType("string"), req.Photo).
		Return("photos/ref.jpg", nil)
	f.repo.On("Create", ctx, mock.AnythingOfType("*verification.Submission")).Return(nil)
	f.dispatcher.On("Dispatch", ctx, mock.Anything).Return(nil)

	result, err := f.service.Submit(ctx, req)

	require.NoError(t, err)
	assert.Nil(t, result.Submission.Prediction)
	f.model.AssertNotCalled(t, "RunInference", mock.Anything, mock.Anything)
}
