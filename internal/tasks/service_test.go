package tasks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"site-lens/field-portal/field-portal-backend/internal/notifications"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, task *Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Task), args.Error(1)
}

func (m *MockRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]Task, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Task), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, task *Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, event notifications.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestCreateTaskStartsNotStarted(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, new(MockDispatcher), zap.NewNop())

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*tasks.Task")).Return(nil)

	task, err := service.CreateTask(ctx, CreateTaskRequest{
		ProjectID:    uuid.New(),
		Name:         "Pour east foundation",
		ActivityKind: "concrete_pouring",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusNotStarted, task.Status)
	assert.True(t, task.ClassifierEligible())
	mockRepo.AssertExpectations(t)
}

func TestCreateTaskRequiresName(t *testing.T) {
	service := NewService(new(MockRepository), new(MockDispatcher), zap.NewNop())

	_, err := service.CreateTask(context.Background(), CreateTaskRequest{ProjectID: uuid.New()})
	assert.Error(t, err)
}

func TestAssignTaskNotifiesAssignee(t *testing.T) {
	mockRepo := new(MockRepository)
	mockDispatcher := new(MockDispatcher)
	service := NewService(mockRepo, mockDispatcher, zap.NewNop())

	ctx := context.Background()
	taskID := uuid.New()
	assigneeID := uuid.New()
	task := &Task{ID: taskID, ProjectID: uuid.New(), Name: "Lay tiles", Status: StatusNotStarted}

	mockRepo.On("GetByID", ctx, taskID).Return(task, nil)
	mockRepo.On("Update", ctx, mock.AnythingOfType("*tasks.Task")).Return(nil)
	mockDispatcher.On("Dispatch", ctx, mock.MatchedBy(func(e notifications.Event) bool {
		return e.Kind == notifications.EventProjectAssignment && e.RecipientID == assigneeID
	})).Return(nil)

	updated, err := service.AssignTask(ctx, taskID, assigneeID)
	require.NoError(t, err)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, assigneeID, *updated.AssigneeID)
	mockDispatcher.AssertExpectations(t)
}

func TestTransitionStatusRejectsIllegalMove(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, new(MockDispatcher), zap.NewNop())

	ctx := context.Background()
	taskID := uuid.New()
	task := &Task{ID: taskID, Status: StatusBlocked}
	mockRepo.On("GetByID", ctx, taskID).Return(task, nil)

	_, err := service.TransitionStatus(ctx, taskID, StatusCompleted)
	require.Error(t, err)
	// The error names the legal moves so clients can correct themselves.
	assert.Contains(t, err.Error(), "in_progress, cancelled")
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCompleteTaskFromInProgress(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, new(MockDispatcher), zap.NewNop())

	ctx := context.Background()
	taskID := uuid.New()
	task := &Task{ID: taskID, Status: StatusInProgress}
	mockRepo.On("GetByID", ctx, taskID).Return(task, nil)
	mockRepo.On("Update", ctx, mock.AnythingOfType("*tasks.Task")).Return(nil)

	err := service.CompleteTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)
}
