package verification

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"site-lens/field-portal/field-portal-backend/internal/classifier"
	"site-lens/field-portal/field-portal-backend/internal/inventory"
	"site-lens/field-portal/field-portal-backend/internal/notifications"
	"site-lens/field-portal/field-portal-backend/internal/tasks"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, sub *Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Submission), args.Error(1)
}

func (m *MockRepository) ListForTaskAndDay(ctx context.Context, taskID, submitterID uuid.UUID, day string) ([]Submission, error) {
	args := m.Called(ctx, taskID, submitterID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Submission), args.Error(1)
}

func (m *MockRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]Submission, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]Submission), args.Error(1)
}

func (m *MockRepository) ListPendingByProject(ctx context.Context, projectID uuid.UUID) ([]Submission, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]Submission), args.Error(1)
}

func (m *MockRepository) ListByProjectAndDay(ctx context.Context, projectID uuid.UUID, day time.Time) ([]Submission, error) {
	args := m.Called(ctx, projectID, day)
	return args.Get(0).([]Submission), args.Error(1)
}

func (m *MockRepository) TransitionFromPending(ctx context.Context, sub *Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

// MockDispatcher is a mock notification dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, event notifications.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockTaskDirectory is a mock task lookup
type MockTaskDirectory struct {
	mock.Mock
}

func (m *MockTaskDirectory) GetByID(ctx context.Context, id uuid.UUID) (*tasks.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasks.Task), args.Error(1)
}

// MockBlobStore is a mock photo store
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) UploadPhoto(ctx context.Context, key string, body io.Reader) (string, error) {
	args := m.Called(ctx, key, body)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) DeletePhoto(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockInferenceRunner is a mock classifier runtime
type MockInferenceRunner struct {
	mock.Mock
}

func (m *MockInferenceRunner) RunInference(ctx context.Context, photoPath string) ([]classifier.LabelScore, error) {
	args := m.Called(ctx, photoPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]classifier.LabelScore), args.Error(1)
}

// MockTaskCompleter is a mock task completion surface
type MockTaskCompleter struct {
	mock.Mock
}

func (m *MockTaskCompleter) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

// MockInventoryApplier is a mock inventory surface
type MockInventoryApplier struct {
	mock.Mock
}

func (m *MockInventoryApplier) ApplyUsage(ctx context.Context, itemID uuid.UUID, quantity float64) (*inventory.UsageResult, error) {
	args := m.Called(ctx, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.UsageResult), args.Error(1)
}

func (m *MockInventoryApplier) MarkEquipmentInUse(ctx context.Context, equipmentID, userID uuid.UUID) error {
	args := m.Called(ctx, equipmentID, userID)
	return args.Error(0)
}
