package projects

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

func (m *MockRepository) Create(ctx context.Context, project *Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Project), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Project), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, project *Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockRepository) AddMember(ctx context.Context, member *ProjectMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockRepository) ListMembers(ctx context.Context, projectID uuid.UUID) ([]ProjectMember, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ProjectMember), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, event notifications.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

const siteBoundary = `{"type":"Polygon","coordinates":[[[0,0],[0.001,0],[0.001,0.001],[0,0.001],[0,0]]]}`

func TestCreateProjectDerivesAreaAndCentroid(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, new(MockDispatcher), zap.NewNop())

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*projects.Project")).Return(nil)

	project, err := service.CreateProject(ctx, CreateProjectRequest{
		Name:         "Riverside towers",
		ManagerID:    uuid.New(),
		SiteBoundary: siteBoundary,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPlanning, project.Status)
	// ~111.32m a side near the equator, so just over a hectare.
	assert.InDelta(t, 1.24, project.AreaHectares, 0.05)
	assert.InDelta(t, 0.0005, project.CentroidLng, 1e-9)
	assert.InDelta(t, 0.0005, project.CentroidLat, 1e-9)
	mockRepo.AssertExpectations(t)
}

func TestCreateProjectRejectsBadBoundary(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, new(MockDispatcher), zap.NewNop())

	_, err := service.CreateProject(context.Background(), CreateProjectRequest{
		Name:         "Riverside towers",
		ManagerID:    uuid.New(),
		SiteBoundary: `{"type":"Point","coordinates":[0,0]}`,
	})
	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTransitionStatusRejectsIllegalMove(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, new(MockDispatcher), zap.NewNop())

	ctx := context.Background()
	id := uuid.New()
	mockRepo.On("GetByID", ctx, id).Return(&Project{ID: id, Status: StatusCompleted}, nil)

	_, err := service.TransitionStatus(ctx, id, StatusActive)
	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
