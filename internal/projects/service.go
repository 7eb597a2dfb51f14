package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-lens/field-portal/field-portal-backend/internal/notifications"
	"site-lens/field-portal/field-portal-backend/pkg/geospatial"
	"site-lens/field-portal/field-portal-backend/pkg/workflows"
)

// CreateProjectRequest carries the data needed to open a site.
type CreateProjectRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ManagerID   uuid.UUID `json:"manager_id"`
	// SiteBoundary is an optional GeoJSON feature describing the site perimeter.
	SiteBoundary string `json:"site_boundary"`
}

// Service provides project business logic.
type Service struct {
	repo         Repository
	dispatcher   notifications.Dispatcher
	stateMachine *workflows.StateMachine
	logger       *zap.Logger
}

// NewService creates a project service.
func NewService(repo Repository, dispatcher notifications.Dispatcher, logger *zap.Logger) *Service {
	return &Service{
		repo:         repo,
		dispatcher:   dispatcher,
		stateMachine: workflows.NewProjectStateMachine(),
		logger:       logger,
	}
}

// CreateProject opens a new site in planning state. A provided boundary
// is validated as GeoJSON and used to derive the site area.
func (s *Service) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if req.ManagerID == uuid.Nil {
		return nil, errors.New("manager_id is required")
	}

	project := &Project{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Status:      StatusPlanning,
		ManagerID:   req.ManagerID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if req.SiteBoundary != "" {
		geom, err := geospatial.ParseBoundary([]byte(req.SiteBoundary))
		if err != nil {
			return nil, fmt.Errorf("invalid site boundary: %w", err)
		}
		project.SiteBoundary = []byte(req.SiteBoundary)
		project.AreaHectares = geospatial.ToHectares(geospatial.AreaSquareMeters(geom))
		center := geospatial.Centroid(geom)
		project.CentroidLng = center.Lon()
		project.CentroidLat = center.Lat()
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// GetProject retrieves a project by id.
func (s *Service) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProjects retrieves all projects.
func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx)
}

// TransitionStatus moves a project through its lifecycle, enforcing the
// state machine.
func (s *Service) TransitionStatus(ctx context.Context, id uuid.UUID, to ProjectStatus) (*Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s not found", id)
	}

	if !s.stateMachine.CanTransition(string(project.Status), string(to)) {
		return nil, fmt.Errorf("invalid project transition from %s to %s, allowed: %s",
			project.Status, to, strings.Join(s.stateMachine.GetAllowedTransitions(string(project.Status)), ", "))
	}

	project.Status = to
	project.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// AddMember attaches a user to a project and notifies them.
func (s *Service) AddMember(ctx context.Context, projectID, userID uuid.UUID, role string) (*ProjectMember, error) {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s not found", projectID)
	}

	member := &ProjectMember{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		JoinedAt:  time.Now(),
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}

	if err := s.dispatcher.Dispatch(ctx, notifications.Event{
		RecipientID: userID,
		ProjectID:   projectID,
		Kind:        notifications.EventProjectAssignment,
		Payload: map[string]interface{}{
			"project_id":   projectID.String(),
			"project_name": project.Name,
			"role":         role,
		},
	}); err != nil {
		s.logger.Warn("failed to dispatch membership notification", zap.Error(err))
	}

	return member, nil
}

// ListMembers returns a project's members.
func (s *Service) ListMembers(ctx context.Context, projectID uuid.UUID) ([]ProjectMember, error) {
	return s.repo.ListMembers(ctx, projectID)
}
