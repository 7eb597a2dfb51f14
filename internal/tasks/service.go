package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-lens/field-portal/field-portal-backend/internal/notifications"
	"site-lens/field-portal/field-portal-backend/pkg/workflows"
)

// CreateTaskRequest carries the data needed to create a task.
type CreateTaskRequest struct {
	ProjectID    uuid.UUID `json:"project_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ActivityKind string    `json:"activity_kind"`
}

// Service provides task business logic.
type Service struct {
	repo         Repository
	dispatcher   notifications.Dispatcher
	stateMachine *workflows.StateMachine
	logger       *zap.Logger
}

// NewService creates a task service.
func NewService(repo Repository, dispatcher notifications.Dispatcher, logger *zap.Logger) *Service {
	return &Service{
		repo:         repo,
		dispatcher:   dispatcher,
		stateMachine: workflows.NewTaskStateMachine(),
		logger:       logger,
	}
}

// CreateTask creates a task in not_started state.
func (s *Service) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if req.ProjectID == uuid.Nil {
		return nil, errors.New("project_id is required")
	}

	task := &Task{
		ID:           uuid.New(),
		ProjectID:    req.ProjectID,
		Name:         req.Name,
		Description:  req.Description,
		ActivityKind: req.ActivityKind,
		Status:       StatusNotStarted,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask retrieves a task by id.
func (s *Service) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	return s.repo.GetByID(ctx, id)
}

// ListTasks retrieves the tasks of a project.
func (s *Service) ListTasks(ctx context.Context, projectID uuid.UUID) ([]Task, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// AssignTask assigns a worker to a task and notifies them.
func (s *Service) AssignTask(ctx context.Context, taskID, assigneeID uuid.UUID) (*Task, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %s not found", taskID)
	}

	task.AssigneeID = &assigneeID
	task.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	if err := s.dispatcher.Dispatch(ctx, notifications.Event{
		RecipientID: assigneeID,
		ProjectID:   task.ProjectID,
		Kind:        notifications.EventProjectAssignment,
		Payload: map[string]interface{}{
			"task_id":   task.ID.String(),
			"task_name": task.Name,
		},
	}); err != nil {
		s.logger.Warn("failed to dispatch assignment notification", zap.Error(err))
	}

	return task, nil
}

// TransitionStatus moves a task through its lifecycle, enforcing the
// state machine.
func (s *Service) TransitionStatus(ctx context.Context, taskID uuid.UUID, to TaskStatus) (*Task, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %s not found", taskID)
	}

	if !s.stateMachine.CanTransition(string(task.Status), string(to)) {
		return nil, fmt.Errorf("invalid task transition from %s to %s, allowed: %s",
			task.Status, to, strings.Join(s.stateMachine.GetAllowedTransitions(string(task.Status)), ", "))
	}

	task.Status = to
	task.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteTask transitions a task directly to completed. Used by the
// review workflow when a reliable classifier prediction is approved.
func (s *Service) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	_, err := s.TransitionStatus(ctx, taskID, StatusCompleted)
	return err
}
