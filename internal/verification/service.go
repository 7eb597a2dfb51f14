package verification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-lens/field-portal/field-portal-backend/internal/classifier"
	"site-lens/field-portal/field-portal-backend/internal/notifications"
	"site-lens/field-portal/field-portal-backend/internal/tasks"
)

// TaskDirectory is the slice of the task store the submission flow needs.
type TaskDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*tasks.Task, error)
}

// BlobStore stores captured photos and returns a stable reference.
type BlobStore interface {
	UploadPhoto(ctx context.Context, key string, body io.Reader) (string, error)
	DeletePhoto(ctx context.Context, key string) error
}

// InferenceRunner runs the on-device model over a stored photo.
type InferenceRunner interface {
	RunInference(ctx context.Context, photoPath string) ([]classifier.LabelScore, error)
}

// SubmitRequest carries a worker's evidence submission.
// SubmittedAt must be in the submitter's local time zone; it defines
// the calendar day the one-per-day rule applies to.
type SubmitRequest struct {
	TaskID          uuid.UUID
	SubmitterID     uuid.UUID
	Kind            SubmissionKind
	Photo           io.Reader
	PhotoName       string
	Quantity        *float64
	InventoryItemID *uuid.UUID
	EquipmentID     *uuid.UUID
	SubmittedAt     time.Time
}

// SubmitResult is the outcome of a successful submission.
type SubmitResult struct {
	Submission *Submission `json:"submission"`
	// Warning carries the task-mismatch notice when the classifier saw
	// a different kind of work. Informational only; never blocks upload.
	Warning string `json:"warning,omitempty"`
}

// Service orchestrates the submission flow: gate check, optional
// inference, photo upload, atomic ledger create, reviewer notification.
type Service struct {
	gate       *Gate
	repo       Repository
	taskDir    TaskDirectory
	blobs      BlobStore
	model      InferenceRunner
	engine     *classifier.Engine
	dispatcher notifications.Dispatcher
	logger     *zap.Logger
}

// NewService creates the submission flow service.
func NewService(
	gate *Gate,
	repo Repository,
	taskDir TaskDirectory,
	blobs BlobStore,
	model InferenceRunner,
	engine *classifier.Engine,
	dispatcher notifications.Dispatcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		gate:       gate,
		repo:       repo,
		taskDir:    taskDir,
		blobs:      blobs,
		model:      model,
		engine:     engine,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Submit runs the full submission flow for a captured photo.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := validateSubmitRequest(req); err != nil {
		return nil, err
	}

	decision := s.gate.CanSubmit(ctx, req.TaskID, req.SubmitterID, req.SubmittedAt)
	if !decision.Allowed {
		return nil, &EligibilityDeniedError{Reason: decision.Reason}
	}

	task, err := s.taskDir.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("task %s not found", req.TaskID)
	}

	submissionID := uuid.New()
	key := fmt.Sprintf("photos/%s/%s/%s%s",
		task.ProjectID, req.TaskID, submissionID, path.Ext(req.PhotoName))
	photoRef, err := s.blobs.UploadPhoto(ctx, key, req.Photo)
	if err != nil {
		return nil, fmt.Errorf("photo upload failed: %w", err)
	}

	sub := &Submission{
		ID:              submissionID,
		TaskID:          req.TaskID,
		ProjectID:       task.ProjectID,
		SubmitterID:     req.SubmitterID,
		Kind:            req.Kind,
		PhotoRef:        photoRef,
		Quantity:        req.Quantity,
		InventoryItemID: req.InventoryItemID,
		EquipmentID:     req.EquipmentID,
		Status:          StatusPending,
		SubmittedAt:     req.SubmittedAt,
		SubmittedDay:    req.SubmittedAt.Format(dayLayout),
	}

	var warning string
	if req.Kind == KindTaskPhoto && task.ClassifierEligible() {
		sub.Prediction, warning = s.runInference(ctx, photoRef, task.ActivityKind)
		sub.ClassifierDriven = sub.Prediction != nil
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		// The photo was already uploaded; don't leave it orphaned behind
		// a submission that never made it into the ledger.
		s.discardPhoto(ctx, photoRef)
		if errors.Is(err, ErrDuplicateActiveSubmission) {
			// Lost the storage race to a concurrent duplicate.
			return nil, &EligibilityDeniedError{Reason: ReasonAwaitingReview}
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	if err := s.dispatcher.Dispatch(ctx, notifications.Event{
		ProjectID: task.ProjectID,
		Kind:      notifications.EventSubmissionPending,
		Payload: map[string]interface{}{
			"submission_id": sub.ID.String(),
			"task_id":       sub.TaskID.String(),
			"task_name":     task.Name,
			"submitter_id":  sub.SubmitterID.String(),
		},
	}); err != nil {
		s.logger.Warn("failed to notify reviewers of new submission", zap.Error(err))
	}

	return &SubmitResult{Submission: sub, Warning: warning}, nil
}

func (s *Service) discardPhoto(ctx context.Context, key string) {
	if err := s.blobs.DeletePhoto(ctx, key); err != nil {
		s.logger.Warn("failed to remove orphaned photo",
			zap.String("key", key), zap.Error(err))
	}
}

// runInference runs the classifier and interprets its output. Inference
// is strictly optional: any failure here degrades to "no prediction"
// and the evidence flow continues.
func (s *Service) runInference(ctx context.Context, photoRef, activity string) (*classifier.StatusPrediction, string) {
	scores, err := s.model.RunInference(ctx, photoRef)
	if err != nil {
		if !errors.Is(err, classifier.ErrModelUnavailable) {
			s.logger.Warn("inference failed, submitting without prediction", zap.Error(err))
		}
		return nil, ""
	}

	pred, err := s.engine.Predict(scores, activity)
	if err != nil {
		s.logger.Warn("prediction failed, submitting without prediction", zap.Error(err))
		return nil, ""
	}

	if !pred.TaskMatch {
		return pred, fmt.Sprintf(
			"classifier saw %q instead of the expected activity; prediction will not drive auto-completion",
			pred.PredictedActivity)
	}
	return pred, ""
}

// GetSubmission retrieves a submission by id.
func (s *Service) GetSubmission(ctx context.Context, id uuid.UUID) (*Submission, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	return sub, nil
}

// ReviewQueue lists a project's pending submissions, oldest first.
func (s *Service) ReviewQueue(ctx context.Context, projectID uuid.UUID) ([]Submission, error) {
	return s.repo.ListPendingByProject(ctx, projectID)
}

// Dashboard groups a project's submissions per submitter.
func (s *Service) Dashboard(ctx context.Context, projectID uuid.UUID) ([]SubmitterGroup, error) {
	subs, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return GroupBySubmitter(subs), nil
}

func validateSubmitRequest(req SubmitRequest) error {
	if req.Photo == nil {
		return &ValidationError{Message: "photo is required"}
	}
	switch req.Kind {
	case KindTaskPhoto, KindDamageReport:
	case KindMaterialUsage:
		if req.InventoryItemID == nil {
			return &ValidationError{Message: "material usage requires an inventory item"}
		}
		if req.Quantity == nil || *req.Quantity <= 0 {
			return &ValidationError{Message: "material usage requires a positive quantity"}
		}
	case KindEquipmentUsage:
		if req.EquipmentID == nil {
			return &ValidationError{Message: "equipment usage requires an equipment id"}
		}
	default:
		return &ValidationError{Message: fmt.Sprintf("unknown submission kind %q", req.Kind)}
	}
	return nil
}
