package verification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the Postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

// Repository is the verification ledger: it stores submissions and
// their lifecycle state.
type Repository interface {
	// Create persists a new submission. Returns
	// ErrDuplicateActiveSubmission when a pending or approved submission
	// already exists for the same (task, submitter, day); the partial
	// unique index makes the check-then-create sequence atomic.
	Create(ctx context.Context, sub *Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	// ListForTaskAndDay returns the submitter's submissions for the
	// task on the given day, newest first.
	ListForTaskAndDay(ctx context.Context, taskID, submitterID uuid.UUID, day string) ([]Submission, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Submission, error)
	ListPendingByProject(ctx context.Context, projectID uuid.UUID) ([]Submission, error)
	ListByProjectAndDay(ctx context.Context, projectID uuid.UUID, day time.Time) ([]Submission, error)
	// TransitionFromPending writes the review fields guarded on the row
	// still being pending, so a concurrent double review loses cleanly.
	TransitionFromPending(ctx context.Context, sub *Submission) error
}

type postgresRepository struct {
	db *gorm.DB
}

// NewRepository creates the gorm-backed ledger, migrates its table and
// installs the active-submission uniqueness constraint.
func NewRepository(db *gorm.DB) (Repository, error) {
	if err := db.AutoMigrate(&Submission{}); err != nil {
		return nil, err
	}
	// Partial unique index: at most one pending/approved submission per
	// task+submitter+day. Rejected submissions do not count against it.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_active_submission_per_day
		ON submissions (task_id, submitter_id, submitted_day)
		WHERE status IN ('pending', 'approved')
	`).Error; err != nil {
		return nil, err
	}
	return &postgresRepository{db: db}, nil
}

func (r *postgresRepository) Create(ctx context.Context, sub *Submission) error {
	err := r.db.WithContext(ctx).Create(sub).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateActiveSubmission
		}
		return err
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	var sub Submission
	err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *postgresRepository) ListForTaskAndDay(ctx context.Context, taskID, submitterID uuid.UUID, day string) ([]Submission, error) {
	var subs []Submission
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND submitter_id = ? AND submitted_day = ?", taskID, submitterID, day).
		Order("submitted_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *postgresRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]Submission, error) {
	var subs []Submission
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("submitted_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *postgresRepository) ListPendingByProject(ctx context.Context, projectID uuid.UUID) ([]Submission, error) {
	var subs []Submission
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, StatusPending).
		Order("submitted_at ASC").
		Find(&subs).Error
	return subs, err
}

func (r *postgresRepository) ListByProjectAndDay(ctx context.Context, projectID uuid.UUID, day time.Time) ([]Submission, error) {
	var subs []Submission
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND submitted_day = ?", projectID, day.Format(dayLayout)).
		Order("submitted_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *postgresRepository) TransitionFromPending(ctx context.Context, sub *Submission) error {
	result := r.db.WithContext(ctx).
		Model(&Submission{}).
		Where("id = ? AND status = ?", sub.ID, StatusPending).
		Updates(map[string]interface{}{
			"status":           sub.Status,
			"reviewed_at":      sub.ReviewedAt,
			"reviewer_id":      sub.ReviewerID,
			"rejection_reason": sub.RejectionReason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Lost a review race or the id is gone; report the actual state.
		current, err := r.GetByID(ctx, sub.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrSubmissionNotFound
		}
		return &InvalidStateTransitionError{From: current.Status, To: sub.Status}
	}
	return nil
}
