package verification

import (
	"errors"
	"fmt"
)

// Gate denial reasons surfaced to the submitter.
const (
	ReasonAwaitingReview  = "awaiting review"
	ReasonAlreadyApproved = "already approved today"
	ReasonLookupFailed    = "verification history unavailable, try again"
)

// ErrSubmissionNotFound indicates the submission id does not exist.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrDuplicateActiveSubmission indicates the storage-level uniqueness
// constraint rejected a concurrent duplicate for the same
// task/submitter/day.
var ErrDuplicateActiveSubmission = errors.New("an active submission already exists for this task today")

// EligibilityDeniedError is returned when the submission gate refuses a
// new submission. User-correctable; the reason is shown to the submitter.
type EligibilityDeniedError struct {
	Reason string
}

func (e *EligibilityDeniedError) Error() string {
	return fmt.Sprintf("submission not allowed: %s", e.Reason)
}

// ValidationError indicates a caller bug that must be fixed before retry.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InvalidStateTransitionError indicates an approve/reject on a
// submission that is not pending. Never a silent no-op: double review
// would double-apply inventory side effects.
type InvalidStateTransitionError struct {
	From SubmissionStatus
	To   SubmissionStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid submission transition from %s to %s", e.From, e.To)
}
