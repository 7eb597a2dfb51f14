package workflows

// StateMachine enforces lifecycle status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewTaskStateMachine creates the state machine for construction task lifecycles
func NewTaskStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"not_started": {"in_progress", "completed", "blocked", "cancelled"},
			"in_progress": {"completed", "blocked", "cancelled"},
			"blocked":     {"in_progress", "cancelled"},
			"completed":   {},
			"cancelled":   {},
		},
	}
}

// NewSubmissionStateMachine creates the state machine for verification submissions
func NewSubmissionStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"pending":  {"approved", "rejected"},
			"approved": {},
			"rejected": {},
		},
	}
}

// NewProjectStateMachine creates the state machine for project lifecycles
func NewProjectStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"planning":  {"active", "cancelled"},
			"active":    {"on_hold", "completed", "cancelled"},
			"on_hold":   {"active", "cancelled"},
			"completed": {},
			"cancelled": {},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}
