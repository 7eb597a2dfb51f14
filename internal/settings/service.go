package settings

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"site-lens/field-portal/field-portal-backend/internal/notifications"
)

// Service manages per-user notification preferences and answers the
// dispatcher's channel checks.
type Service struct {
	repo Repository
}

// NewService creates a settings service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a user's preferences, falling back to the all-enabled defaults.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*NotificationPreferences, error) {
	prefs, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	if prefs == nil {
		return DefaultPreferences(userID), nil
	}
	return prefs, nil
}

// Update stores a user's preferences.
func (s *Service) Update(ctx context.Context, prefs *NotificationPreferences) error {
	if prefs.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	return s.repo.Upsert(ctx, prefs)
}

// ChannelEnabled reports whether the user accepts delivery on the
// given channel. Unknown channels default to enabled.
func (s *Service) ChannelEnabled(ctx context.Context, userID uuid.UUID, channel string) (bool, error) {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return true, err
	}
	switch channel {
	case notifications.ChannelWebSocket:
		return prefs.InAppEnabled, nil
	case notifications.ChannelPush:
		return prefs.PushEnabled, nil
	case notifications.ChannelEmail:
		return prefs.EmailEnabled, nil
	default:
		return true, nil
	}
}
