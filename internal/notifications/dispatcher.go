package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dispatcher delivers core events to their recipients.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event) error
}

// Channel is a single delivery mechanism (websocket, push, email).
type Channel interface {
	Name() string
	Send(ctx context.Context, event Event) error
}

// PreferenceStore answers whether a recipient accepts delivery on a
// channel. Project-wide events carry no recipient and skip the check.
type PreferenceStore interface {
	ChannelEnabled(ctx context.Context, userID uuid.UUID, channel string) (bool, error)
}

// Service fans events out to all configured channels. A channel failure
// is recorded and logged but never blocks the other channels; callers
// treat dispatch errors as observability signals, not flow control.
type Service struct {
	db       *gorm.DB
	channels []Channel
	prefs    PreferenceStore
	logger   *zap.Logger
}

// NewService creates a notification service over the given channels.
func NewService(db *gorm.DB, logger *zap.Logger, channels ...Channel) (*Service, error) {
	if err := db.AutoMigrate(&SentNotification{}); err != nil {
		return nil, err
	}
	return &Service{db: db, channels: channels, logger: logger}, nil
}

// WithPreferences makes the service honor per-user channel preferences.
func (s *Service) WithPreferences(prefs PreferenceStore) *Service {
	s.prefs = prefs
	return s
}

// Dispatch sends the event through every channel and records the outcome.
func (s *Service) Dispatch(ctx context.Context, event Event) error {
	payload, _ := json.Marshal(event.Payload)

	var lastErr error
	for _, ch := range s.channels {
		if s.skipByPreference(ctx, event, ch.Name()) {
			continue
		}
		record := &SentNotification{
			ID:          uuid.New(),
			RecipientID: event.RecipientID,
			ProjectID:   event.ProjectID,
			Kind:        string(event.Kind),
			Payload:     payload,
			Channel:     ch.Name(),
			Status:      StatusSent,
			CreatedAt:   time.Now(),
		}

		if err := ch.Send(ctx, event); err != nil {
			record.Status = StatusFailed
			record.Error = err.Error()
			lastErr = err
			s.logger.Warn("notification channel delivery failed",
				zap.String("channel", ch.Name()),
				zap.String("kind", string(event.Kind)),
				zap.Error(err))
		}

		if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
			s.logger.Warn("failed to record notification", zap.Error(err))
		}
	}
	return lastErr
}

// skipByPreference reports whether the recipient opted out of the
// channel. Lookup failures deliver anyway; dropping a notification over
// a preferences outage is the worse failure mode.
func (s *Service) skipByPreference(ctx context.Context, event Event, channel string) bool {
	if s.prefs == nil || event.RecipientID == uuid.Nil {
		return false
	}
	enabled, err := s.prefs.ChannelEnabled(ctx, event.RecipientID, channel)
	if err != nil {
		s.logger.Warn("failed to check notification preferences", zap.Error(err))
		return false
	}
	return !enabled
}
