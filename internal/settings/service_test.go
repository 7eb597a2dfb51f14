package settings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"site-lens/field-portal/field-portal-backend/internal/notifications"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Get(ctx context.Context, userID uuid.UUID) (*NotificationPreferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*NotificationPreferences), args.Error(1)
}

func (m *MockRepository) Upsert(ctx context.Context, prefs *NotificationPreferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

func TestGetDefaultsToAllEnabled(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)

	userID := uuid.New()
	mockRepo.On("Get", mock.Anything, userID).Return(nil, nil)

	prefs, err := service.Get(context.Background(), userID)

	require.NoError(t, err)
	assert.True(t, prefs.InAppEnabled)
	assert.True(t, prefs.PushEnabled)
	assert.True(t, prefs.EmailEnabled)
}

func TestChannelEnabledHonorsOptOut(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)

	userID := uuid.New()
	mockRepo.On("Get", mock.Anything, userID).Return(&NotificationPreferences{
		UserID:       userID,
		InAppEnabled: true,
		PushEnabled:  false,
		EmailEnabled: true,
	}, nil)

	ctx := context.Background()

	enabled, err := service.ChannelEnabled(ctx, userID, notifications.ChannelPush)
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = service.ChannelEnabled(ctx, userID, notifications.ChannelEmail)
	require.NoError(t, err)
	assert.True(t, enabled)

	// Unknown channels default to enabled.
	enabled, err = service.ChannelEnabled(ctx, userID, "CARRIER_PIGEON")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestUpdateRequiresUserID(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)

	err := service.Update(context.Background(), &NotificationPreferences{})

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
