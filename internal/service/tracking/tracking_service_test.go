package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/rimjeddah/consulate-api/internal/domain"
	"github.com/rimjeddah/consulate-api/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func seededRepo(t *testing.T) *repository.MemoryAppointmentRepository {
	t.Helper()
	repo := repository.NewMemoryAppointmentRepository()
	appt := &domain.Appointment{
		ID:        "rim-abc123",
		ServiceID: "visa",
		Name:      "Ahmed Vall",
		Email:     "ahmed@example.com",
		Date:      "2024-12-01",
		TimeSlot:  "09:00",
		Status:    domain.StatusPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.AppendIfCapacity(context.Background(), appt, 3))
	return repo
}

func TestService_FindByRef_CaseInsensitive(t *testing.T) {
	service := NewService(seededRepo(t), nil, "appointments", zerolog.Nop())
	ctx := context.Background()

	found, err := service.FindByRef(ctx, "RIM-ABC123")
	require.NoError(t, err)
	assert.Equal(t, "rim-abc123", found.ID)
	assert.Equal(t, domain.Stages{Received: true}, domain.ProjectStage(found.Status))
}

func TestService_FindByRef_NotFound(t *testing.T) {
	service := NewService(seededRepo(t), nil, "appointments", zerolog.Nop())

	_, err := service.FindByRef(context.Background(), "RIM-ZZZZZZ")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestService_UpdateStatus(t *testing.T) {
	mockProducer := &MockProducer{}
	service := NewService(seededRepo(t), mockProducer, "appointments", zerolog.Nop(),
		WithNotificationsTopic("notifications"))
	ctx := context.Background()

	mockProducer.On("Publish", ctx, "appointments", "rim-abc123", mock.Anything).Return(nil).Once()
	mockProducer.On("Publish", ctx, "notifications", "rim-abc123", mock.Anything).Return(nil).Once()

	updated, err := service.UpdateStatus(ctx, "RIM-ABC123", domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)

	// Confirmed projects to received+processed, not completed.
	assert.Equal(t, domain.Stages{Received: true, Processed: true, Completed: false}, domain.ProjectStage(updated.Status))

	mockProducer.AssertExpectations(t)
}

func TestService_UpdateStatus_InvalidValue(t *testing.T) {
	mockProducer := &MockProducer{}
	service := NewService(seededRepo(t), mockProducer, "appointments", zerolog.Nop())

	_, err := service.UpdateStatus(context.Background(), "RIM-ABC123", domain.Status("cancelled"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
	mockProducer.AssertNotCalled(t, "Publish")
}

func TestService_UpdateStatus_NotFound(t *testing.T) {
	service := NewService(seededRepo(t), nil, "appointments", zerolog.Nop())

	_, err := service.UpdateStatus(context.Background(), "RIM-MISSING", domain.StatusConfirmed)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestService_ListAll(t *testing.T) {
	service := NewService(seededRepo(t), nil, "appointments", zerolog.Nop())

	all, err := service.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
