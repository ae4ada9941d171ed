package tracking

import (
	"context"
	"errors"

	"github.com/rimjeddah/consulate-api/internal/domain"
	"github.com/rimjeddah/consulate-api/internal/kafka"
	"github.com/rimjeddah/consulate-api/internal/repository"
	"github.com/rs/zerolog"
)

var ErrInvalidStatus = errors.New("invalid status value")

// TrackingUseCase serves the public status tracker, the AI assistant's
// read-only reference lookup, and the administrative status mutations.
type TrackingUseCase interface {
	FindByRef(ctx context.Context, ref string) (*domain.Appointment, error)
	ListAll(ctx context.Context) ([]domain.Appointment, error)
	UpdateStatus(ctx context.Context, ref string, status domain.Status) (*domain.Appointment, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Service struct {
	repo               repository.AppointmentRepository
	producer           Producer
	appointmentsTopic  string
	notificationsTopic string
	log                zerolog.Logger
}

type ServiceOption func(*Service)

func WithNotificationsTopic(topic string) ServiceOption {
	return func(s *Service) {
		s.notificationsTopic = topic
	}
}

func NewService(repo repository.AppointmentRepository, producer Producer, appointmentsTopic string, log zerolog.Logger, opts ...ServiceOption) *Service {
	service := &Service{
		repo:              repo,
		producer:          producer,
		appointmentsTopic: appointmentsTopic,
		log:               log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *Service) FindByRef(ctx context.Context, ref string) (*domain.Appointment, error) {
	return s.repo.FindByID(ctx, ref)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus is the single mutation the administrative surface has.
// Transitions between the three valid statuses are unrestricted; only
// enum membership is enforced.
func (s *Service) UpdateStatus(ctx context.Context, ref string, status domain.Status) (*domain.Appointment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, ref, status)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, updated)
	return updated, nil
}

func (s *Service) publish(ctx context.Context, appt *domain.Appointment) {
	if s.producer == nil || s.appointmentsTopic == "" {
		return
	}
	event := kafka.AppointmentEvent{
		Type:      kafka.EventStatusChanged,
		Ref:       appt.ID,
		ServiceID: appt.ServiceID,
		Date:      appt.Date,
		Time:      appt.TimeSlot,
		Email:     appt.Email,
		Status:    string(appt.Status),
		CreatedAt: appt.CreatedAt,
	}
	if err := s.producer.Publish(ctx, s.appointmentsTopic, appt.ID, event); err != nil {
		s.log.Warn().Err(err).Str("ref", appt.ID).Msg("status event publish failed")
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, appt.ID, event); err != nil {
			s.log.Warn().Err(err).Str("ref", appt.ID).Msg("status notification publish failed")
		}
	}
}

var _ TrackingUseCase = (*Service)(nil)
