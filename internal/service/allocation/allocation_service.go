package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rimjeddah/consulate-api/internal/domain"
	"github.com/rimjeddah/consulate-api/internal/kafka"
	"github.com/rimjeddah/consulate-api/internal/repository"
	"github.com/rs/zerolog"
)

const (
	dateLayout = "2006-01-02"

	// maxSuggestions bounds the alternative slots offered when the
	// preferred one is full.
	maxSuggestions = 3
	// maxIDAttempts bounds the reference id re-roll on collision.
	maxIDAttempts = 3
)

var (
	ErrUnknownService      = errors.New("unknown service id")
	ErrUnknownSlot         = errors.New("unknown time slot")
	ErrInvalidDate         = errors.New("date must be YYYY-MM-DD")
	ErrInvalidPassportType = errors.New("invalid passport service type")
)

type AllocationUseCase interface {
	IsFull(ctx context.Context, date, timeLabel string) (bool, error)
	SuggestAlternatives(ctx context.Context, date, excludeTime string) ([]string, error)
	CreateAppointment(ctx context.Context, input CreateAppointmentInput) (*domain.Appointment, error)
	SlotAvailability(ctx context.Context, date string) ([]SlotStatus, error)
	OccupancyGrid(ctx context.Context, start string, days int) ([]DayOccupancy, error)
}

type Cache interface {
	GetSlotCounts(ctx context.Context, date string) (map[string]int, error)
	SetSlotCounts(ctx context.Context, date string, counts map[string]int) error
	InvalidateSlotCounts(ctx context.Context, date string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type RefGenerator interface {
	Generate(prefix string) (string, error)
}

type CreateAppointmentInput struct {
	ServiceID           string `json:"serviceId"`
	Name                string `json:"name"`
	PassportNumber      string `json:"passportNumber"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	Date                string `json:"date"`
	Time                string `json:"time"`
	PassportServiceType string `json:"passportServiceType"`
	PassportPhoto       string `json:"passportPhoto"`
}

// SlotStatus is one row of the booking form's time dropdown.
type SlotStatus struct {
	Label  string `json:"label"`
	Booked int    `json:"booked"`
	Full   bool   `json:"full"`
}

// DayOccupancy is one column of the admin heatmap.
type DayOccupancy struct {
	Date   string         `json:"date"`
	Counts map[string]int `json:"counts"`
}

// Service owns the per-slot capacity invariant: every insert goes
// through the repository's atomic capacity-guarded append, so two
// interleaved submissions can never overfill a slot.
type Service struct {
	repo               repository.AppointmentRepository
	ids                RefGenerator
	cache              Cache
	producer           Producer
	appointmentsTopic  string
	notificationsTopic string
	slots              []string
	capacity           int
	serviceIDs         map[string]struct{}
	log                zerolog.Logger
}

type ServiceOption func(*Service)

func WithNotificationsTopic(topic string) ServiceOption {
	return func(s *Service) {
		s.notificationsTopic = topic
	}
}

func NewService(
	repo repository.AppointmentRepository,
	ids RefGenerator,
	cache Cache,
	producer Producer,
	appointmentsTopic string,
	slots []string,
	capacity int,
	serviceIDs []string,
	log zerolog.Logger,
	opts ...ServiceOption,
) *Service {
	known := make(map[string]struct{}, len(serviceIDs))
	for _, id := range serviceIDs {
		known[id] = struct{}{}
	}
	service := &Service{
		repo:              repo,
		ids:               ids,
		cache:             cache,
		producer:          producer,
		appointmentsTopic: appointmentsTopic,
		slots:             slots,
		capacity:          capacity,
		serviceIDs:        known,
		log:               log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *Service) IsFull(ctx context.Context, date, timeLabel string) (bool, error) {
	counts, err := s.slotCounts(ctx, date)
	if err != nil {
		return false, err
	}
	return counts[timeLabel] >= s.capacity, nil
}

// SuggestAlternatives returns up to three open slots on date in catalog
// order, skipping excludeTime. Advisory only; capacity is re-checked at
// submission.
func (s *Service) SuggestAlternatives(ctx context.Context, date, excludeTime string) ([]string, error) {
	counts, err := s.slotCounts(ctx, date)
	if err != nil {
		return nil, err
	}

	suggestions := make([]string, 0, maxSuggestions)
	for _, label := range s.slots {
		if label == excludeTime {
			continue
		}
		if counts[label] >= s.capacity {
			continue
		}
		suggestions = append(suggestions, label)
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions, nil
}

func (s *Service) CreateAppointment(ctx context.Context, input CreateAppointmentInput) (*domain.Appointment, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	prefix := domain.RefPrefixGeneral
	if input.PassportServiceType != "" {
		prefix = domain.RefPrefixPassport
	}

	appt := &domain.Appointment{
		ServiceID:           input.ServiceID,
		Name:                input.Name,
		PassportNumber:      input.PassportNumber,
		Phone:               input.Phone,
		Email:               input.Email,
		Date:                input.Date,
		TimeSlot:            input.Time,
		Status:              domain.StatusPending,
		CreatedAt:           time.Now(),
		PassportServiceType: domain.PassportServiceType(input.PassportServiceType),
		PassportPhoto:       input.PassportPhoto,
	}

	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		appt.ID, err = s.ids.Generate(prefix)
		if err != nil {
			return nil, fmt.Errorf("generate reference id: %w", err)
		}
		err = s.repo.AppendIfCapacity(ctx, appt, s.capacity)
		if !errors.Is(err, repository.ErrDuplicateID) {
			break
		}
		s.log.Warn().Str("ref", appt.ID).Msg("reference id collision, regenerating")
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateSlotCounts(ctx, appt.Date); err != nil {
			s.log.Warn().Err(err).Str("date", appt.Date).Msg("availability cache invalidation failed")
		}
	}

	s.publish(ctx, kafka.EventAppointmentCreated, appt)
	return appt, nil
}

func (s *Service) SlotAvailability(ctx context.Context, date string) ([]SlotStatus, error) {
	counts, err := s.slotCounts(ctx, date)
	if err != nil {
		return nil, err
	}

	statuses := make([]SlotStatus, 0, len(s.slots))
	for _, label := range s.slots {
		statuses = append(statuses, SlotStatus{
			Label:  label,
			Booked: counts[label],
			Full:   counts[label] >= s.capacity,
		})
	}
	return statuses, nil
}

// OccupancyGrid reads occupancy straight from the store, bypassing the
// cache: administrators expect the heatmap to reflect the latest
// bookings.
func (s *Service) OccupancyGrid(ctx context.Context, start string, days int) ([]DayOccupancy, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return nil, ErrInvalidDate
	}

	grid := make([]DayOccupancy, 0, days)
	for i := 0; i < days; i++ {
		date := startDate.AddDate(0, 0, i).Format(dateLayout)
		counts, err := s.repo.SlotCounts(ctx, date)
		if err != nil {
			return nil, err
		}
		grid = append(grid, DayOccupancy{Date: date, Counts: counts})
	}
	return grid, nil
}

func (s *Service) validate(input CreateAppointmentInput) error {
	if _, ok := s.serviceIDs[input.ServiceID]; !ok {
		return ErrUnknownService
	}
	if _, err := time.Parse(dateLayout, input.Date); err != nil {
		return ErrInvalidDate
	}
	if !s.knownSlot(input.Time) {
		return ErrUnknownSlot
	}
	if input.PassportServiceType != "" && !domain.PassportServiceType(input.PassportServiceType).Valid() {
		return ErrInvalidPassportType
	}
	return nil
}

func (s *Service) knownSlot(label string) bool {
	for _, slot := range s.slots {
		if slot == label {
			return true
		}
	}
	return false
}

func (s *Service) slotCounts(ctx context.Context, date string) (map[string]int, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSlotCounts(ctx, date); err == nil && cached != nil {
			return cached, nil
		}
	}

	counts, err := s.repo.SlotCounts(ctx, date)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetSlotCounts(ctx, date, counts); err != nil {
			s.log.Warn().Err(err).Str("date", date).Msg("availability cache write failed")
		}
	}
	return counts, nil
}

// publish is best-effort: a broker outage must not fail a booking.
func (s *Service) publish(ctx context.Context, eventType string, appt *domain.Appointment) {
	if s.producer == nil || s.appointmentsTopic == "" {
		return
	}
	event := kafka.AppointmentEvent{
		Type:      eventType,
		Ref:       appt.ID,
		ServiceID: appt.ServiceID,
		Date:      appt.Date,
		Time:      appt.TimeSlot,
		Email:     appt.Email,
		Status:    string(appt.Status),
		CreatedAt: appt.CreatedAt,
	}
	if err := s.producer.Publish(ctx, s.appointmentsTopic, appt.ID, event); err != nil {
		s.log.Warn().Err(err).Str("ref", appt.ID).Str("event", eventType).Msg("event publish failed")
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, appt.ID, event); err != nil {
			s.log.Warn().Err(err).Str("ref", appt.ID).Str("event", eventType).Msg("notification publish failed")
		}
	}
}

var _ AllocationUseCase = (*Service)(nil)
