package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/rimjeddah/consulate-api/internal/domain"
)

// MemoryAppointmentRepository is the mutex-guarded in-process store used
// by tests and storage-less demo runs. Semantics match the durable
// drivers, including atomicity of AppendIfCapacity.
type MemoryAppointmentRepository struct {
	mu    sync.Mutex
	appts []domain.Appointment
}

func NewMemoryAppointmentRepository() *MemoryAppointmentRepository {
	return &MemoryAppointmentRepository{appts: []domain.Appointment{}}
}

func (r *MemoryAppointmentRepository) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Appointment, len(r.appts))
	copy(out, r.appts)
	return out, nil
}

func (r *MemoryAppointmentRepository) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appts {
		if strings.EqualFold(a.ID, id) {
			found := a
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryAppointmentRepository) AppendIfCapacity(ctx context.Context, appt *domain.Appointment, capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, a := range r.appts {
		if strings.EqualFold(a.ID, appt.ID) {
			return ErrDuplicateID
		}
		if a.Date == appt.Date && a.TimeSlot == appt.TimeSlot {
			count++
		}
	}
	if count >= capacity {
		return ErrSlotFull
	}
	r.appts = append(r.appts, *appt)
	return nil
}

func (r *MemoryAppointmentRepository) ReplaceAll(ctx context.Context, appts []domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appts = make([]domain.Appointment, len(appts))
	copy(r.appts, appts)
	return nil
}

func (r *MemoryAppointmentRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appts {
		if strings.EqualFold(r.appts[i].ID, id) {
			r.appts[i].Status = status
			found := r.appts[i]
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryAppointmentRepository) CountSlot(ctx context.Context, date, timeLabel string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, a := range r.appts {
		if a.Date == date && a.TimeSlot == timeLabel {
			count++
		}
	}
	return count, nil
}

func (r *MemoryAppointmentRepository) SlotCounts(ctx context.Context, date string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, a := range r.appts {
		if a.Date == date {
			counts[a.TimeSlot]++
		}
	}
	return counts, nil
}

var _ AppointmentRepository = (*MemoryAppointmentRepository)(nil)
