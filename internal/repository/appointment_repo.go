package repository

import (
	"context"
	"errors"

	"github.com/rimjeddah/consulate-api/internal/domain"
)

var (
	// ErrNotFound is the normal absent-result outcome of lookups;
	// callers treat it as expected, never as a fault.
	ErrNotFound = errors.New("appointment not found")
	// ErrSlotFull is returned when an insert would push a slot past
	// its capacity. The store is left untouched.
	ErrSlotFull = errors.New("slot is at capacity")
	// ErrDuplicateID is returned when an insert reuses an existing
	// reference id; callers re-roll the id and retry.
	ErrDuplicateID = errors.New("reference id already exists")
)

// AppointmentRepository is the keyed collection backing every other
// component. Capacity and id uniqueness are enforced inside
// AppendIfCapacity as a single atomic operation, so the invariant holds
// under concurrent writers regardless of driver.
type AppointmentRepository interface {
	// ListAll returns every record in insertion order.
	ListAll(ctx context.Context) ([]domain.Appointment, error)
	// FindByID matches the reference id case-insensitively.
	FindByID(ctx context.Context, id string) (*domain.Appointment, error)
	// AppendIfCapacity inserts appt only while its (date, time) slot
	// holds fewer than capacity records and its id is unused.
	AppendIfCapacity(ctx context.Context, appt *domain.Appointment, capacity int) error
	// ReplaceAll overwrites the whole collection; restore/migration
	// path only, never part of the booking flow.
	ReplaceAll(ctx context.Context, appts []domain.Appointment) error
	// UpdateStatus rewrites the status of one record.
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Appointment, error)
	// CountSlot returns the occupancy of one (date, time) slot.
	CountSlot(ctx context.Context, date, timeLabel string) (int, error)
	// SlotCounts returns occupancy per time label for one date.
	SlotCounts(ctx context.Context, date string) (map[string]int, error)
}
