package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rimjeddah/consulate-api/internal/domain"
	"github.com/rs/zerolog"
)

// watchRetries bounds the optimistic-transaction retry loop when
// concurrent writers touch the collection key.
const watchRetries = 5

var errTxRetriesExhausted = errors.New("appointment store busy, retries exhausted")

// RedisAppointmentRepository keeps the whole collection as one JSON
// array under a single key, matching the portal's original storage
// layout. Writes go through WATCH/MULTI so the capacity check and the
// append commit together or not at all.
type RedisAppointmentRepository struct {
	client *redis.Client
	key    string
	log    zerolog.Logger
}

func NewRedisAppointmentRepository(client *redis.Client, key string, log zerolog.Logger) AppointmentRepository {
	return &RedisAppointmentRepository{client: client, key: key, log: log}
}

// load reads the collection, failing open to an empty slice when the
// key is absent or holds corrupt JSON. Corruption is logged so an
// operator can tell silently discarded history from a fresh store.
func (r *RedisAppointmentRepository) load(ctx context.Context, c redis.Cmdable) []domain.Appointment {
	data, err := c.Get(ctx, r.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Str("key", r.key).Msg("appointment store unreadable, treating as empty")
		}
		return []domain.Appointment{}
	}

	var appts []domain.Appointment
	if err := json.Unmarshal(data, &appts); err != nil {
		r.log.Warn().Err(err).Str("key", r.key).Msg("appointment store corrupt, treating as empty")
		return []domain.Appointment{}
	}
	return appts
}

func (r *RedisAppointmentRepository) store(ctx context.Context, p redis.Pipeliner, appts []domain.Appointment) error {
	payload, err := json.Marshal(appts)
	if err != nil {
		return err
	}
	return p.Set(ctx, r.key, payload, 0).Err()
}

// mutate runs fn against the current collection inside a WATCH
// transaction and writes the result back, retrying on interleaved
// writers. fn returning an error aborts without writing.
func (r *RedisAppointmentRepository) mutate(ctx context.Context, fn func(appts []domain.Appointment) ([]domain.Appointment, error)) error {
	txn := func(tx *redis.Tx) error {
		next, err := fn(r.load(ctx, tx))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			return r.store(ctx, p, next)
		})
		return err
	}

	for i := 0; i < watchRetries; i++ {
		err := r.client.Watch(ctx, txn, r.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errTxRetriesExhausted
}

func (r *RedisAppointmentRepository) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	return r.load(ctx, r.client), nil
}

func (r *RedisAppointmentRepository) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	for _, a := range r.load(ctx, r.client) {
		if strings.EqualFold(a.ID, id) {
			found := a
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *RedisAppointmentRepository) AppendIfCapacity(ctx context.Context, appt *domain.Appointment, capacity int) error {
	return r.mutate(ctx, func(appts []domain.Appointment) ([]domain.Appointment, error) {
		count := 0
		for _, a := range appts {
			if strings.EqualFold(a.ID, appt.ID) {
				return nil, ErrDuplicateID
			}
			if a.Date == appt.Date && a.TimeSlot == appt.TimeSlot {
				count++
			}
		}
		if count >= capacity {
			return nil, ErrSlotFull
		}
		return append(appts, *appt), nil
	})
}

func (r *RedisAppointmentRepository) ReplaceAll(ctx context.Context, appts []domain.Appointment) error {
	payload, err := json.Marshal(appts)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, payload, 0).Err()
}

func (r *RedisAppointmentRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Appointment, error) {
	var updated *domain.Appointment
	err := r.mutate(ctx, func(appts []domain.Appointment) ([]domain.Appointment, error) {
		for i := range appts {
			if strings.EqualFold(appts[i].ID, id) {
				appts[i].Status = status
				found := appts[i]
				updated = &found
				return appts, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *RedisAppointmentRepository) CountSlot(ctx context.Context, date, timeLabel string) (int, error) {
	count := 0
	for _, a := range r.load(ctx, r.client) {
		if a.Date == date && a.TimeSlot == timeLabel {
			count++
		}
	}
	return count, nil
}

func (r *RedisAppointmentRepository) SlotCounts(ctx context.Context, date string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, a := range r.load(ctx, r.client) {
		if a.Date == date {
			counts[a.TimeSlot]++
		}
	}
	return counts, nil
}

var _ AppointmentRepository = (*RedisAppointmentRepository)(nil)
