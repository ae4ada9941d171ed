package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rimjeddah/consulate-api/internal/domain"
)

const pgUniqueViolation = "23505"

type PGAppointmentRepository struct {
	db *pgxpool.Pool
}

func NewPGAppointmentRepository(db *pgxpool.Pool) AppointmentRepository {
	return &PGAppointmentRepository{db: db}
}

const appointmentColumns = `id, service_id, full_name, passport_number, phone, email, slot_date, slot_time, status, passport_service_type, passport_photo, created_at`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	if err := row.Scan(&a.ID, &a.ServiceID, &a.Name, &a.PassportNumber, &a.Phone, &a.Email, &a.Date, &a.TimeSlot, &a.Status, &a.PassportServiceType, &a.PassportPhoto, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGAppointmentRepository) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appts := make([]domain.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *a)
	}
	return appts, rows.Err()
}

func (r *PGAppointmentRepository) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE upper(id) = upper($1)`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// AppendIfCapacity takes the slot through a conditional counter upsert:
// the increment only succeeds while booked < capacity, which makes the
// capacity check and the insert one atomic step.
func (r *PGAppointmentRepository) AppendIfCapacity(ctx context.Context, appt *domain.Appointment, capacity int) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var booked int
	err = tx.QueryRow(ctx, `INSERT INTO slot_occupancy (slot_date, slot_time, booked)
		VALUES ($1, $2, 1)
		ON CONFLICT (slot_date, slot_time) DO UPDATE SET booked = slot_occupancy.booked + 1
		WHERE slot_occupancy.booked < $3
		RETURNING booked`, appt.Date, appt.TimeSlot, capacity).Scan(&booked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSlotFull
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		appt.ID, appt.ServiceID, appt.Name, appt.PassportNumber, appt.Phone, appt.Email,
		appt.Date, appt.TimeSlot, appt.Status, appt.PassportServiceType, appt.PassportPhoto, appt.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateID
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGAppointmentRepository) ReplaceAll(ctx context.Context, appts []domain.Appointment) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE appointments, slot_occupancy`); err != nil {
		return err
	}
	for i := range appts {
		a := &appts[i]
		if _, err := tx.Exec(ctx, `INSERT INTO appointments (`+appointmentColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			a.ID, a.ServiceID, a.Name, a.PassportNumber, a.Phone, a.Email,
			a.Date, a.TimeSlot, a.Status, a.PassportServiceType, a.PassportPhoto, a.CreatedAt); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO slot_occupancy (slot_date, slot_time, booked)
			VALUES ($1, $2, 1)
			ON CONFLICT (slot_date, slot_time) DO UPDATE SET booked = slot_occupancy.booked + 1`,
			a.Date, a.TimeSlot); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGAppointmentRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Appointment, error) {
	row := r.db.QueryRow(ctx, `UPDATE appointments SET status = $1 WHERE upper(id) = upper($2)
		RETURNING `+appointmentColumns, status, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (r *PGAppointmentRepository) CountSlot(ctx context.Context, date, timeLabel string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM appointments WHERE slot_date = $1 AND slot_time = $2`, date, timeLabel).Scan(&count)
	return count, err
}

func (r *PGAppointmentRepository) SlotCounts(ctx context.Context, date string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT slot_time, count(*) FROM appointments WHERE slot_date = $1 GROUP BY slot_time`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		counts[label] = count
	}
	return counts, rows.Err()
}

var _ AppointmentRepository = (*PGAppointmentRepository)(nil)
