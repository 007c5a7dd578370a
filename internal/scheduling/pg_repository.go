package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `id, patient_id, provider_id, visit_date, visit_time, visit_type,
	specialty, status, notes, summary, outcome, reminded, created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.ProviderID,
		&a.Date,
		&a.Time,
		&a.VisitType,
		&a.Specialty,
		&a.Status,
		&a.Notes,
		&a.Summary,
		&a.Outcome,
		&a.Reminded,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) Create(ctx context.Context, a Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments
			(patient_id, provider_id, visit_date, visit_time, visit_type,
			 specialty, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING `+appointmentColumns+`
	`, a.PatientID, a.ProviderID, a.Date, a.Time, a.VisitType, a.Specialty, a.Status, a.Notes)

	created, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) FindActiveBySlot(ctx context.Context, providerID, date, timeOfDay string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE provider_id = $1
		  AND visit_date = $2
		  AND visit_time = $3
		  AND status <> 'cancelled'
	`, providerID, date, timeOfDay)
	return scanAppointment(row)
}

func (r *PgRepository) OccupiedTimes(ctx context.Context, providerID, date string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT visit_time
		FROM appointments
		WHERE provider_id = $1
		  AND visit_date = $2
		  AND status <> 'cancelled'
	`, providerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id int64, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)

	return scanAppointment(row)
}

func (r *PgRepository) Complete(ctx context.Context, id int64, summary, outcome string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'completed',
		    summary = $2,
		    outcome = $3,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'scheduled'
		RETURNING `+appointmentColumns+`
	`, id, summary, outcome)

	return scanAppointment(row)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY visit_date, visit_time, id
	`, patientID)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListByProvider(ctx context.Context, providerID string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE provider_id = $1
		  AND status <> 'cancelled'
		ORDER BY visit_date, visit_time, id
	`, providerID)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListCompletedByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		  AND status = 'completed'
		ORDER BY visit_date DESC, visit_time DESC, id DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListAll(ctx context.Context) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY visit_date, visit_time, id
	`)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) FindUnreminded(ctx context.Context, date string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE visit_date = $1
		  AND status = 'scheduled'
		  AND reminded = false
		ORDER BY visit_time, id
	`, date)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) MarkReminded(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET reminded = true,
		    updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}
