package store

import (
	"context"
	"fmt"

	"hospital-booking/internal/model"
)

// CreateAppointment books a slot and sets a.ID. A doctor can hold one booking per
// exact start time; a taken slot yields ErrConflict.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var taken bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM appointments WHERE doctor_id = $1 AND appointment_time = $2)`,
		a.DoctorID, a.AppointmentTime,
	).Scan(&taken)
	if err != nil {
		return fmt.Errorf("check slot: %w", err)
	}
	if taken {
		return ErrConflict
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO appointments (user_id, doctor_id, appointment_time, status)
		 VALUES ($1,$2,$3,$4) RETURNING id`,
		a.UserID, a.DoctorID, a.AppointmentTime, a.Status,
	).Scan(&a.ID)
	if isUniqueViolation(err) {
		// unique index caught a concurrent booking
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	return tx.Commit(ctx)
}

// ListAppointments returns the user's bookings ordered by time, joined with the
// doctor's name and specialty ("Unknown" when the doctor row is gone).
func (s *Store) ListAppointments(ctx context.Context, userID int64) ([]model.AppointmentView, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.appointment_time, COALESCE(d.full_name, 'Unknown'),
		        COALESCE(d.specialty, 'Unknown'), a.status
		 FROM appointments a
		 LEFT JOIN doctors d ON d.id = a.doctor_id
		 WHERE a.user_id = $1
		 ORDER BY a.appointment_time ASC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AppointmentView{}
	for rows.Next() {
		var (
			v model.AppointmentView
			a model.Appointment
		)
		if err := rows.Scan(&v.ID, &a.AppointmentTime, &v.DoctorName, &v.Specialty, &v.Status); err != nil {
			return nil, err
		}
		v.AppointmentTime = a.AppointmentTime.Format(model.TimeLayout)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, doctor_id, appointment_time, status FROM appointments WHERE id = $1`, id,
	).Scan(&a.ID, &a.UserID, &a.DoctorID, &a.AppointmentTime, &a.Status)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// DeleteAppointment removes the booking; the caller has already checked ownership.
func (s *Store) DeleteAppointment(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
