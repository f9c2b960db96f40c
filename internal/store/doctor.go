package store

import (
	"context"

	"hospital-booking/internal/model"
)

// DemoDoctors is the directory inserted by SeedDoctors.
var DemoDoctors = []model.Doctor{
	{FullName: "Dr. Alice Smith", Specialty: "Cardiology", Bio: "Expert in heart health."},
	{FullName: "Dr. Bob Johnson", Specialty: "Dermatology", Bio: "Specializes in skin care."},
	{FullName: "Dr. Carol Williams", Specialty: "Pediatrics", Bio: "Loves working with children."},
}

// ListDoctors returns every doctor, or only those of specialty when it is set.
func (s *Store) ListDoctors(ctx context.Context, specialty string) ([]model.Doctor, error) {
	q := `SELECT id, full_name, specialty, COALESCE(bio, '') FROM doctors`
	var args []any
	if specialty != "" {
		q += ` WHERE specialty = $1`
		args = append(args, specialty)
	}
	q += ` ORDER BY id`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Doctor{}
	for rows.Next() {
		var d model.Doctor
		if err := rows.Scan(&d.ID, &d.FullName, &d.Specialty, &d.Bio); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) GetDoctor(ctx context.Context, id int64) (*model.Doctor, error) {
	d := &model.Doctor{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, full_name, specialty, COALESCE(bio, '') FROM doctors WHERE id = $1`, id,
	).Scan(&d.ID, &d.FullName, &d.Specialty, &d.Bio)
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// SeedDoctors inserts DemoDoctors in one transaction and returns how many were added.
func (s *Store) SeedDoctors(ctx context.Context) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	for _, d := range DemoDoctors {
		_, err = tx.Exec(ctx,
			`INSERT INTO doctors (full_name, specialty, bio) VALUES ($1,$2,$3)`,
			d.FullName, d.Specialty, d.Bio,
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(DemoDoctors), nil
}
