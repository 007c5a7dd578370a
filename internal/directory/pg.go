package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func scanPerson(row pgx.Row) (*Person, error) {
	var p Person
	var specialty *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Role,
		&specialty,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}

	p.Specialty = specialty
	return &p, nil
}

func (s *PgStore) GetPerson(ctx context.Context, id string) (*Person, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, role, specialty
		FROM persons
		WHERE id = $1
	`, NormalizeID(id))
	return scanPerson(row)
}

func (s *PgStore) ListProviders(ctx context.Context, specialty string) ([]Person, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, role, specialty
		FROM persons
		WHERE role = 'provider'
		  AND ($1 = '' OR specialty = $1)
		ORDER BY id
	`, specialty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PgStore) CreatePerson(ctx context.Context, p Person) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO persons (id, name, role, specialty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`, NormalizeID(p.ID), p.Name, p.Role, p.Specialty)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrPersonExists
		}
		return err
	}
	return nil
}

func (s *PgStore) UpdatePerson(ctx context.Context, p Person) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE persons
		SET name = $2,
		    role = $3,
		    specialty = $4,
		    updated_at = now()
		WHERE id = $1
	`, NormalizeID(p.ID), p.Name, p.Role, p.Specialty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPersonNotFound
	}
	return nil
}

func (s *PgStore) DeletePerson(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM persons
		WHERE id = $1
	`, NormalizeID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPersonNotFound
	}
	return nil
}
