package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/userdash/internal/domain/user"
	"github.com/geocoder89/userdash/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function
func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

const userColumns = `id, first_name, last_name, email, department`

func scanUser(row pgx.Row) (user.Record, error) {
	var (
		rec user.Record
		id  string
	)

	err := row.Scan(&id, &rec.FirstName, &rec.LastName, &rec.Email, &rec.Department)
	rec.ID = user.ID(id)

	return rec, err
}

func (r *UsersRepo) List(ctx context.Context, offset, limit int) ([]user.Record, error) {
	output := make([]user.Record, 0, limit)

	err := r.prom.ObserveDB("users.list", func() error {
		// seq keeps insertion order stable across updates
		rows, err := r.pool.Query(ctx,
			`SELECT `+userColumns+` FROM users ORDER BY seq ASC LIMIT $1 OFFSET $2`,
			limit, offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanUser(rows)
			if err != nil {
				return err
			}
			output = append(output, rec)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id user.ID) (user.Record, error) {
	var rec user.Record

	err := r.prom.ObserveDB("users.get", func() error {
		var err error
		rec, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id.String()))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.Record{}, user.ErrNotFound
		}
		return user.Record{}, err
	}

	return rec, nil
}

func (r *UsersRepo) Create(ctx context.Context, f user.Fields) (user.Record, error) {
	rec := f.WithID(user.ID(uuid.NewString()))

	err := r.prom.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users(id, first_name, last_name, email, department) VALUES($1,$2,$3,$4,$5)`,
			rec.ID.String(), rec.FirstName, rec.LastName, rec.Email, rec.Department,
		)
		return err
	})

	if err != nil {
		return user.Record{}, err
	}

	return rec, nil
}

func (r *UsersRepo) Update(ctx context.Context, id user.ID, f user.Fields) (user.Record, error) {
	var rec user.Record

	err := r.prom.ObserveDB("users.update", func() error {
		var err error
		rec, err = scanUser(r.pool.QueryRow(
			ctx,
			`UPDATE users
				SET first_name = $2,
						last_name = $3,
						email = $4,
						department = $5,
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id.String(),
			f.FirstName,
			f.LastName,
			f.Email,
			f.Department,
		))
		return err
	})

	if err != nil {
		// no row matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return user.Record{}, user.ErrNotFound
		}
		return user.Record{}, err
	}

	return rec, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id user.ID) error {
	var affected int64

	err := r.prom.ObserveDB("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return user.ErrNotFound
	}

	return nil
}
