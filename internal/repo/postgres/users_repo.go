package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mmutuku/campushub/internal/domain/user"
	"github.com/mmutuku/campushub/internal/observability"
)

const userColumns = `id, email, password_hash, name, role, is_active, reset_token, reset_expires, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return true
	}
	return false
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.IsActive,
		&u.ResetToken,
		&u.ResetExpires,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// Create inserts a new user. The caller supplies a bcrypt hash, never a
// plaintext password.
func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name string, role user.Role) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        user.NormalizeEmail(email),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, name, role, is_active, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_email", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			user.NormalizeEmail(email),
		))
		return err
	})

	return u, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_id", func() error {
		u, err = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))
		return err
	})

	return u, err
}

// UpdateProfile applies a partial update. Password changes arrive here only as
// a recomputed hash; there is no write path that stores the raw field.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, p user.UpdateProfileParams) (user.User, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	pos := 2

	if p.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", pos))
		args = append(args, *p.Name)
		pos++
	}

	if p.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", pos))
		args = append(args, user.NormalizeEmail(*p.Email))
		pos++
	}

	if p.PasswordHash != nil {
		sets = append(sets, fmt.Sprintf("password_hash = $%d", pos))
		args = append(args, *p.PasswordHash)
		pos++
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + userColumns

	var u user.User
	var err error

	err = r.observe("users.update_profile", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx, query, args...))
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.observe("users.set_reset_token", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users
			SET reset_token = $2, reset_expires = $3, updated_at = NOW()
			WHERE id = $1`,
			id, token, expires,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

// ConsumeResetToken overwrites the hash and clears the token fields in one
// conditional statement. Two racing completions cannot both match: the first
// one clears the token, so the second sees zero rows.
func (r *UsersRepo) ConsumeResetToken(ctx context.Context, email, token, newHash string) error {
	return r.observe("users.consume_reset_token", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users
			SET password_hash = $3,
			    reset_token = NULL,
			    reset_expires = NULL,
			    updated_at = NOW()
			WHERE email = $1
			  AND reset_token = $2
			  AND reset_expires > NOW()`,
			user.NormalizeEmail(email), token, newHash,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrResetInvalid
		}

		return nil
	})
}

func (r *UsersRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.observe("users.set_active", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`,
			id, active,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	return r.observe("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

// ListStaff returns every account whose role is not plain "user".
func (r *UsersRepo) ListStaff(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.observe("users.list_staff", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+userColumns+` FROM users WHERE role <> 'user' ORDER BY created_at ASC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)

			if err != nil {
				return err
			}

			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
