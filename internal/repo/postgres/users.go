package postgres

import (
	"context"
	"errors"

	"github.com/getlocalbuddy/backend/internal/domain/user"
	"github.com/getlocalbuddy/backend/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, password_hash, role, name, bio, city, avatar_url, created_at, updated_at`

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

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Name,
		&u.Bio,
		&u.City,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	var created user.User

	err := r.observe("users.create", func() error {
		var e error
		created, e = scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (id, email, password_hash, role, name, bio, city, avatar_url, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING `+userColumns,
			u.ID, u.Email, u.PasswordHash, u.Role, u.Name, u.Bio, u.City, u.AvatarURL, u.CreatedAt, u.UpdatedAt,
		))
		return e
	})

	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return created, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+`
			FROM users
			WHERE email = $1`,
			user.NormalizeEmail(email),
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return e
	})

	if err != nil {
		// a malformed uuid can never match a row
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeInvalidTextRep {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error) {
	req = req.Trimmed()

	var u user.User

	err := r.observe("users.update_profile", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
				SET name = COALESCE($2, name),
					bio = COALESCE($3, bio),
					city = COALESCE($4, city),
					role = COALESCE($5, role),
					avatar_url = COALESCE($6, avatar_url),
					updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id, req.Name, req.Bio, req.City, req.Role, req.AvatarURL,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeInvalidTextRep {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
