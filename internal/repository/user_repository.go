package repository

import (
	"context"
	"errors"
	"strings"

	"job-board/internal/database"
	"job-board/internal/domain/user"

	"github.com/google/uuid"
)

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, full_name, email, password_hash, role, is_verified, created_at, updated_at`

func (r *PostgresUserRepository) Create(ctx context.Context, u user.User) error {
	return insertUser(ctx, r.db, u)
}

func (r *PostgresUserRepository) CreateWithToken(ctx context.Context, u user.User, t user.VerificationToken) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return err
		}
		err := insertToken(ctx, tx, t)
		if errors.Is(err, database.ErrUniqueViolation) {
			return user.ErrTokenExists
		}
		return err
	})
}

func insertUser(ctx context.Context, q database.Querier, u user.User) error {
	_, err := q.Exec(ctx,
		`INSERT INTO users (id, full_name, email, password_hash, role, is_verified)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.FullName, strings.ToLower(u.Email), u.PasswordHash, string(u.Role), u.IsVerified,
	)
	if errors.Is(err, database.ErrUniqueViolation) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email),
	))
}

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	var role string
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &role, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	u.Role = user.Role(role)
	return u, nil
}
