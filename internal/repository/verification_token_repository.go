package repository

import (
	"context"
	"errors"
	"time"

	"job-board/internal/database"
	"job-board/internal/domain/user"

	"github.com/google/uuid"
)

type PostgresVerificationTokenRepository struct {
	db database.DB
}

func NewPostgresVerificationTokenRepository(db database.DB) *PostgresVerificationTokenRepository {
	return &PostgresVerificationTokenRepository{db: db}
}

func (r *PostgresVerificationTokenRepository) Create(ctx context.Context, t user.VerificationToken) error {
	return insertToken(ctx, r.db, t)
}

func (r *PostgresVerificationTokenRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM email_tokens WHERE user_id = $1`, userID)
	return err
}

func (r *PostgresVerificationTokenRepository) Consume(ctx context.Context, token string, now time.Time, ttl time.Duration) (user.Consumption, error) {
	var out user.Consumption

	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var t user.VerificationToken
		err := tx.QueryRow(ctx,
			`SELECT token, user_id, expires_at, created_at FROM email_tokens WHERE token = $1 FOR UPDATE`,
			token,
		).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
		if err != nil {
			if errors.Is(err, database.ErrNoRows) {
				return user.ErrTokenNotFound
			}
			return err
		}

		u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, t.UserID))
		if err != nil {
			return err
		}

		out.User = u
		out.Outcome = user.Evaluate(t, u, now)

		switch out.Outcome {
		case user.OutcomeExpired:
			next := user.NewVerificationToken(u.ID, now, ttl)
			if err := insertToken(ctx, tx, next); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `DELETE FROM email_tokens WHERE token = $1`, t.Token); err != nil {
				return err
			}
			out.Replacement = &next
		case user.OutcomeVerified:
			if _, err := tx.Exec(ctx, `UPDATE users SET is_verified = TRUE, updated_at = now() WHERE id = $1`, u.ID); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `DELETE FROM email_tokens WHERE token = $1`, t.Token); err != nil {
				return err
			}
			out.User.IsVerified = true
		}
		return nil
	})
	if err != nil {
		return user.Consumption{}, err
	}
	return out, nil
}

func insertToken(ctx context.Context, q database.Querier, t user.VerificationToken) error {
	_, err := q.Exec(ctx,
		`INSERT INTO email_tokens (token, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		t.Token, t.UserID, t.ExpiresAt, t.CreatedAt,
	)
	return err
}
