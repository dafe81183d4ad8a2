package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already exists")
	ErrTokenNotFound = errors.New("verification token not found")
	ErrTokenExists   = errors.New("verification token already exists")
)

type Repository interface {
	Create(ctx context.Context, u User) error
	// CreateWithToken stores u and its first verification token together;
	// neither is kept when either write fails.
	CreateWithToken(ctx context.Context, u User, t VerificationToken) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}

// Outcome is the result of presenting a verification token.
type Outcome int

const (
	OutcomeVerified Outcome = iota + 1
	OutcomeAlreadyVerified
	OutcomeExpired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVerified:
		return "verified"
	case OutcomeAlreadyVerified:
		return "already_verified"
	case OutcomeExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Consumption describes a completed token consumption. Replacement is set
// only for OutcomeExpired.
type Consumption struct {
	Outcome     Outcome
	User        User
	Replacement *VerificationToken
}

type TokenRepository interface {
	Create(ctx context.Context, t VerificationToken) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	// Consume evaluates and applies a token atomically. ttl sizes the
	// replacement issued for an expired token.
	Consume(ctx context.Context, token string, now time.Time, ttl time.Duration) (Consumption, error)
}

// Evaluate decides what presenting t on behalf of u means at time now.
// Expiry wins over the verified flag so an expired token is always replaced.
func Evaluate(t VerificationToken, u User, now time.Time) Outcome {
	switch {
	case t.Expired(now):
		return OutcomeExpired
	case u.IsVerified:
		return OutcomeAlreadyVerified
	default:
		return OutcomeVerified
	}
}
