package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleApplicant Role = "applicant"
	RoleCompany   Role = "company"
)

func (r Role) Valid() bool {
	return r == RoleApplicant || r == RoleCompany
}

type User struct {
	ID           uuid.UUID
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VerificationToken is a single-use credential proving ownership of an email
// address. Tokens are never updated in place: they are created and deleted.
type VerificationToken struct {
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func NewVerificationToken(userID uuid.UUID, now time.Time, ttl time.Duration) VerificationToken {
	now = now.UTC()
	return VerificationToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}
