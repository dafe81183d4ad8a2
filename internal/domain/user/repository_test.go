package user

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()
	valid := NewVerificationToken(id, now, time.Hour)
	expired := NewVerificationToken(id, now.Add(-2*time.Hour), time.Hour)

	assert.Equal(t, OutcomeVerified, Evaluate(valid, User{ID: id}, now))
	assert.Equal(t, OutcomeAlreadyVerified, Evaluate(valid, User{ID: id, IsVerified: true}, now))
	assert.Equal(t, OutcomeExpired, Evaluate(expired, User{ID: id}, now))
	assert.Equal(t, OutcomeExpired, Evaluate(expired, User{ID: id, IsVerified: true}, now))
}

func TestVerificationToken_ExpiresAtBoundary(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tok := NewVerificationToken(uuid.New(), now, time.Hour)

	assert.False(t, tok.Expired(now.Add(59*time.Minute)))
	assert.True(t, tok.Expired(now.Add(time.Hour)))
	assert.NotEmpty(t, tok.Token)
}
