package dto

import (
	"time"

	"job-board/internal/domain/user"

	"github.com/google/uuid"
)

type SignupResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

type VerifyResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

type UserProfileResponse struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewUserProfileResponse(u user.User) UserProfileResponse {
	return UserProfileResponse{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		Role:       string(u.Role),
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt.UTC(),
	}
}
