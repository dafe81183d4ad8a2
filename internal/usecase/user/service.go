package user

import (
	"context"
	"errors"
	"fmt"

	"job-board/internal/domain/user"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("user not found")

// Service exposes read access to account profiles.
type Service struct {
	users user.Repository
}

func NewService(users user.Repository) *Service {
	return &Service{users: users}
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, fmt.Errorf("lookup user: %w", err)
	}
	u.PasswordHash = ""
	return u, nil
}
