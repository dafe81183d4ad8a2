package job

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("job not found")

type Repository interface {
	Create(ctx context.Context, j Job) (Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (Job, error)
	// Update loads the job under a row lock, hands it to mutate and persists
	// the result when mutate returns nil.
	Update(ctx context.Context, id uuid.UUID, mutate func(*Job) error) (Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]Job, int, error)
}
