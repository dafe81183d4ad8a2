package seeder

import (
	"context"

	"job-board/internal/database"
)

// Seeder inserts demo rows. Run must be safe to repeat against a seeded
// database.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
