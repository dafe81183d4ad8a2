package application

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"job-board/internal/domain/job"
)

var (
	ErrNotFound  = errors.New("application not found")
	ErrDuplicate = errors.New("application already exists")
)

type SortField string

const (
	SortAppliedAt   SortField = "applied_at"
	SortCompanyName SortField = "company_name"
	SortStatus      SortField = "application_status"
	SortJobTitle    SortField = "job_title"
)

func (f SortField) Valid() bool {
	switch f {
	case SortAppliedAt, SortCompanyName, SortStatus, SortJobTitle:
		return true
	}
	return false
}

type MineFilter struct {
	Company   string
	JobStatus job.Status
	Statuses  []Status
	SortBy    SortField
	Ascending bool
}

type Repository interface {
	Exists(ctx context.Context, applicantID, jobID uuid.UUID) (bool, error)
	// Create returns ErrDuplicate when the (applicant, job) pair already has
	// an application.
	Create(ctx context.Context, a Application) (Application, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID, f MineFilter, limit, offset int) ([]Mine, int, error)
	ListByJob(ctx context.Context, jobID uuid.UUID, status Status, limit, offset int) ([]ForJob, int, error)
	// UpdateStatus locks the application, passes its detail to authorize and
	// writes the new status only when authorize returns nil.
	UpdateStatus(ctx context.Context, id uuid.UUID, to Status, authorize func(Detail) error) (Detail, error)
}
