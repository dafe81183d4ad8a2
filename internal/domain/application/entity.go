package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"job-board/internal/domain/job"
)

type Status string

const (
	StatusApplied   Status = "Applied"
	StatusReviewed  Status = "Reviewed"
	StatusInterview Status = "Interview"
	StatusRejected  Status = "Rejected"
	StatusHired     Status = "Hired"
)

var ErrInvalidStatus = errors.New("invalid application status")

var statuses = []Status{StatusApplied, StatusReviewed, StatusInterview, StatusRejected, StatusHired}

// Statuses returns every recognized status in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

func ParseStatus(raw string) (Status, error) {
	for _, s := range statuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Notifies reports whether moving an application into s produces an email to
// the applicant.
func (s Status) Notifies() bool {
	switch s {
	case StatusInterview, StatusRejected, StatusHired:
		return true
	default:
		return false
	}
}

type Application struct {
	ID          uuid.UUID
	ApplicantID uuid.UUID
	JobID       uuid.UUID
	ResumeLink  string
	CoverLetter string
	Status      Status
	AppliedAt   time.Time
	UpdatedAt   time.Time
}

// Detail is an application joined with the parties involved in it.
type Detail struct {
	Application
	JobTitle       string
	JobOwnerID     uuid.UUID
	ApplicantName  string
	ApplicantEmail string
}

// Mine is one row of an applicant's own application history.
type Mine struct {
	ID          uuid.UUID
	JobID       uuid.UUID
	JobTitle    string
	JobStatus   job.Status
	CompanyName string
	Status      Status
	AppliedAt   time.Time
}

// ForJob is one row of the applications a company sees for a job.
type ForJob struct {
	ID            uuid.UUID
	ApplicantID   uuid.UUID
	ApplicantName string
	ResumeLink    string
	CoverLetter   string
	Status        Status
	AppliedAt     time.Time
}
