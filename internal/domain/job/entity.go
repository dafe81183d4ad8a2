package job

import (
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	CompanyName string
	Title       string
	Description string
	Location    string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Patch carries the optional fields of an update. Nil fields are left alone.
type Patch struct {
	Title       *string
	Description *string
	Location    *string
	Status      *Status
}

// Apply validates any status change against the transition table and then
// writes every present field. j is left untouched on error.
func (j *Job) Apply(p Patch) error {
	if p.Status != nil {
		if err := CanTransition(j.Status, *p.Status); err != nil {
			return err
		}
	}
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.Location != nil {
		j.Location = *p.Location
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	return nil
}

type Filter struct {
	Title    string
	Location string
	Company  string
}
