package dto

import (
	"time"

	"job-board/internal/domain/application"

	"github.com/google/uuid"
)

type ApplyResponse struct {
	ApplicationID uuid.UUID `json:"application_id"`
}

// MyApplicationResponse is what an applicant sees of their own application.
type MyApplicationResponse struct {
	ApplicationID uuid.UUID `json:"application_id"`
	JobID         uuid.UUID `json:"job_id"`
	JobTitle      string    `json:"job_title"`
	JobStatus     string    `json:"job_status"`
	CompanyName   string    `json:"company_name"`
	Status        string    `json:"status"`
	AppliedAt     time.Time `json:"applied_at"`
}

type JobApplicationResponse struct {
	ApplicationID uuid.UUID `json:"application_id"`
	ApplicantID   uuid.UUID `json:"applicant_id"`
	ApplicantName string    `json:"applicant_name"`
	ResumeLink    string    `json:"resume_link"`
	CoverLetter   string    `json:"cover_letter"`
	Status        string    `json:"status"`
	AppliedAt     time.Time `json:"applied_at"`
}

type ApplicationStatusResponse struct {
	ApplicationID uuid.UUID `json:"application_id"`
	JobID         uuid.UUID `json:"job_id"`
	ApplicantID   uuid.UUID `json:"applicant_id"`
	Status        string    `json:"status"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewMyApplications(items []application.Mine) []MyApplicationResponse {
	out := make([]MyApplicationResponse, 0, len(items))
	for _, it := range items {
		out = append(out, MyApplicationResponse{
			ApplicationID: it.ID,
			JobID:         it.JobID,
			JobTitle:      it.JobTitle,
			JobStatus:     string(it.JobStatus),
			CompanyName:   it.CompanyName,
			Status:        string(it.Status),
			AppliedAt:     it.AppliedAt.UTC(),
		})
	}
	return out
}

func NewJobApplications(items []application.ForJob) []JobApplicationResponse {
	out := make([]JobApplicationResponse, 0, len(items))
	for _, it := range items {
		out = append(out, JobApplicationResponse{
			ApplicationID: it.ID,
			ApplicantID:   it.ApplicantID,
			ApplicantName: it.ApplicantName,
			ResumeLink:    it.ResumeLink,
			CoverLetter:   it.CoverLetter,
			Status:        string(it.Status),
			AppliedAt:     it.AppliedAt.UTC(),
		})
	}
	return out
}

func NewApplicationStatusResponse(d application.Detail) ApplicationStatusResponse {
	return ApplicationStatusResponse{
		ApplicationID: d.ID,
		JobID:         d.JobID,
		ApplicantID:   d.ApplicantID,
		Status:        string(d.Status),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}
