package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"job-board/internal/domain/access"
	"job-board/internal/domain/application"
	"job-board/internal/domain/job"
	"job-board/internal/domain/user"
	"job-board/internal/infrastructure/storage"
	"job-board/internal/notification"
	"job-board/internal/pkg/pagination"

	"github.com/gabriel-vasile/mimetype"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("already applied")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrValidation        = errors.New("validation failed")
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowedResumeTypes = map[string]struct{}{
	MIMEPDF:  {},
	MIMEDOCX: {},
}

type Resume struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ApplyInput struct {
	CoverLetter string
	Resume      *Resume
}

func (in ApplyInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.CoverLetter, validation.Length(0, 200)),
		validation.Field(&in.Resume, validation.Required.Error("resume file is required")),
	)
}

type MineInput struct {
	Company   string
	JobStatus string
	Statuses  []string
	SortBy    string
	Order     string
	Page      pagination.Params
}

type ForJobInput struct {
	Status string
	Page   pagination.Params
}

type Service struct {
	apps     application.Repository
	jobs     job.Repository
	users    user.Repository
	store    storage.Store
	notifier notification.Notifier
	logger   *slog.Logger
}

func NewService(apps application.Repository, jobs job.Repository, users user.Repository, store storage.Store, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		apps:     apps,
		jobs:     jobs,
		users:    users,
		store:    store,
		notifier: notifier,
		logger:   logger.With("component", "applications"),
	}
}

// Apply records an application by actor to a job and notifies the company
// that posted it. The (applicant, job) pair is unique; a concurrent duplicate
// loses with ErrConflict at insert time.
func (s *Service) Apply(ctx context.Context, actor access.Actor, jobID uuid.UUID, in ApplyInput) (application.Application, error) {
	if d := access.CanApply(actor); !d.Allowed {
		return application.Application{}, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}
	in.CoverLetter = strings.TrimSpace(in.CoverLetter)
	if err := in.Validate(); err != nil {
		return application.Application{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return application.Application{}, fmt.Errorf("%w: job", ErrNotFound)
		}
		return application.Application{}, fmt.Errorf("load job: %w", err)
	}

	exists, err := s.apps.Exists(ctx, actor.ID, j.ID)
	if err != nil {
		return application.Application{}, fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return application.Application{}, ErrConflict
	}

	contentType, ok := ResumeType(in.Resume.ContentType, in.Resume.Data)
	if !ok {
		return application.Application{}, ErrUnsupportedFormat
	}

	applicant, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return application.Application{}, fmt.Errorf("load applicant: %w", err)
	}

	link, err := s.store.Store(ctx, ResumeKey(actor.ID, j.ID), in.Resume.Data, contentType)
	if err != nil {
		return application.Application{}, fmt.Errorf("store resume: %w", err)
	}

	created, err := s.apps.Create(ctx, application.Application{
		ID:          uuid.New(),
		ApplicantID: actor.ID,
		JobID:       j.ID,
		ResumeLink:  link,
		CoverLetter: in.CoverLetter,
		Status:      application.StatusApplied,
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrDuplicate):
			s.logger.Warn("duplicate application lost insert race", "applicant_id", actor.ID, "job_id", j.ID, "resume", link)
			return application.Application{}, ErrConflict
		case errors.Is(err, job.ErrNotFound):
			return application.Application{}, fmt.Errorf("%w: job", ErrNotFound)
		}
		return application.Application{}, fmt.Errorf("create application: %w", err)
	}

	company, err := s.users.GetByID(ctx, j.CompanyID)
	if err != nil {
		s.logger.Error("company lookup failed, applicant notification skipped", "job_id", j.ID, "error", err)
	} else {
		s.notifier.Send(notification.NewApplicant(company.Email, j.Title, applicant.FullName, link))
	}

	s.logger.Info("application submitted", "application_id", created.ID, "job_id", j.ID, "applicant_id", actor.ID)
	return created, nil
}

func (s *Service) ListMine(ctx context.Context, actor access.Actor, in MineInput) (pagination.Page[application.Mine], error) {
	if d := access.CanListOwnApplications(actor); !d.Allowed {
		return pagination.Page[application.Mine]{}, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	f := application.MineFilter{Company: strings.TrimSpace(in.Company)}
	if in.JobStatus != "" {
		st, err := job.ParseStatus(in.JobStatus)
		if err != nil {
			return pagination.Page[application.Mine]{}, fmt.Errorf("%w: %w", ErrValidation, validation.Errors{"job_status": err})
		}
		f.JobStatus = st
	}
	for _, raw := range in.Statuses {
		st, err := application.ParseStatus(raw)
		if err != nil {
			return pagination.Page[application.Mine]{}, fmt.Errorf("%w: %w", ErrInvalidStatus, err)
		}
		f.Statuses = append(f.Statuses, st)
	}

	f.SortBy = application.SortField(in.SortBy)
	if !f.SortBy.Valid() {
		f.SortBy = application.SortAppliedAt
	}
	f.Ascending = strings.EqualFold(in.Order, "asc")

	p := in.Page.Normalize()
	items, total, err := s.apps.ListByApplicant(ctx, actor.ID, f, p.Limit(), p.Offset())
	if err != nil {
		return pagination.Page[application.Mine]{}, fmt.Errorf("list applications: %w", err)
	}
	return pagination.NewPage(items, p, total), nil
}

func (s *Service) ListForJob(ctx context.Context, actor access.Actor, jobID uuid.UUID, in ForJobInput) (pagination.Page[application.ForJob], error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return pagination.Page[application.ForJob]{}, fmt.Errorf("%w: job", ErrNotFound)
		}
		return pagination.Page[application.ForJob]{}, fmt.Errorf("load job: %w", err)
	}
	if d := access.CanManageJob(actor, j); !d.Allowed {
		return pagination.Page[application.ForJob]{}, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}

	var status application.Status
	if in.Status != "" {
		status, err = application.ParseStatus(in.Status)
		if err != nil {
			return pagination.Page[application.ForJob]{}, fmt.Errorf("%w: %w", ErrInvalidStatus, err)
		}
	}

	p := in.Page.Normalize()
	items, total, err := s.apps.ListByJob(ctx, j.ID, status, p.Limit(), p.Offset())
	if err != nil {
		return pagination.Page[application.ForJob]{}, fmt.Errorf("list applications: %w", err)
	}
	return pagination.NewPage(items, p, total), nil
}

// UpdateStatus sets any recognized status on an application to a job owned
// by actor. Interview, Rejected and Hired email the applicant once the change
// is committed.
func (s *Service) UpdateStatus(ctx context.Context, actor access.Actor, id uuid.UUID, raw string) (application.Detail, error) {
	to, err := application.ParseStatus(raw)
	if err != nil {
		return application.Detail{}, fmt.Errorf("%w: %w", ErrInvalidStatus, err)
	}

	var from application.Status
	d, err := s.apps.UpdateStatus(ctx, id, to, func(cur application.Detail) error {
		if dec := access.CanSetApplicationStatus(actor, cur.JobOwnerID); !dec.Allowed {
			return fmt.Errorf("%w: %s", ErrForbidden, dec.Reason)
		}
		from = cur.Status
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNotFound):
			return application.Detail{}, fmt.Errorf("%w: application", ErrNotFound)
		case errors.Is(err, ErrForbidden):
			return application.Detail{}, err
		}
		return application.Detail{}, fmt.Errorf("update application: %w", err)
	}

	if m, ok := notification.StatusChanged(d.ApplicantEmail, d.JobTitle, to); ok {
		s.notifier.Send(m)
	}

	s.logger.Info("application status changed", "application_id", id, "from", from, "to", to)
	return d, nil
}

// ResumeType resolves the effective MIME type of a resume. The declared type
// wins unless it is missing or generic, in which case the content is sniffed.
func ResumeType(declared string, data []byte) (string, bool) {
	ct, _, _ := strings.Cut(declared, ";")
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" || ct == "application/octet-stream" {
		ct = mimetype.Detect(data).String()
		ct, _, _ = strings.Cut(ct, ";")
	}
	_, ok := allowedResumeTypes[ct]
	return ct, ok
}

// ResumeKey names the stored resume of an applicant for a job.
func ResumeKey(applicantID, jobID uuid.UUID) string {
	return "resume_" + applicantID.String() + "_" + jobID.String()
}
