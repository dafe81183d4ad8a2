package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"job-board/internal/domain/access"
	"job-board/internal/domain/job"
	"job-board/internal/pkg/pagination"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("job not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
)

type CreateInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Status      *string `json:"status"`
}

func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Description, validation.Required, validation.Length(20, 2000)),
		validation.Field(&in.Location, validation.Length(0, 200)),
		validation.Field(&in.Status, validation.NilOrNotEmpty, validation.By(knownStatus)),
	)
}

type UpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Status      *string `json:"status"`
}

func (in UpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&in.Description, validation.NilOrNotEmpty, validation.Length(20, 2000)),
		validation.Field(&in.Location, validation.Length(0, 200)),
		validation.Field(&in.Status, validation.NilOrNotEmpty, validation.By(knownStatus)),
	)
}

func knownStatus(value interface{}) error {
	s, ok := value.(*string)
	if !ok || s == nil {
		return nil
	}
	if _, err := job.ParseStatus(*s); err != nil {
		return errors.New("must be one of Draft, Open, Closed")
	}
	return nil
}

type ListInput struct {
	Title    string
	Location string
	Company  string
	Page     pagination.Params
}

type Service struct {
	jobs   job.Repository
	cache  Cache
	logger *slog.Logger
}

func NewService(jobs job.Repository, cache Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, cache: cache, logger: logger.With("component", "jobs")}
}

func (s *Service) Create(ctx context.Context, actor access.Actor, in CreateInput) (job.Job, error) {
	if d := access.CanCreateJob(actor); !d.Allowed {
		return job.Job{}, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	if err := in.Validate(); err != nil {
		return job.Job{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	status := job.StatusDraft
	if in.Status != nil {
		status = job.Status(*in.Status)
	}

	created, err := s.jobs.Create(ctx, job.Job{
		ID:          uuid.New(),
		CompanyID:   actor.ID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Status:      status,
	})
	if err != nil {
		return job.Job{}, fmt.Errorf("create job: %w", err)
	}

	s.invalidateLists(ctx)
	s.logger.Info("job created", "job_id", created.ID, "company_id", actor.ID, "status", created.Status)
	return created, nil
}

// Update applies in to a job owned by actor. Status changes follow the job
// transition table; setting the current status again is accepted.
func (s *Service) Update(ctx context.Context, actor access.Actor, id uuid.UUID, in UpdateInput) (job.Job, error) {
	in.Title = trimPtr(in.Title)
	in.Description = trimPtr(in.Description)
	in.Location = trimPtr(in.Location)
	if err := in.Validate(); err != nil {
		return job.Job{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	patch := job.Patch{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
	}
	if in.Status != nil {
		st := job.Status(*in.Status)
		patch.Status = &st
	}

	var from job.Status
	updated, err := s.jobs.Update(ctx, id, func(j *job.Job) error {
		if d := access.CanManageJob(actor, *j); !d.Allowed {
			return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
		}
		from = j.Status
		return j.Apply(patch)
	})
	if err != nil {
		return job.Job{}, translate(err)
	}

	s.invalidate(ctx, id)
	if from != updated.Status {
		s.logger.Info("job status changed", "job_id", id, "from", from, "to", updated.Status)
	}
	return updated, nil
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func (s *Service) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	j, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if d := access.CanManageJob(actor, j); !d.Allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return translate(err)
	}

	s.invalidate(ctx, id)
	s.logger.Info("job deleted", "job_id", id, "company_id", actor.ID)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (job.Job, error) {
	key := detailCacheKey(id)
	var cached job.Job
	if s.cache != nil {
		if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	j, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return job.Job{}, translate(err)
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, j)
	}
	return j, nil
}

type listResult struct {
	Items []job.Job `json:"items"`
	Total int       `json:"total"`
}

func (s *Service) List(ctx context.Context, in ListInput) (pagination.Page[job.Job], error) {
	p := in.Page.Normalize()
	key := listCacheKey(in)

	var cached listResult
	if s.cache != nil {
		if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
			return pagination.NewPage(cached.Items, p, cached.Total), nil
		}
	}

	items, total, err := s.jobs.List(ctx, job.Filter{
		Title:    in.Title,
		Location: in.Location,
		Company:  in.Company,
	}, p.Limit(), p.Offset())
	if err != nil {
		return pagination.Page[job.Job]{}, fmt.Errorf("list jobs: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, listResult{Items: items, Total: total})
	}
	return pagination.NewPage(items, p, total), nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, detailCacheKey(id)); err != nil {
		s.logger.Warn("cache invalidation failed", "job_id", id, "error", err)
	}
	s.invalidateLists(ctx)
}

func (s *Service) invalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, listKeyPrefix+"*"); err != nil {
		s.logger.Warn("cache invalidation failed", "pattern", listKeyPrefix+"*", "error", err)
	}
}

func translate(err error) error {
	switch {
	case errors.Is(err, job.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, job.ErrInvalidTransition):
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	case errors.Is(err, ErrForbidden):
		return err
	default:
		return fmt.Errorf("job store: %w", err)
	}
}
