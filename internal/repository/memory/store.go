// Package memory holds in-process implementations of the repository
// interfaces. A single Store backs all of them so joins behave like the
// Postgres ones.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"job-board/internal/domain/application"
	"job-board/internal/domain/job"
	"job-board/internal/domain/user"

	"github.com/google/uuid"
)

type Store struct {
	mu     sync.Mutex
	users  map[uuid.UUID]user.User
	tokens map[string]user.VerificationToken
	jobs   map[uuid.UUID]job.Job
	apps   map[uuid.UUID]application.Application

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:  map[uuid.UUID]user.User{},
		tokens: map[string]user.VerificationToken{},
		jobs:   map[uuid.UUID]job.Job{},
		apps:   map[uuid.UUID]application.Application{},
		now:    time.Now,
	}
}

func (s *Store) Users() *Users               { return &Users{s} }
func (s *Store) Tokens() *Tokens             { return &Tokens{s} }
func (s *Store) Jobs() *Jobs                 { return &Jobs{s} }
func (s *Store) Applications() *Applications { return &Applications{s} }

// SetClock replaces the time source used for created and updated stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// TokensFor returns the outstanding verification tokens of a user.
func (s *Store) TokensFor(userID uuid.UUID) []user.VerificationToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []user.VerificationToken
	for _, t := range s.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// PutToken stores t as is, bypassing expiry generation.
func (s *Store) PutToken(t user.VerificationToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.Token] = t
}

func (s *Store) ApplicationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.apps)
}

type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, u user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertUser(u)
}

func (r *Users) CreateWithToken(_ context.Context, u user.User, t user.VerificationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[t.Token]; ok {
		return user.ErrTokenExists
	}
	if err := r.s.insertUser(u); err != nil {
		return err
	}
	r.s.tokens[t.Token] = t
	return nil
}

func (s *Store) insertUser(u user.User) error {
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrEmailTaken
		}
	}
	u.Email = strings.ToLower(u.Email)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
		u.UpdatedAt = u.CreatedAt
	}
	s.users[u.ID] = u
	return nil
}

func (r *Users) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

type Tokens struct{ s *Store }

func (r *Tokens) Create(_ context.Context, t user.VerificationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[t.UserID]; !ok {
		return user.ErrNotFound
	}
	r.s.tokens[t.Token] = t
	return nil
}

func (r *Tokens) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, k)
		}
	}
	return nil
}

func (r *Tokens) Consume(_ context.Context, token string, now time.Time, ttl time.Duration) (user.Consumption, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[token]
	if !ok {
		return user.Consumption{}, user.ErrTokenNotFound
	}
	u, ok := r.s.users[t.UserID]
	if !ok {
		return user.Consumption{}, user.ErrNotFound
	}

	out := user.Consumption{Outcome: user.Evaluate(t, u, now), User: u}
	switch out.Outcome {
	case user.OutcomeExpired:
		next := user.NewVerificationToken(u.ID, now, ttl)
		r.s.tokens[next.Token] = next
		delete(r.s.tokens, t.Token)
		out.Replacement = &next
	case user.OutcomeVerified:
		u.IsVerified = true
		u.UpdatedAt = now
		r.s.users[u.ID] = u
		delete(r.s.tokens, t.Token)
		out.User = u
	}
	return out, nil
}

type Jobs struct{ s *Store }

func (r *Jobs) Create(_ context.Context, j job.Job) (job.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	owner, ok := r.s.users[j.CompanyID]
	if !ok {
		return job.Job{}, user.ErrNotFound
	}
	now := r.s.now().UTC()
	j.CreatedAt, j.UpdatedAt = now, now
	r.s.jobs[j.ID] = j
	j.CompanyName = owner.FullName
	return j, nil
}

func (r *Jobs) GetByID(_ context.Context, id uuid.UUID) (job.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.getLocked(id)
}

func (r *Jobs) getLocked(id uuid.UUID) (job.Job, error) {
	j, ok := r.s.jobs[id]
	if !ok {
		return job.Job{}, job.ErrNotFound
	}
	j.CompanyName = r.s.users[j.CompanyID].FullName
	return j, nil
}

func (r *Jobs) Update(_ context.Context, id uuid.UUID, mutate func(*job.Job) error) (job.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, err := r.getLocked(id)
	if err != nil {
		return job.Job{}, err
	}
	if err := mutate(&j); err != nil {
		return job.Job{}, err
	}
	j.UpdatedAt = r.s.now().UTC()
	r.s.jobs[id] = j
	return j, nil
}

func (r *Jobs) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobs[id]; !ok {
		return job.ErrNotFound
	}
	delete(r.s.jobs, id)
	for k, a := range r.s.apps {
		if a.JobID == id {
			delete(r.s.apps, k)
		}
	}
	return nil
}

func (r *Jobs) List(_ context.Context, f job.Filter, limit, offset int) ([]job.Job, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var all []job.Job
	for id := range r.s.jobs {
		j, _ := r.getLocked(id)
		if !contains(j.Title, f.Title) || !contains(j.Location, f.Location) || !contains(j.CompanyName, f.Company) {
			continue
		}
		all = append(all, j)
	}
	sort.Slice(all, func(i, k int) bool { return all[i].CreatedAt.After(all[k].CreatedAt) })
	return page(all, limit, offset), len(all), nil
}

type Applications struct{ s *Store }

func (r *Applications) Exists(_ context.Context, applicantID, jobID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.existsLocked(applicantID, jobID), nil
}

func (r *Applications) existsLocked(applicantID, jobID uuid.UUID) bool {
	for _, a := range r.s.apps {
		if a.ApplicantID == applicantID && a.JobID == jobID {
			return true
		}
	}
	return false
}

func (r *Applications) Create(_ context.Context, a application.Application) (application.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobs[a.JobID]; !ok {
		return application.Application{}, job.ErrNotFound
	}
	if r.existsLocked(a.ApplicantID, a.JobID) {
		return application.Application{}, application.ErrDuplicate
	}
	now := r.s.now().UTC()
	a.AppliedAt, a.UpdatedAt = now, now
	r.s.apps[a.ID] = a
	return a, nil
}

func (r *Applications) ListByApplicant(_ context.Context, applicantID uuid.UUID, f application.MineFilter, limit, offset int) ([]application.Mine, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var all []application.Mine
	for _, a := range r.s.apps {
		if a.ApplicantID != applicantID {
			continue
		}
		j := r.s.jobs[a.JobID]
		company := r.s.users[j.CompanyID].FullName
		if !contains(company, f.Company) {
			continue
		}
		if f.JobStatus != "" && j.Status != f.JobStatus {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, a.Status) {
			continue
		}
		all = append(all, application.Mine{
			ID:          a.ID,
			JobID:       a.JobID,
			JobTitle:    j.Title,
			JobStatus:   j.Status,
			CompanyName: company,
			Status:      a.Status,
			AppliedAt:   a.AppliedAt,
		})
	}

	less := func(a, b application.Mine) bool {
		switch f.SortBy {
		case application.SortCompanyName:
			return a.CompanyName < b.CompanyName
		case application.SortStatus:
			return a.Status < b.Status
		case application.SortJobTitle:
			return a.JobTitle < b.JobTitle
		default:
			return a.AppliedAt.Before(b.AppliedAt)
		}
	}
	sort.SliceStable(all, func(i, k int) bool {
		if f.Ascending {
			return less(all[i], all[k])
		}
		return less(all[k], all[i])
	})
	return page(all, limit, offset), len(all), nil
}

func (r *Applications) ListByJob(_ context.Context, jobID uuid.UUID, status application.Status, limit, offset int) ([]application.ForJob, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var all []application.ForJob
	for _, a := range r.s.apps {
		if a.JobID != jobID || (status != "" && a.Status != status) {
			continue
		}
		all = append(all, application.ForJob{
			ID:            a.ID,
			ApplicantID:   a.ApplicantID,
			ApplicantName: r.s.users[a.ApplicantID].FullName,
			ResumeLink:    a.ResumeLink,
			CoverLetter:   a.CoverLetter,
			Status:        a.Status,
			AppliedAt:     a.AppliedAt,
		})
	}
	sort.Slice(all, func(i, k int) bool { return all[i].AppliedAt.After(all[k].AppliedAt) })
	return page(all, limit, offset), len(all), nil
}

func (r *Applications) UpdateStatus(_ context.Context, id uuid.UUID, to application.Status, authorize func(application.Detail) error) (application.Detail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.apps[id]
	if !ok {
		return application.Detail{}, application.ErrNotFound
	}
	j := r.s.jobs[a.JobID]
	applicant := r.s.users[a.ApplicantID]
	d := application.Detail{
		Application:    a,
		JobTitle:       j.Title,
		JobOwnerID:     j.CompanyID,
		ApplicantName:  applicant.FullName,
		ApplicantEmail: applicant.Email,
	}
	if err := authorize(d); err != nil {
		return application.Detail{}, err
	}

	a.Status = to
	a.UpdatedAt = r.s.now().UTC()
	r.s.apps[id] = a
	d.Application = a
	return d, nil
}

func contains(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func hasStatus(set []application.Status, s application.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// SteppingClock returns a time source that advances by step on every call.
func SteppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(step)
		return cur
	}
}
