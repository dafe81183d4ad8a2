package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"job-board/internal/database"
	"job-board/internal/domain/application"
	"job-board/internal/domain/job"

	"github.com/google/uuid"
)

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

var mineSortColumns = map[application.SortField]string{
	application.SortAppliedAt:   "a.applied_at",
	application.SortCompanyName: "c.full_name",
	application.SortStatus:      "a.status",
	application.SortJobTitle:    "j.title",
}

func (r *PostgresApplicationRepository) Exists(ctx context.Context, applicantID, jobID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE applicant_id = $1 AND job_id = $2)`,
		applicantID, jobID,
	).Scan(&exists)
	return exists, err
}

func (r *PostgresApplicationRepository) Create(ctx context.Context, a application.Application) (application.Application, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO applications (id, applicant_id, job_id, resume_link, cover_letter, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING applied_at, updated_at`,
		a.ID, a.ApplicantID, a.JobID, a.ResumeLink, a.CoverLetter, string(a.Status),
	).Scan(&a.AppliedAt, &a.UpdatedAt)
	switch {
	case errors.Is(err, database.ErrUniqueViolation):
		return application.Application{}, application.ErrDuplicate
	case errors.Is(err, database.ErrForeignKeyViolation):
		return application.Application{}, job.ErrNotFound
	case err != nil:
		return application.Application{}, err
	}
	return a, nil
}

func (r *PostgresApplicationRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID, f application.MineFilter, limit, offset int) ([]application.Mine, int, error) {
	args := []any{applicantID}
	where := []string{`a.applicant_id = $1`}

	if s := strings.TrimSpace(f.Company); s != "" {
		args = append(args, likePattern(s))
		where = append(where, fmt.Sprintf(`c.full_name ILIKE $%d`, len(args)))
	}
	if f.JobStatus != "" {
		args = append(args, string(f.JobStatus))
		where = append(where, fmt.Sprintf(`j.status = $%d`, len(args)))
	}
	if len(f.Statuses) > 0 {
		ss := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			ss = append(ss, string(s))
		}
		args = append(args, ss)
		where = append(where, fmt.Sprintf(`a.status = ANY($%d)`, len(args)))
	}

	from := ` FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN users c ON c.id = j.company_id
		WHERE ` + strings.Join(where, ` AND `)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+from, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := mineSortColumns[f.SortBy]
	if !ok {
		col = mineSortColumns[application.SortAppliedAt]
	}
	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.job_id, j.title, j.status, c.full_name, a.status, a.applied_at`+from+
			fmt.Sprintf(` ORDER BY %s %s, a.id LIMIT $%d OFFSET $%d`, col, dir, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]application.Mine, 0)
	for rows.Next() {
		var m application.Mine
		var jobStatus, status string
		if err := rows.Scan(&m.ID, &m.JobID, &m.JobTitle, &jobStatus, &m.CompanyName, &status, &m.AppliedAt); err != nil {
			return nil, 0, err
		}
		m.JobStatus = job.Status(jobStatus)
		m.Status = application.Status(status)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresApplicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID, status application.Status, limit, offset int) ([]application.ForJob, int, error) {
	args := []any{jobID}
	cond := `a.job_id = $1`
	if status != "" {
		args = append(args, string(status))
		cond += ` AND a.status = $2`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM applications a WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.applicant_id, u.full_name, a.resume_link, a.cover_letter, a.status, a.applied_at
		 FROM applications a
		 JOIN users u ON u.id = a.applicant_id
		 WHERE `+cond+fmt.Sprintf(` ORDER BY a.applied_at DESC, a.id LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]application.ForJob, 0)
	for rows.Next() {
		var a application.ForJob
		var s string
		if err := rows.Scan(&a.ID, &a.ApplicantID, &a.ApplicantName, &a.ResumeLink, &a.CoverLetter, &s, &a.AppliedAt); err != nil {
			return nil, 0, err
		}
		a.Status = application.Status(s)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, to application.Status, authorize func(application.Detail) error) (application.Detail, error) {
	var out application.Detail
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var d application.Detail
		var status string
		err := tx.QueryRow(ctx,
			`SELECT a.id, a.applicant_id, a.job_id, a.resume_link, a.cover_letter, a.status, a.applied_at, a.updated_at,
			        j.title, j.company_id, u.full_name, u.email
			 FROM applications a
			 JOIN jobs j ON j.id = a.job_id
			 JOIN users u ON u.id = a.applicant_id
			 WHERE a.id = $1
			 FOR UPDATE OF a`,
			id,
		).Scan(
			&d.ID, &d.ApplicantID, &d.JobID, &d.ResumeLink, &d.CoverLetter, &status, &d.AppliedAt, &d.UpdatedAt,
			&d.JobTitle, &d.JobOwnerID, &d.ApplicantName, &d.ApplicantEmail,
		)
		if err != nil {
			if errors.Is(err, database.ErrNoRows) {
				return application.ErrNotFound
			}
			return err
		}
		d.Status = application.Status(status)

		if err := authorize(d); err != nil {
			return err
		}

		if err := tx.QueryRow(ctx,
			`UPDATE applications SET status = $2, updated_at = now() WHERE id = $1 RETURNING updated_at`,
			d.ID, string(to),
		).Scan(&d.UpdatedAt); err != nil {
			return err
		}
		d.Status = to
		out = d
		return nil
	})
	if err != nil {
		return application.Detail{}, err
	}
	return out, nil
}
