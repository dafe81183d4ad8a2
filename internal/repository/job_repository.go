package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"job-board/internal/database"
	"job-board/internal/domain/job"

	"github.com/google/uuid"
)

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobSelect = `SELECT j.id, j.company_id, u.full_name, j.title, j.description, j.location, j.status, j.created_at, j.updated_at
	FROM jobs j
	JOIN users u ON u.id = j.company_id`

func (r *PostgresJobRepository) Create(ctx context.Context, j job.Job) (job.Job, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO jobs (id, company_id, title, description, location, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		j.ID, j.CompanyID, j.Title, j.Description, j.Location, string(j.Status),
	).Scan(&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return job.Job{}, err
	}
	return r.GetByID(ctx, j.ID)
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	return scanJob(r.db.QueryRow(ctx, jobSelect+` WHERE j.id = $1`, id))
}

func (r *PostgresJobRepository) Update(ctx context.Context, id uuid.UUID, mutate func(*job.Job) error) (job.Job, error) {
	var out job.Job
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		j, err := scanJob(tx.QueryRow(ctx, jobSelect+` WHERE j.id = $1 FOR UPDATE OF j`, id))
		if err != nil {
			return err
		}
		if err := mutate(&j); err != nil {
			return err
		}
		err = tx.QueryRow(ctx,
			`UPDATE jobs SET title = $2, description = $3, location = $4, status = $5, updated_at = now()
			 WHERE id = $1
			 RETURNING updated_at`,
			j.ID, j.Title, j.Description, j.Location, string(j.Status),
		).Scan(&j.UpdatedAt)
		if err != nil {
			return err
		}
		out = j
		return nil
	})
	if err != nil {
		return job.Job{}, err
	}
	return out, nil
}

func (r *PostgresJobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return job.ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) List(ctx context.Context, f job.Filter, limit, offset int) ([]job.Job, int, error) {
	var where []string
	var args []any
	add := func(cond, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		args = append(args, likePattern(value))
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	add(`j.title ILIKE $%d`, f.Title)
	add(`j.location ILIKE $%d`, f.Location)
	add(`u.full_name ILIKE $%d`, f.Company)

	cond := ""
	if len(where) > 0 {
		cond = ` WHERE ` + strings.Join(where, ` AND `)
	}

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs j JOIN users u ON u.id = j.company_id`+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx,
		jobSelect+cond+fmt.Sprintf(` ORDER BY j.created_at DESC, j.id LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func scanJob(row database.Row) (job.Job, error) {
	var j job.Job
	var status string
	if err := row.Scan(&j.ID, &j.CompanyID, &j.CompanyName, &j.Title, &j.Description, &j.Location, &status, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, err
	}
	j.Status = job.Status(status)
	return j, nil
}

// likePattern wraps s for a substring ILIKE match with wildcards escaped.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}
