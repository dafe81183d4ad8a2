package seeder

import (
	"context"
	"errors"
	"fmt"

	"job-board/internal/database"

	"github.com/google/uuid"
)

// JobsSeeder posts a few jobs for the demo company when it has none yet.
type JobsSeeder struct {
	CompanyEmail string
}

func (JobsSeeder) Name() string { return "jobs" }

func (s JobsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "jobs", "id", "company_id", "title", "description", "location", "status"); err != nil {
		return err
	}

	var companyID uuid.UUID
	if err := db.QueryRow(ctx, `SELECT id FROM users WHERE lower(email) = lower($1) AND role = 'company'`, s.CompanyEmail).Scan(&companyID); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return fmt.Errorf("demo company %s not found", s.CompanyEmail)
		}
		return err
	}

	var existing int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE company_id = $1`, companyID).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	items := []struct {
		Title       string
		Description string
		Location    string
		Status      string
	}{
		{Title: "Backend Engineer", Description: "Build and operate the services behind our hiring platform.", Location: "Remote", Status: "Open"},
		{Title: "Frontend Engineer", Description: "Own the candidate facing web application end to end.", Location: "Jakarta", Status: "Open"},
		{Title: "Data Analyst", Description: "Turn application funnel data into hiring insights.", Location: "Singapore", Status: "Draft"},
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, it := range items {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO jobs (id, company_id, title, description, location, status) VALUES ($1, $2, $3, $4, $5, $6)`,
				uuid.New(),
				companyID,
				it.Title,
				it.Description,
				it.Location,
				it.Status,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
