package seeder

import (
	"context"
	"fmt"

	"job-board/internal/database"
	"job-board/internal/pkg/password"
)

// AccountsSeeder creates one verified company and one verified applicant.
type AccountsSeeder struct {
	Password string
}

func (AccountsSeeder) Name() string { return "accounts" }

func (s AccountsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "users", "id", "full_name", "email", "password_hash", "role", "is_verified"); err != nil {
		return err
	}
	if s.Password == "" {
		return fmt.Errorf("empty demo password")
	}

	hash, err := password.Hash(s.Password)
	if err != nil {
		return err
	}

	items := []struct {
		FullName string
		Email    string
		Role     string
	}{
		{FullName: "Acme Hiring", Email: DemoCompanyEmail, Role: "company"},
		{FullName: "Jane Doe", Email: DemoApplicantEmail, Role: "applicant"},
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, it := range items {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO users (id, full_name, email, password_hash, role, is_verified)
				 VALUES (gen_random_uuid(), $1, $2, $3, $4, TRUE)
				 ON CONFLICT DO NOTHING`,
				it.FullName,
				it.Email,
				hash,
				it.Role,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
