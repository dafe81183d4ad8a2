package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"job-board/internal/database"
)

// ErrSchemaMismatch means the migrations that create a seeded table have not
// been applied.
var ErrSchemaMismatch = errors.New("schema mismatch")

// EnsureTableColumns checks that table exists in the public schema with every
// listed column. All missing columns are reported at once.
func EnsureTableColumns(ctx context.Context, db database.Querier, table string, columns ...string) error {
	if table == "" {
		return fmt.Errorf("empty table")
	}

	rows, err := db.Query(
		ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1`,
		table,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return err
		}
		existing[c] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(existing) == 0 {
		return fmt.Errorf("%w: table %s not found", ErrSchemaMismatch, table)
	}

	var missing []string
	for _, col := range columns {
		if _, ok := existing[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s missing %s", ErrSchemaMismatch, table, strings.Join(missing, ", "))
	}
	return nil
}
