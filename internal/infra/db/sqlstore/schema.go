package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables (and indexes) if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range d.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s schema: %w", d.Name, err)
		}
	}
	return nil
}
