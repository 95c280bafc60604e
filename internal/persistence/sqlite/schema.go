package sqlite

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS technicians (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS work_items (
		id TEXT PRIMARY KEY,
		item_type TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		billable INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_entries (
		id TEXT PRIMARY KEY,
		work_item_id TEXT NOT NULL,
		work_item_type TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (end_time > start_time)
	)`,
	`CREATE TABLE IF NOT EXISTS entry_technicians (
		entry_id TEXT NOT NULL REFERENCES schedule_entries(id) ON DELETE CASCADE,
		technician_id TEXT NOT NULL,
		PRIMARY KEY (entry_id, technician_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_entries_start ON schedule_entries(start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_entry_technicians_technician ON entry_technicians(technician_id)`,
}

// Migrate creates the schema when it does not yet exist. The statements are
// idempotent so repeated startups are safe.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
