package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/dispatch-board/internal/persistence"
)

// EntryRepository implements persistence.ScheduleEntryRepository using SQLite.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a SQLite schedule entry repository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// CreateEntry inserts a new entry with its technician assignments.
func (r *EntryRepository) CreateEntry(ctx context.Context, entry persistence.ScheduleEntry) error {
	if entry.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if !entry.End.After(entry.Start) {
		return persistence.ErrConstraintViolation
	}

	return r.store.withTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO schedule_entries (id, work_item_id, work_item_type, title, status, start_time, end_time, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID,
			entry.WorkItemID,
			string(entry.WorkItemType),
			entry.Title,
			entry.Status,
			entry.Start.UTC().Format(time.RFC3339),
			entry.End.UTC().Format(time.RFC3339),
			entry.CreatedAt.UTC().Format(time.RFC3339),
			entry.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return mapError(err)
		}
		return insertTechnicians(ctx, tx, entry.ID, entry.TechnicianIDs)
	})
}

// UpdateEntry replaces the mutable fields of an existing entry and rewrites
// its technician assignments.
func (r *EntryRepository) UpdateEntry(ctx context.Context, entry persistence.ScheduleEntry) error {
	if entry.ID == "" {
		return persistence.ErrNotFound
	}
	if !entry.End.After(entry.Start) {
		return persistence.ErrConstraintViolation
	}

	return r.store.withTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE schedule_entries
			SET title = ?, status = ?, start_time = ?, end_time = ?, updated_at = ?
			WHERE id = ?`,
			entry.Title,
			entry.Status,
			entry.Start.UTC().Format(time.RFC3339),
			entry.End.UTC().Format(time.RFC3339),
			entry.UpdatedAt.UTC().Format(time.RFC3339),
			entry.ID,
		)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM entry_technicians WHERE entry_id = ?", entry.ID); err != nil {
			return mapError(err)
		}
		return insertTechnicians(ctx, tx, entry.ID, entry.TechnicianIDs)
	})
}

// GetEntry loads a single entry by identifier.
func (r *EntryRepository) GetEntry(ctx context.Context, id string) (persistence.ScheduleEntry, error) {
	if id == "" {
		return persistence.ScheduleEntry{}, persistence.ErrNotFound
	}

	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, work_item_id, work_item_type, title, status, start_time, end_time, created_at, updated_at
		FROM schedule_entries
		WHERE id = ?`, id)

	entry, err := scanEntry(row)
	if err != nil {
		return persistence.ScheduleEntry{}, mapError(err)
	}

	technicians, err := r.loadTechnicians(ctx, entry.ID)
	if err != nil {
		return persistence.ScheduleEntry{}, err
	}
	entry.TechnicianIDs = technicians
	return entry, nil
}

// ListEntries returns entries overlapping the filter window ordered by start
// time.
func (r *EntryRepository) ListEntries(ctx context.Context, filter persistence.EntryFilter) ([]persistence.ScheduleEntry, error) {
	query := `
		SELECT id, work_item_id, work_item_type, title, status, start_time, end_time, created_at, updated_at
		FROM schedule_entries`

	var conditions []string
	var args []any
	if filter.StartsAfter != nil {
		conditions = append(conditions, "end_time > ?")
		args = append(args, filter.StartsAfter.UTC().Format(time.RFC3339))
	}
	if filter.EndsBefore != nil {
		conditions = append(conditions, "start_time < ?")
		args = append(args, filter.EndsBefore.UTC().Format(time.RFC3339))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time ASC, id ASC"

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var entries []persistence.ScheduleEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, mapError(err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range entries {
		technicians, err := r.loadTechnicians(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].TechnicianIDs = technicians
	}
	return entries, nil
}

// DeleteEntry removes an entry and its assignments.
func (r *EntryRepository) DeleteEntry(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.store.withTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM entry_technicians WHERE entry_id = ?", id); err != nil {
			return mapError(err)
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM schedule_entries WHERE id = ?", id)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (persistence.ScheduleEntry, error) {
	var entry persistence.ScheduleEntry
	var itemType, startStr, endStr, createdStr, updatedStr string

	err := row.Scan(
		&entry.ID,
		&entry.WorkItemID,
		&itemType,
		&entry.Title,
		&entry.Status,
		&startStr,
		&endStr,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return persistence.ScheduleEntry{}, err
	}

	entry.WorkItemType = persistence.WorkItemType(itemType)
	if entry.Start, err = time.Parse(time.RFC3339, startStr); err != nil {
		return persistence.ScheduleEntry{}, fmt.Errorf("parse start_time: %w", err)
	}
	if entry.End, err = time.Parse(time.RFC3339, endStr); err != nil {
		return persistence.ScheduleEntry{}, fmt.Errorf("parse end_time: %w", err)
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.ScheduleEntry{}, fmt.Errorf("parse created_at: %w", err)
	}
	if entry.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.ScheduleEntry{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return entry, nil
}

func insertTechnicians(ctx context.Context, tx *sql.Tx, entryID string, technicianIDs []string) error {
	seen := make(map[string]struct{}, len(technicianIDs))
	for _, technicianID := range technicianIDs {
		technicianID = strings.TrimSpace(technicianID)
		if technicianID == "" {
			continue
		}
		if _, ok := seen[technicianID]; ok {
			continue
		}
		seen[technicianID] = struct{}{}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO entry_technicians (entry_id, technician_id) VALUES (?, ?)",
			entryID, technicianID); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *EntryRepository) loadTechnicians(ctx context.Context, entryID string) ([]string, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT technician_id
		FROM entry_technicians
		WHERE entry_id = ?
		ORDER BY technician_id ASC`, entryID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var technicians []string
	for rows.Next() {
		var technicianID string
		if err := rows.Scan(&technicianID); err != nil {
			return nil, mapError(err)
		}
		technicians = append(technicians, technicianID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return technicians, nil
}
