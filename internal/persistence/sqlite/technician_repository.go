package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/dispatch-board/internal/persistence"
)

// TechnicianRepository implements persistence.TechnicianDirectory using SQLite.
type TechnicianRepository struct {
	store *Store
}

// NewTechnicianRepository creates a SQLite technician directory.
func NewTechnicianRepository(store *Store) *TechnicianRepository {
	return &TechnicianRepository{store: store}
}

// ListTechnicians returns all technicians ordered by display name.
func (r *TechnicianRepository) ListTechnicians(ctx context.Context) ([]persistence.Technician, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, display_name, created_at, updated_at
		FROM technicians
		ORDER BY display_name ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var technicians []persistence.Technician
	for rows.Next() {
		var technician persistence.Technician
		var createdStr, updatedStr string
		if err := rows.Scan(&technician.ID, &technician.DisplayName, &createdStr, &updatedStr); err != nil {
			return nil, mapError(err)
		}
		if technician.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if technician.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		technicians = append(technicians, technician)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return technicians, nil
}

// UpsertTechnician inserts or refreshes a technician record. The directory is
// fed by an external sync job; the board itself only reads it.
func (r *TechnicianRepository) UpsertTechnician(ctx context.Context, technician persistence.Technician) error {
	if technician.ID == "" {
		return persistence.ErrConstraintViolation
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO technicians (id, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name, updated_at = excluded.updated_at`,
		technician.ID, technician.DisplayName, now, now)
	return mapError(err)
}
