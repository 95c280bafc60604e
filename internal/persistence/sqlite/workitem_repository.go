package sqlite

import (
	"context"
	"strings"

	"github.com/example/dispatch-board/internal/persistence"
)

const defaultPageSize = 25

// WorkItemRepository implements persistence.WorkItemCatalog using SQLite.
type WorkItemRepository struct {
	store *Store
}

// NewWorkItemRepository creates a SQLite work item catalog.
func NewWorkItemRepository(store *Store) *WorkItemRepository {
	return &WorkItemRepository{store: store}
}

// SearchWorkItems returns a page of work items matching the query text and
// type filters.
func (r *WorkItemRepository) SearchWorkItems(ctx context.Context, query persistence.WorkItemQuery) (persistence.WorkItemPage, error) {
	var conditions []string
	var args []any

	if text := strings.TrimSpace(query.Text); text != "" {
		conditions = append(conditions, "(name LIKE ? OR description LIKE ?)")
		pattern := "%" + text + "%"
		args = append(args, pattern, pattern)
	}
	if len(query.Types) > 0 {
		placeholders := make([]string, len(query.Types))
		for i, itemType := range query.Types {
			placeholders[i] = "?"
			args = append(args, string(itemType))
		}
		conditions = append(conditions, "item_type IN ("+strings.Join(placeholders, ",")+")")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM work_items"+where, args...).Scan(&total); err != nil {
		return persistence.WorkItemPage{}, mapError(err)
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page := query.Page
	if page < 1 {
		page = 1
	}

	listArgs := append(append([]any{}, args...), pageSize, (page-1)*pageSize)
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, item_type, name, description, billable
		FROM work_items`+where+`
		ORDER BY name ASC, id ASC
		LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return persistence.WorkItemPage{}, mapError(err)
	}
	defer rows.Close()

	var items []persistence.WorkItem
	for rows.Next() {
		var item persistence.WorkItem
		var itemType string
		var billable int
		if err := rows.Scan(&item.ID, &itemType, &item.Name, &item.Description, &billable); err != nil {
			return persistence.WorkItemPage{}, mapError(err)
		}
		item.Type = persistence.WorkItemType(itemType)
		item.Billable = billable != 0
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return persistence.WorkItemPage{}, mapError(err)
	}

	return persistence.WorkItemPage{Items: items, Total: total}, nil
}

// UpsertWorkItem inserts or refreshes a work item record. Items are owned by
// the external ticketing and project systems; this is the ingest path.
func (r *WorkItemRepository) UpsertWorkItem(ctx context.Context, item persistence.WorkItem) error {
	if item.ID == "" {
		return persistence.ErrConstraintViolation
	}
	billable := 0
	if item.Billable {
		billable = 1
	}
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO work_items (id, item_type, name, description, billable)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET item_type = excluded.item_type, name = excluded.name,
			description = excluded.description, billable = excluded.billable`,
		item.ID, string(item.Type), item.Name, item.Description, billable)
	return mapError(err)
}
