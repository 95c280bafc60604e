package board

import (
	"context"
	"time"
)

// MinEntryDuration is the shortest span a schedule entry may occupy.
const MinEntryDuration = 15 * time.Minute

// DefaultEntryDuration is the span given to an entry created by dropping a
// work item onto a cell.
const DefaultEntryDuration = time.Hour

// EntryStatus describes the lifecycle state of a schedule entry.
type EntryStatus string

const (
	// StatusScheduled marks an entry placed on the board.
	StatusScheduled EntryStatus = "scheduled"
	// StatusCompleted marks an entry whose work has been finished.
	StatusCompleted EntryStatus = "completed"
)

// WorkItemType classifies an assignable unit of work.
type WorkItemType string

const (
	// WorkItemTicket is a service ticket raised by a customer.
	WorkItemTicket WorkItemType = "ticket"
	// WorkItemProjectTask is a task belonging to a project plan.
	WorkItemProjectTask WorkItemType = "project_task"
	// WorkItemAdHoc is a one-off entry created directly by a dispatcher.
	WorkItemAdHoc WorkItemType = "ad_hoc"
	// WorkItemNonBillable covers internal, non-billable categories.
	WorkItemNonBillable WorkItemType = "non_billable"
)

// WorkItem is an assignable unit of work not yet scheduled. The board treats
// work items as read-only input from the ticketing and project systems.
type WorkItem struct {
	ID          string
	Type        WorkItemType
	Name        string
	Description string
	Billable    bool
}

// Technician is a schedulable resource shown as a board row.
type Technician struct {
	ID          string
	DisplayName string
}

// ScheduleEntry assigns a work item to one or more technicians for a concrete
// time span. The identifier is a board-local placeholder until the external
// store confirms the first write.
type ScheduleEntry struct {
	ID            string
	WorkItemID    string
	WorkItemType  WorkItemType
	Title         string
	Status        EntryStatus
	TechnicianIDs []string
	Start         time.Time
	End           time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Duration returns the entry's span length.
func (e ScheduleEntry) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Cell identifies the intersection of a technician row and a time column, the
// unit of drop targeting.
type Cell struct {
	TechnicianID string
	SlotStart    time.Time
}

// WorkItemQuery describes a paged search over the unassigned work item pool.
type WorkItemQuery struct {
	Text     string
	Types    []WorkItemType
	Page     int
	PageSize int
}

// WorkItemPage is one page of work item search results.
type WorkItemPage struct {
	Items []WorkItem
	Total int
}

// ScheduleStore is the external collaborator owning the durable schedule
// records. It is the source of truth on conflict.
type ScheduleStore interface {
	ListEntries(ctx context.Context, dayStart, dayEnd time.Time) ([]ScheduleEntry, error)
	CreateEntry(ctx context.Context, entry ScheduleEntry) (ScheduleEntry, error)
	UpdateEntry(ctx context.Context, entry ScheduleEntry) (ScheduleEntry, error)
	DeleteEntry(ctx context.Context, entryID string) error
}

// TechnicianDirectory exposes the read-only technician listing.
type TechnicianDirectory interface {
	ListTechnicians(ctx context.Context) ([]Technician, error)
}

// WorkItemSource exposes the read-only work item search backing the
// unassigned side panel.
type WorkItemSource interface {
	SearchWorkItems(ctx context.Context, query WorkItemQuery) (WorkItemPage, error)
}
