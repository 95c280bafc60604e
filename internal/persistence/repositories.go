package persistence

import (
	"context"
	"time"
)

// EntryFilter narrows schedule entry queries to a time window.
type EntryFilter struct {
	StartsAfter *time.Time
	EndsBefore  *time.Time
}

// ScheduleEntryRepository stores schedule entries and their technician
// assignments.
type ScheduleEntryRepository interface {
	CreateEntry(ctx context.Context, entry ScheduleEntry) error
	UpdateEntry(ctx context.Context, entry ScheduleEntry) error
	GetEntry(ctx context.Context, id string) (ScheduleEntry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]ScheduleEntry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// TechnicianDirectory exposes read-only technician lookup.
type TechnicianDirectory interface {
	ListTechnicians(ctx context.Context) ([]Technician, error)
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

// WorkItemCatalog exposes read-only search over assignable work items.
type WorkItemCatalog interface {
	SearchWorkItems(ctx context.Context, query WorkItemQuery) (WorkItemPage, error)
}
