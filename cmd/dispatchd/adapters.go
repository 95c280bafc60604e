package main

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/dispatch-board/internal/board"
	"github.com/example/dispatch-board/internal/persistence"
)

// localIDPrefix marks identifiers minted by the board before the first
// confirmed write. The store replaces them with durable identifiers.
const localIDPrefix = "local-"

// scheduleStore adapts the sqlite entry repository to the board's schedule
// store contract, assigning durable identifiers on create.
type scheduleStore struct {
	entries persistence.ScheduleEntryRepository
	newID   func() string
	now     func() time.Time
}

func newScheduleStore(entries persistence.ScheduleEntryRepository) *scheduleStore {
	return &scheduleStore{
		entries: entries,
		newID:   func() string { return uuid.New().String() },
		now:     time.Now,
	}
}

func (s *scheduleStore) ListEntries(ctx context.Context, dayStart, dayEnd time.Time) ([]board.ScheduleEntry, error) {
	records, err := s.entries.ListEntries(ctx, persistence.EntryFilter{
		StartsAfter: &dayStart,
		EndsBefore:  &dayEnd,
	})
	if err != nil {
		return nil, err
	}
	entries := make([]board.ScheduleEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, toBoardEntry(record))
	}
	return entries, nil
}

func (s *scheduleStore) CreateEntry(ctx context.Context, entry board.ScheduleEntry) (board.ScheduleEntry, error) {
	if entry.ID == "" || strings.HasPrefix(entry.ID, localIDPrefix) {
		entry.ID = s.newID()
	}
	now := s.now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	if err := s.entries.CreateEntry(ctx, toRecord(entry)); err != nil {
		return board.ScheduleEntry{}, err
	}
	return entry, nil
}

func (s *scheduleStore) UpdateEntry(ctx context.Context, entry board.ScheduleEntry) (board.ScheduleEntry, error) {
	entry.UpdatedAt = s.now()
	if err := s.entries.UpdateEntry(ctx, toRecord(entry)); err != nil {
		return board.ScheduleEntry{}, err
	}
	return entry, nil
}

func (s *scheduleStore) DeleteEntry(ctx context.Context, entryID string) error {
	return s.entries.DeleteEntry(ctx, entryID)
}

// technicianDirectory adapts the sqlite technician repository.
type technicianDirectory struct {
	directory persistence.TechnicianDirectory
}

func (d *technicianDirectory) ListTechnicians(ctx context.Context) ([]board.Technician, error) {
	records, err := d.directory.ListTechnicians(ctx)
	if err != nil {
		return nil, err
	}
	technicians := make([]board.Technician, 0, len(records))
	for _, record := range records {
		technicians = append(technicians, board.Technician{
			ID:          record.ID,
			DisplayName: record.DisplayName,
		})
	}
	return technicians, nil
}

// workItemCatalog adapts the sqlite work item repository.
type workItemCatalog struct {
	catalog persistence.WorkItemCatalog
}

func (c *workItemCatalog) SearchWorkItems(ctx context.Context, query board.WorkItemQuery) (board.WorkItemPage, error) {
	types := make([]persistence.WorkItemType, 0, len(query.Types))
	for _, t := range query.Types {
		types = append(types, persistence.WorkItemType(t))
	}
	page, err := c.catalog.SearchWorkItems(ctx, persistence.WorkItemQuery{
		Text:     query.Text,
		Types:    types,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		return board.WorkItemPage{}, err
	}
	items := make([]board.WorkItem, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, board.WorkItem{
			ID:          item.ID,
			Type:        board.WorkItemType(item.Type),
			Name:        item.Name,
			Description: item.Description,
			Billable:    item.Billable,
		})
	}
	return board.WorkItemPage{Items: items, Total: page.Total}, nil
}

func toBoardEntry(record persistence.ScheduleEntry) board.ScheduleEntry {
	return board.ScheduleEntry{
		ID:            record.ID,
		WorkItemID:    record.WorkItemID,
		WorkItemType:  board.WorkItemType(record.WorkItemType),
		Title:         record.Title,
		Status:        board.EntryStatus(record.Status),
		TechnicianIDs: record.TechnicianIDs,
		Start:         record.Start,
		End:           record.End,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

func toRecord(entry board.ScheduleEntry) persistence.ScheduleEntry {
	return persistence.ScheduleEntry{
		ID:            entry.ID,
		WorkItemID:    entry.WorkItemID,
		WorkItemType:  persistence.WorkItemType(entry.WorkItemType),
		Title:         entry.Title,
		Status:        string(entry.Status),
		TechnicianIDs: entry.TechnicianIDs,
		Start:         entry.Start,
		End:           entry.End,
		CreatedAt:     entry.CreatedAt,
		UpdatedAt:     entry.UpdatedAt,
	}
}
