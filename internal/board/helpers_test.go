package board

import (
	"context"
	"sync"
	"time"
)

// testDay is the fixed day used across board tests: a Tuesday.
var testDay = time.Date(2024, 3, 12, 0, 0, 0, 0, time.Local)

func testEntry(id, technicianID string, startHour, endHour int) ScheduleEntry {
	return ScheduleEntry{
		ID:            id,
		WorkItemID:    "ticket-100",
		WorkItemType:  WorkItemTicket,
		Title:         "Fix printer",
		Status:        StatusScheduled,
		TechnicianIDs: []string{technicianID},
		Start:         testDay.Add(time.Duration(startHour) * time.Hour),
		End:           testDay.Add(time.Duration(endHour) * time.Hour),
	}
}

// stubStore records every write it receives and can be primed with canned
// results and errors.
type stubStore struct {
	mu sync.Mutex

	listResult []ScheduleEntry
	listErr    error

	creates []ScheduleEntry
	updates []ScheduleEntry
	deletes []string

	createErr error
	updateErr error
	deleteErr error

	// assignID rewrites the identifier the store confirms for a create. Nil
	// keeps the identifier the caller sent.
	assignID func(entry ScheduleEntry) string

	// createStarted and createRelease, when non-nil, turn CreateEntry into a
	// blocking call so tests can interleave work with an in-flight write.
	createStarted chan struct{}
	createRelease chan struct{}
}

func (s *stubStore) ListEntries(ctx context.Context, dayStart, dayEnd time.Time) ([]ScheduleEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]ScheduleEntry, len(s.listResult))
	copy(out, s.listResult)
	return out, nil
}

func (s *stubStore) CreateEntry(ctx context.Context, entry ScheduleEntry) (ScheduleEntry, error) {
	s.mu.Lock()
	started := s.createStarted
	release := s.createRelease
	s.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return ScheduleEntry{}, s.createErr
	}
	if s.assignID != nil {
		entry.ID = s.assignID(entry)
	}
	s.creates = append(s.creates, entry)
	return entry, nil
}

func (s *stubStore) UpdateEntry(ctx context.Context, entry ScheduleEntry) (ScheduleEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return ScheduleEntry{}, s.updateErr
	}
	s.updates = append(s.updates, entry)
	return entry, nil
}

func (s *stubStore) DeleteEntry(ctx context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletes = append(s.deletes, entryID)
	return nil
}

func (s *stubStore) createdEntries() []ScheduleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ScheduleEntry, len(s.creates))
	copy(out, s.creates)
	return out
}

func (s *stubStore) updatedEntries() []ScheduleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ScheduleEntry, len(s.updates))
	copy(out, s.updates)
	return out
}

func (s *stubStore) deletedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.deletes))
	copy(out, s.deletes)
	return out
}

// stubDirectory returns a fixed roster or error.
type stubDirectory struct {
	technicians []Technician
	err         error
}

func (d *stubDirectory) ListTechnicians(ctx context.Context) ([]Technician, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.technicians, nil
}

// stubCatalog returns a fixed work item page or error.
type stubCatalog struct {
	page WorkItemPage
	err  error
}

func (c *stubCatalog) SearchWorkItems(ctx context.Context, query WorkItemQuery) (WorkItemPage, error) {
	if c.err != nil {
		return WorkItemPage{}, c.err
	}
	return c.page, nil
}

func loadedDayStore(store ScheduleStore) *DayStore {
	day := NewDayStore(store, nil)
	_ = day.Load(context.Background(), testDay, testDay.Add(8*time.Hour), testDay.Add(18*time.Hour))
	return day
}
