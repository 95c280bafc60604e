package board

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/dispatch-board/internal/logging"
)

// MutationKind identifies the shape of a local mutation.
type MutationKind string

const (
	// MutationCreate adds a new entry to the day view.
	MutationCreate MutationKind = "create"
	// MutationUpdate replaces the fields of an existing entry.
	MutationUpdate MutationKind = "update"
	// MutationDelete removes an entry from the day view.
	MutationDelete MutationKind = "delete"
)

// Mutation is a local change applied optimistically before any network
// confirmation.
type Mutation struct {
	Kind  MutationKind
	Entry ScheduleEntry
}

// RowListener is notified with the technician rows affected by a mutation so
// hosts can re-render those rows only.
type RowListener func(technicianIDs []string)

// DayStore holds exactly the schedule entries of the currently selected day.
// It is mutated only by the gesture controllers and the reconciliation
// callback; reads may happen freely.
type DayStore struct {
	mu        sync.Mutex
	day       time.Time
	entries   map[string]ScheduleEntry
	confirmed map[string]ScheduleEntry
	listener  RowListener
	store     ScheduleStore
	logger    logging.Logger
}

// NewDayStore creates an empty day view backed by the external store.
func NewDayStore(store ScheduleStore, logger logging.Logger) *DayStore {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &DayStore{
		entries:   make(map[string]ScheduleEntry),
		confirmed: make(map[string]ScheduleEntry),
		store:     store,
		logger:    logger,
	}
}

// SetRowListener registers the row invalidation callback.
func (s *DayStore) SetRowListener(listener RowListener) {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
}

// Day returns the currently selected day.
func (s *DayStore) Day() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.day
}

// Load replaces the store contents with the entries fetched for the given
// window. On failure the store is emptied and a LoadError is returned so the
// board renders empty rather than crashing.
func (s *DayStore) Load(ctx context.Context, day, dayStart, dayEnd time.Time) error {
	entries, err := s.store.ListEntries(ctx, dayStart, dayEnd)

	s.mu.Lock()
	s.day = day
	s.entries = make(map[string]ScheduleEntry, len(entries))
	s.confirmed = make(map[string]ScheduleEntry, len(entries))
	for _, entry := range entries {
		s.entries[entry.ID] = entry
		s.confirmed[entry.ID] = entry
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Errorf("day load failed for %s: %v", day.Format("2006-01-02"), err)
		return &LoadError{Day: day, Err: err}
	}
	return nil
}

// ApplyLocal applies a mutation to the in-memory collection synchronously,
// before any network confirmation.
func (s *DayStore) ApplyLocal(m Mutation) {
	s.mu.Lock()
	var rows []string
	switch m.Kind {
	case MutationCreate:
		s.entries[m.Entry.ID] = m.Entry
		rows = m.Entry.TechnicianIDs
	case MutationUpdate:
		if previous, ok := s.entries[m.Entry.ID]; ok {
			rows = unionRows(previous.TechnicianIDs, m.Entry.TechnicianIDs)
		} else {
			rows = m.Entry.TechnicianIDs
		}
		s.entries[m.Entry.ID] = m.Entry
	case MutationDelete:
		if previous, ok := s.entries[m.Entry.ID]; ok {
			rows = previous.TechnicianIDs
			delete(s.entries, m.Entry.ID)
		}
	}
	listener := s.listener
	s.mu.Unlock()

	s.notifyRows(listener, rows)
}

// Get returns the entry with the given identifier.
func (s *DayStore) Get(id string) (ScheduleEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	return entry, ok
}

// Entries returns a snapshot of the day's entries ordered by start time.
func (s *DayStore) Entries() []ScheduleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ScheduleEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// EntriesForTechnician returns the day's entries assigned to the technician,
// ordered by start time.
func (s *DayStore) EntriesForTechnician(technicianID string) []ScheduleEntry {
	all := s.Entries()
	out := make([]ScheduleEntry, 0, len(all))
	for _, entry := range all {
		for _, id := range entry.TechnicianIDs {
			if id == technicianID {
				out = append(out, entry)
				break
			}
		}
	}
	return out
}

// Reconcile replaces the optimistic copy identified by localID with the
// server-confirmed entry, rekeying when the store assigned a new identifier.
// Applying the same confirmation twice leaves the store unchanged.
func (s *DayStore) Reconcile(localID string, confirmed ScheduleEntry) {
	s.mu.Lock()
	var rows []string

	previous, existed := s.entries[localID]
	if existed && localID != confirmed.ID {
		delete(s.entries, localID)
		delete(s.confirmed, localID)
	}

	if existed || localID == confirmed.ID {
		if current, ok := s.entries[confirmed.ID]; ok {
			rows = unionRows(current.TechnicianIDs, confirmed.TechnicianIDs)
		} else {
			rows = unionRows(previous.TechnicianIDs, confirmed.TechnicianIDs)
		}
		s.entries[confirmed.ID] = confirmed
	}
	s.confirmed[confirmed.ID] = confirmed

	listener := s.listener
	s.mu.Unlock()

	s.notifyRows(listener, rows)
}

// AdoptID rekeys an optimistic entry to the identifier assigned by the
// external store while keeping any newer local fields. The confirmed entry
// becomes the rollback baseline.
func (s *DayStore) AdoptID(localID string, confirmed ScheduleEntry) {
	s.mu.Lock()
	if current, ok := s.entries[localID]; ok && localID != confirmed.ID {
		delete(s.entries, localID)
		delete(s.confirmed, localID)
		current.ID = confirmed.ID
		current.CreatedAt = confirmed.CreatedAt
		s.entries[confirmed.ID] = current
	}
	s.confirmed[confirmed.ID] = confirmed
	s.mu.Unlock()
}

// SetConfirmed records a server confirmation as the rollback baseline without
// touching the optimistic copy. Used when a newer local mutation is already
// pending for the entry.
func (s *DayStore) SetConfirmed(confirmed ScheduleEntry) {
	s.mu.Lock()
	s.confirmed[confirmed.ID] = confirmed
	s.mu.Unlock()
}

// ConfirmDelete drops the confirmed record for a deleted entry.
func (s *DayStore) ConfirmDelete(id string) {
	s.mu.Lock()
	delete(s.confirmed, id)
	delete(s.entries, id)
	s.mu.Unlock()
}

// Rollback reverts the entry to its last confirmed state. Entries that were
// never confirmed are removed entirely.
func (s *DayStore) Rollback(localID string) {
	s.mu.Lock()
	var rows []string

	if previous, ok := s.entries[localID]; ok {
		rows = previous.TechnicianIDs
	}
	if confirmed, ok := s.confirmed[localID]; ok {
		rows = unionRows(rows, confirmed.TechnicianIDs)
		s.entries[localID] = confirmed
	} else {
		delete(s.entries, localID)
	}

	listener := s.listener
	s.mu.Unlock()

	s.notifyRows(listener, rows)
}

// RestoreConfirmed puts a confirmed entry back after a failed delete.
func (s *DayStore) RestoreConfirmed(id string) {
	s.mu.Lock()
	var rows []string
	if confirmed, ok := s.confirmed[id]; ok {
		s.entries[id] = confirmed
		rows = confirmed.TechnicianIDs
	}
	listener := s.listener
	s.mu.Unlock()

	s.notifyRows(listener, rows)
}

func (s *DayStore) notifyRows(listener RowListener, rows []string) {
	if listener == nil || len(rows) == 0 {
		return
	}
	listener(rows)
}

func unionRows(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, id := range a {
		if _, ok := seen[id]; !ok && id != "" {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok && id != "" {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
