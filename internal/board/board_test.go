package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestBoard(t *testing.T, store *stubStore, opts Options) *Board {
	t.Helper()
	opts.Store = store
	if opts.Technicians == nil {
		opts.Technicians = &stubDirectory{technicians: []Technician{
			{ID: "tech-1", DisplayName: "Avery Chen"},
			{ID: "tech-2", DisplayName: "Jordan Patel"},
		}}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return testDay.Add(8 * time.Hour) }
	}
	b, err := New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func TestNewRequiresStore(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{}); err == nil {
		t.Error("New accepted options without a schedule store")
	}
}

func TestSelectDayLoadsRowsAndEntries(t *testing.T) {
	t.Parallel()

	store := &stubStore{listResult: []ScheduleEntry{
		testEntry("entry-1", "tech-1", 9, 10),
		testEntry("entry-2", "tech-2", 11, 12),
	}}
	b := newTestBoard(t, store, Options{})

	if err := b.SelectDay(context.Background(), testDay); err != nil {
		t.Fatalf("SelectDay returned error: %v", err)
	}
	if got := len(b.Technicians()); got != 2 {
		t.Errorf("board has %d technicians, want 2", got)
	}
	if got := len(b.Entries()); got != 2 {
		t.Errorf("board has %d entries, want 2", got)
	}
	if got := len(b.EntriesForTechnician("tech-1")); got != 1 {
		t.Errorf("tech-1 row has %d entries, want 1", got)
	}
}

func TestSelectDayDirectoryFailure(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	b := newTestBoard(t, store, Options{
		Technicians: &stubDirectory{err: errors.New("directory offline")},
	})

	err := b.SelectDay(context.Background(), testDay)
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("SelectDay returned %v, want *LoadError", err)
	}
	if got := len(b.Technicians()); got != 0 {
		t.Errorf("board kept %d technicians after a failed load, want 0", got)
	}
}

func TestDropWorkItemEndToEnd(t *testing.T) {
	t.Parallel()

	store := &stubStore{assignID: func(ScheduleEntry) string { return "srv-42" }}
	var created []ScheduleEntry
	b := newTestBoard(t, store, Options{
		WorkItems: &stubCatalog{page: WorkItemPage{
			Items: []WorkItem{{ID: "ticket-100", Type: WorkItemTicket, Name: "Fix printer"}},
			Total: 1,
		}},
		DebounceWindow: testWindow,
		Hooks: Hooks{
			OnEntryCreated: func(entry ScheduleEntry) { created = append(created, entry) },
		},
	})

	if err := b.SelectDay(context.Background(), testDay); err != nil {
		t.Fatalf("SelectDay returned error: %v", err)
	}
	if _, err := b.RefreshWorkItems(context.Background(), WorkItemQuery{}); err != nil {
		t.Fatalf("RefreshWorkItems returned error: %v", err)
	}

	if err := b.BeginWorkItemDrag("ticket-100", 0); err != nil {
		t.Fatalf("BeginWorkItemDrag returned error: %v", err)
	}
	cell := b.Cell("tech-1", 10, 0)
	entry, err := b.DropOnCell(cell)
	if err != nil {
		t.Fatalf("DropOnCell returned error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("OnEntryCreated fired %d times, want 1", len(created))
	}

	// The drop flushes its write; the day view rekeys to the durable
	// identifier once the store confirms.
	waitUntil(t, time.Second, func() bool { return len(store.createdEntries()) == 1 })
	waitUntil(t, time.Second, func() bool {
		_, ok := b.Entry("srv-42")
		return ok
	})
	if _, ok := b.Entry(entry.ID); ok {
		t.Error("placeholder identifier still resolvable after confirmation")
	}
}

func TestDeleteEntry(t *testing.T) {
	t.Parallel()

	store := &stubStore{listResult: []ScheduleEntry{testEntry("entry-1", "tech-1", 9, 10)}}
	var deleted []string
	b := newTestBoard(t, store, Options{
		DebounceWindow: testWindow,
		Hooks: Hooks{
			OnEntryDeleted: func(entryID string) { deleted = append(deleted, entryID) },
		},
	})

	if err := b.SelectDay(context.Background(), testDay); err != nil {
		t.Fatalf("SelectDay returned error: %v", err)
	}
	if err := b.DeleteEntry("entry-1"); err != nil {
		t.Fatalf("DeleteEntry returned error: %v", err)
	}

	if _, ok := b.Entry("entry-1"); ok {
		t.Error("entry still visible after optimistic delete")
	}
	if len(deleted) != 1 || deleted[0] != "entry-1" {
		t.Errorf("OnEntryDeleted fired with %v, want [entry-1]", deleted)
	}
	waitUntil(t, time.Second, func() bool { return len(store.deletedIDs()) == 1 })
}

func TestDeleteEntryUnknown(t *testing.T) {
	t.Parallel()

	b := newTestBoard(t, &stubStore{}, Options{})
	if err := b.SelectDay(context.Background(), testDay); err != nil {
		t.Fatalf("SelectDay returned error: %v", err)
	}
	if err := b.DeleteEntry("entry-999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteEntry returned %v, want ErrNotFound", err)
	}
}

func TestSelectDayCancelsPendingWrites(t *testing.T) {
	t.Parallel()

	store := &stubStore{listResult: []ScheduleEntry{testEntry("entry-1", "tech-1", 9, 10)}}
	b := newTestBoard(t, store, Options{DebounceWindow: testWindow})

	if err := b.SelectDay(context.Background(), testDay); err != nil {
		t.Fatalf("SelectDay returned error: %v", err)
	}
	if err := b.BeginResize("entry-1", EdgeEnd, 0); err != nil {
		t.Fatalf("BeginResize returned error: %v", err)
	}
	if !b.TrackResize(100, 100) {
		t.Fatal("TrackResize rejected a valid candidate")
	}

	// Switching days abandons the gesture and its debounced write.
	nextDay := testDay.AddDate(0, 0, 1)
	if err := b.SelectDay(context.Background(), nextDay); err != nil {
		t.Fatalf("SelectDay returned error: %v", err)
	}
	b.EndResize()

	time.Sleep(5 * testWindow)
	if got := len(store.updatedEntries()); got != 0 {
		t.Errorf("store received %d updates after the day changed, want 0", got)
	}
}

func TestPersistenceErrorHookAndRollback(t *testing.T) {
	t.Parallel()

	store := &stubStore{listResult: []ScheduleEntry{testEntry("entry-1", "tech-1", 9, 10)}}
	errCh := make(chan *PersistenceError, 1)
	b := newTestBoard(t, store, Options{
		DebounceWindow: testWindow,
		Hooks: Hooks{
			OnPersistenceError: func(perr *PersistenceError) { errCh <- perr },
		},
	})

	if err := b.SelectDay(context.Background(), testDay); err != nil {
		t.Fatalf("SelectDay returned error: %v", err)
	}
	store.mu.Lock()
	store.updateErr = errors.New("server rejected the write")
	store.mu.Unlock()

	if err := b.BeginEntryDrag("entry-1", 0); err != nil {
		t.Fatalf("BeginEntryDrag returned error: %v", err)
	}
	if _, err := b.DropOnCell(b.Cell("tech-2", 14, 0)); err != nil {
		t.Fatalf("DropOnCell returned error: %v", err)
	}

	select {
	case perr := <-errCh:
		if perr.EntryID != "entry-1" {
			t.Errorf("persistence error for entry %s, want entry-1", perr.EntryID)
		}
	case <-time.After(time.Second):
		t.Fatal("OnPersistenceError never fired")
	}

	entry, ok := b.Entry("entry-1")
	if !ok {
		t.Fatal("entry removed instead of rolled back")
	}
	if entry.TechnicianIDs[0] != "tech-1" {
		t.Errorf("entry on row %s after rollback, want tech-1", entry.TechnicianIDs[0])
	}
}

func TestRowInvalidationHook(t *testing.T) {
	t.Parallel()

	store := &stubStore{listResult: []ScheduleEntry{testEntry("entry-1", "tech-1", 9, 10)}}
	var invalidated [][]string
	b := newTestBoard(t, store, Options{
		DebounceWindow: time.Hour,
		Hooks: Hooks{
			OnRowsInvalidated: func(rows []string) { invalidated = append(invalidated, rows) },
		},
	})

	if err := b.SelectDay(context.Background(), testDay); err != nil {
		t.Fatalf("SelectDay returned error: %v", err)
	}
	if err := b.BeginEntryDrag("entry-1", 0); err != nil {
		t.Fatalf("BeginEntryDrag returned error: %v", err)
	}
	if _, err := b.DropOnCell(b.Cell("tech-2", 14, 0)); err != nil {
		t.Fatalf("DropOnCell returned error: %v", err)
	}

	if len(invalidated) == 0 {
		t.Fatal("OnRowsInvalidated never fired")
	}
	last := invalidated[len(invalidated)-1]
	if len(last) != 2 {
		t.Errorf("cross-row move invalidated %v, want both rows", last)
	}
}

func TestConcurrentGestureCommands(t *testing.T) {
	t.Parallel()

	entries := []ScheduleEntry{
		testEntry("entry-1", "tech-1", 9, 10),
		testEntry("entry-2", "tech-2", 11, 13),
	}
	store := &stubStore{listResult: entries}
	b := newTestBoard(t, store, Options{DebounceWindow: testWindow})
	if err := b.SelectDay(context.Background(), testDay); err != nil {
		t.Fatalf("SelectDay returned error: %v", err)
	}

	// Hosts may issue gesture commands from concurrent requests; only one
	// gesture wins at a time, but none may corrupt the controllers.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if n%2 == 0 {
					if err := b.BeginEntryDrag("entry-1", 0); err == nil {
						b.HoverCell(b.Cell("tech-2", 14, 0))
						if _, err := b.DropOnCell(b.Cell("tech-2", 14, 0)); err != nil {
							b.CancelDrag()
						}
					}
				} else {
					if err := b.BeginResize("entry-2", EdgeEnd, 0); err == nil {
						b.TrackResize(100, 100)
						b.EndResize()
					}
				}
			}
		}(i)
	}
	wg.Wait()

	if got := len(b.Entries()); got != 2 {
		t.Errorf("board has %d entries after concurrent gestures, want 2", got)
	}
}

func TestCellPlacement(t *testing.T) {
	t.Parallel()

	b := newTestBoard(t, &stubStore{}, Options{})
	if err := b.SelectDay(context.Background(), testDay); err != nil {
		t.Fatalf("SelectDay returned error: %v", err)
	}

	cell := b.Cell("tech-1", 10, 30)
	want := testDay.Add(10*time.Hour + 30*time.Minute)
	if !cell.SlotStart.Equal(want) {
		t.Errorf("cell slot = %s, want %s", cell.SlotStart, want)
	}

	span := b.Span(testEntry("entry-1", "tech-1", 9, 11))
	if span.OffsetPercent != 10 || span.WidthPercent != 20 {
		t.Errorf("span = %+v, want offset 10%% width 20%%", span)
	}
}
