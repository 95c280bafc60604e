package board

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDayStoreLoadReplacesContents(t *testing.T) {
	t.Parallel()

	store := &stubStore{listResult: []ScheduleEntry{
		testEntry("entry-1", "tech-1", 9, 10),
		testEntry("entry-2", "tech-2", 11, 12),
	}}
	day := NewDayStore(store, nil)

	if err := day.Load(context.Background(), testDay, testDay.Add(8*time.Hour), testDay.Add(18*time.Hour)); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := len(day.Entries()); got != 2 {
		t.Fatalf("Entries() returned %d entries, want 2", got)
	}
	if !day.Day().Equal(testDay) {
		t.Errorf("Day() = %s, want %s", day.Day(), testDay)
	}
}

func TestDayStoreLoadFailureEmptiesStore(t *testing.T) {
	t.Parallel()

	store := &stubStore{listResult: []ScheduleEntry{testEntry("entry-1", "tech-1", 9, 10)}}
	day := loadedDayStore(store)
	if len(day.Entries()) != 1 {
		t.Fatal("precondition: expected one loaded entry")
	}

	store.mu.Lock()
	store.listErr = errors.New("network down")
	store.mu.Unlock()

	err := day.Load(context.Background(), testDay, testDay.Add(8*time.Hour), testDay.Add(18*time.Hour))
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load returned %v, want *LoadError", err)
	}
	if got := len(day.Entries()); got != 0 {
		t.Errorf("store kept %d entries after a failed load, want 0", got)
	}
}

func TestDayStoreApplyLocal(t *testing.T) {
	t.Parallel()

	day := loadedDayStore(&stubStore{})

	var notified [][]string
	day.SetRowListener(func(rows []string) {
		notified = append(notified, rows)
	})

	entry := testEntry("local-1", "tech-1", 9, 10)
	day.ApplyLocal(Mutation{Kind: MutationCreate, Entry: entry})
	if _, ok := day.Get("local-1"); !ok {
		t.Fatal("created entry not found")
	}

	moved := entry
	moved.TechnicianIDs = []string{"tech-2"}
	day.ApplyLocal(Mutation{Kind: MutationUpdate, Entry: moved})
	got, _ := day.Get("local-1")
	if got.TechnicianIDs[0] != "tech-2" {
		t.Errorf("updated entry kept technician %s", got.TechnicianIDs[0])
	}

	day.ApplyLocal(Mutation{Kind: MutationDelete, Entry: moved})
	if _, ok := day.Get("local-1"); ok {
		t.Error("deleted entry still present")
	}

	if len(notified) != 3 {
		t.Fatalf("row listener fired %d times, want 3", len(notified))
	}
	// The update moved the entry between rows, so both must be invalidated.
	update := notified[1]
	if len(update) != 2 {
		t.Errorf("update invalidated rows %v, want both technicians", update)
	}
}

func TestDayStoreEntriesSorted(t *testing.T) {
	t.Parallel()

	day := loadedDayStore(&stubStore{})
	day.ApplyLocal(Mutation{Kind: MutationCreate, Entry: testEntry("entry-b", "tech-1", 14, 15)})
	day.ApplyLocal(Mutation{Kind: MutationCreate, Entry: testEntry("entry-c", "tech-1", 9, 10)})
	day.ApplyLocal(Mutation{Kind: MutationCreate, Entry: testEntry("entry-a", "tech-1", 14, 16)})

	entries := day.Entries()
	wantOrder := []string{"entry-c", "entry-a", "entry-b"}
	for i, want := range wantOrder {
		if entries[i].ID != want {
			t.Fatalf("entries[%d].ID = %s, want %s (order %v)", i, entries[i].ID, want, entries)
		}
	}
}

func TestDayStoreEntriesForTechnician(t *testing.T) {
	t.Parallel()

	day := loadedDayStore(&stubStore{})
	day.ApplyLocal(Mutation{Kind: MutationCreate, Entry: testEntry("entry-1", "tech-1", 9, 10)})
	day.ApplyLocal(Mutation{Kind: MutationCreate, Entry: testEntry("entry-2", "tech-2", 10, 11)})

	shared := testEntry("entry-3", "tech-1", 12, 13)
	shared.TechnicianIDs = []string{"tech-1", "tech-2"}
	day.ApplyLocal(Mutation{Kind: MutationCreate, Entry: shared})

	rows := day.EntriesForTechnician("tech-1")
	if len(rows) != 2 {
		t.Fatalf("tech-1 row has %d entries, want 2", len(rows))
	}
	rows = day.EntriesForTechnician("tech-2")
	if len(rows) != 2 {
		t.Fatalf("tech-2 row has %d entries, want 2", len(rows))
	}
}

func TestDayStoreReconcileRekeys(t *testing.T) {
	t.Parallel()

	day := loadedDayStore(&stubStore{})
	day.ApplyLocal(Mutation{Kind: MutationCreate, Entry: testEntry("local-1", "tech-1", 9, 10)})

	confirmed := testEntry("srv-42", "tech-1", 9, 10)
	day.Reconcile("local-1", confirmed)

	if _, ok := day.Get("local-1"); ok {
		t.Error("placeholder identifier still resolvable after reconciliation")
	}
	got, ok := day.Get("srv-42")
	if !ok {
		t.Fatal("confirmed identifier not resolvable")
	}
	if got.ID != "srv-42" {
		t.Errorf("entry ID = %s, want srv-42", got.ID)
	}

	// Applying the same confirmation again must not resurrect or duplicate.
	day.Reconcile("local-1", confirmed)
	if got := len(day.Entries()); got != 1 {
		t.Errorf("store holds %d entries after duplicate reconciliation, want 1", got)
	}
}

func TestDayStoreAdoptIDKeepsNewerLocalFields(t *testing.T) {
	t.Parallel()

	day := loadedDayStore(&stubStore{})
	day.ApplyLocal(Mutation{Kind: MutationCreate, Entry: testEntry("local-1", "tech-1", 9, 10)})

	// A newer local resize happened while the create was in flight.
	resized := testEntry("local-1", "tech-1", 9, 12)
	day.ApplyLocal(Mutation{Kind: MutationUpdate, Entry: resized})

	confirmed := testEntry("srv-42", "tech-1", 9, 10)
	confirmed.CreatedAt = testDay.Add(9 * time.Hour)
	day.AdoptID("local-1", confirmed)

	got, ok := day.Get("srv-42")
	if !ok {
		t.Fatal("adopted identifier not resolvable")
	}
	if !got.End.Equal(resized.End) {
		t.Errorf("adoption discarded the newer local span: end = %s, want %s", got.End, resized.End)
	}
	if !got.CreatedAt.Equal(confirmed.CreatedAt) {
		t.Errorf("adoption kept placeholder CreatedAt %s", got.CreatedAt)
	}
}

func TestDayStoreRollbackToConfirmed(t *testing.T) {
	t.Parallel()

	store := &stubStore{listResult: []ScheduleEntry{testEntry("entry-1", "tech-1", 9, 10)}}
	day := loadedDayStore(store)

	moved := testEntry("entry-1", "tech-2", 14, 15)
	day.ApplyLocal(Mutation{Kind: MutationUpdate, Entry: moved})

	day.Rollback("entry-1")
	got, ok := day.Get("entry-1")
	if !ok {
		t.Fatal("entry removed by rollback despite a confirmed baseline")
	}
	if got.TechnicianIDs[0] != "tech-1" || got.Start.Hour() != 9 {
		t.Errorf("rollback produced %+v, want the loaded baseline", got)
	}
}

func TestDayStoreRollbackRemovesUnconfirmed(t *testing.T) {
	t.Parallel()

	day := loadedDayStore(&stubStore{})
	day.ApplyLocal(Mutation{Kind: MutationCreate, Entry: testEntry("local-1", "tech-1", 9, 10)})

	day.Rollback("local-1")
	if _, ok := day.Get("local-1"); ok {
		t.Error("never-confirmed entry survived rollback")
	}
}

func TestDayStoreRestoreConfirmed(t *testing.T) {
	t.Parallel()

	store := &stubStore{listResult: []ScheduleEntry{testEntry("entry-1", "tech-1", 9, 10)}}
	day := loadedDayStore(store)

	day.ApplyLocal(Mutation{Kind: MutationDelete, Entry: testEntry("entry-1", "tech-1", 9, 10)})
	if _, ok := day.Get("entry-1"); ok {
		t.Fatal("precondition: entry should be optimistically removed")
	}

	day.RestoreConfirmed("entry-1")
	if _, ok := day.Get("entry-1"); !ok {
		t.Error("entry not restored after failed delete")
	}
}

func TestDayStoreConfirmDelete(t *testing.T) {
	t.Parallel()

	store := &stubStore{listResult: []ScheduleEntry{testEntry("entry-1", "tech-1", 9, 10)}}
	day := loadedDayStore(store)

	day.ApplyLocal(Mutation{Kind: MutationDelete, Entry: testEntry("entry-1", "tech-1", 9, 10)})
	day.ConfirmDelete("entry-1")

	day.RestoreConfirmed("entry-1")
	if _, ok := day.Get("entry-1"); ok {
		t.Error("confirmed delete left a restorable baseline")
	}
}
