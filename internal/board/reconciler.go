package board

import (
	"context"
	"sync"
	"time"

	"github.com/example/dispatch-board/internal/logging"
	"github.com/example/dispatch-board/internal/metrics"
)

// DefaultDebounceWindow is the delay after the last mutation before a write
// is sent to the external store.
const DefaultDebounceWindow = 250 * time.Millisecond

const writeTimeout = 10 * time.Second

// writeOp is the single outstanding write held per entry. Newer mutations for
// the same entry supersede it before the timer fires.
type writeOp struct {
	kind  MutationKind
	entry ScheduleEntry
	timer *time.Timer
	seq   uint64
}

// Reconciler coalesces rapid local mutations to the same entry into a single
// outbound write per debounce window and folds the result back into the day
// store. At most one write per entry is ever outstanding; superseded writes
// are actively cancelled.
type Reconciler struct {
	mu      sync.Mutex
	store   ScheduleStore
	day     *DayStore
	window  time.Duration
	pending map[string]*writeOp
	seq     uint64
	epoch   uint64
	wg      sync.WaitGroup

	sink    metrics.Sink
	logger  logging.Logger
	onError func(*PersistenceError)
}

// NewReconciler wires the reconciler between the day store and the external
// schedule store. onError receives persistence failures after rollback; it
// may be nil.
func NewReconciler(store ScheduleStore, day *DayStore, window time.Duration, sink metrics.Sink, logger logging.Logger, onError func(*PersistenceError)) *Reconciler {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Reconciler{
		store:   store,
		day:     day,
		window:  window,
		pending: make(map[string]*writeOp),
		sink:    sink,
		logger:  logger,
		onError: onError,
	}
}

// Enqueue schedules a debounced write for the entry, superseding any pending
// write for the same identifier. Only the most recent state is ever sent.
func (r *Reconciler) Enqueue(kind MutationKind, entry ScheduleEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := entry.ID
	if existing, ok := r.pending[id]; ok {
		existing.timer.Stop()
		r.sink.WriteSuperseded()

		switch {
		case existing.kind == MutationCreate && kind == MutationDelete:
			// Never persisted; nothing to write at all.
			delete(r.pending, id)
			return
		case existing.kind == MutationCreate:
			// Still unpersisted, so the coalesced write stays a create.
			kind = MutationCreate
		}
	}

	r.seq++
	op := &writeOp{kind: kind, entry: entry, seq: r.seq}
	epoch := r.epoch
	seq := r.seq
	op.timer = time.AfterFunc(r.window, func() {
		r.fire(id, seq, epoch)
	})
	r.pending[id] = op
}

// Flush promotes the pending write for the entry, if any, to fire
// immediately. Used when a gesture ends.
func (r *Reconciler) Flush(entryID string) {
	r.mu.Lock()
	op, ok := r.pending[entryID]
	if !ok {
		r.mu.Unlock()
		return
	}
	op.timer.Stop()
	seq := op.seq
	epoch := r.epoch
	r.mu.Unlock()

	go r.fire(entryID, seq, epoch)
}

// Reset cancels every pending timer and invalidates in-flight completions.
// Called when the selected day changes so stale callbacks cannot mutate the
// new day view.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	r.epoch++
	for id, op := range r.pending {
		op.timer.Stop()
		delete(r.pending, id)
	}
	r.mu.Unlock()
}

// Close flushes all pending writes synchronously and waits for in-flight
// completions. Used on graceful shutdown.
func (r *Reconciler) Close() {
	r.mu.Lock()
	type flushTarget struct {
		id    string
		seq   uint64
		epoch uint64
	}
	targets := make([]flushTarget, 0, len(r.pending))
	for id, op := range r.pending {
		op.timer.Stop()
		targets = append(targets, flushTarget{id: id, seq: op.seq, epoch: r.epoch})
	}
	r.mu.Unlock()

	for _, t := range targets {
		r.fire(t.id, t.seq, t.epoch)
	}
	r.wg.Wait()
}

// fire performs the outbound write for the entry if it has not been
// superseded, then reconciles the result into the day store.
func (r *Reconciler) fire(localID string, seq, epoch uint64) {
	r.wg.Add(1)
	defer r.wg.Done()

	r.mu.Lock()
	op, ok := r.pending[localID]
	if !ok || op.seq != seq || r.epoch != epoch {
		r.mu.Unlock()
		return
	}
	delete(r.pending, localID)
	kind := op.kind
	entry := op.entry
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var confirmed ScheduleEntry
	var err error
	switch kind {
	case MutationCreate:
		confirmed, err = r.store.CreateEntry(ctx, entry)
	case MutationUpdate:
		confirmed, err = r.store.UpdateEntry(ctx, entry)
	case MutationDelete:
		err = r.store.DeleteEntry(ctx, entry.ID)
	}

	r.complete(localID, kind, entry, confirmed, err, epoch)
}

func (r *Reconciler) complete(localID string, kind MutationKind, sent, confirmed ScheduleEntry, err error, epoch uint64) {
	r.mu.Lock()
	if r.epoch != epoch {
		// The day changed while the write was in flight; the result must not
		// touch the new day view.
		r.mu.Unlock()
		return
	}
	newer, hasNewer := r.pending[localID]
	if hasNewer && err == nil && kind == MutationCreate && confirmed.ID != localID {
		// The entry now has a durable identifier; the superseding write must
		// use it instead of the board-local placeholder. The pending op is
		// rekeyed and its timer restarted so the closure fires under the new
		// key.
		newer.timer.Stop()
		newer.entry.ID = confirmed.ID
		if newer.kind == MutationCreate {
			newer.kind = MutationUpdate
		}
		delete(r.pending, localID)
		newID := confirmed.ID
		newSeq := newer.seq
		newer.timer = time.AfterFunc(r.window, func() {
			r.fire(newID, newSeq, epoch)
		})
		r.pending[newID] = newer
	}
	r.mu.Unlock()

	if err != nil {
		r.sink.WriteCompleted(string(kind), "error")
		r.logger.Errorf("%s write failed for entry %s: %v", kind, localID, err)
		if !hasNewer {
			if kind == MutationDelete {
				r.day.RestoreConfirmed(localID)
			} else {
				r.day.Rollback(localID)
			}
		}
		if r.onError != nil {
			r.onError(&PersistenceError{EntryID: localID, Op: string(kind), Err: err})
		}
		return
	}

	r.sink.WriteCompleted(string(kind), "ok")
	switch {
	case kind == MutationDelete:
		r.day.ConfirmDelete(localID)
	case hasNewer && kind == MutationCreate:
		r.day.AdoptID(localID, confirmed)
	case hasNewer:
		r.day.SetConfirmed(confirmed)
	default:
		r.day.Reconcile(localID, confirmed)
	}
}
