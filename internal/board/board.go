package board

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/dispatch-board/internal/grid"
	"github.com/example/dispatch-board/internal/logging"
	"github.com/example/dispatch-board/internal/metrics"
)

// Hooks are host callbacks fired on board events. Any field may be nil.
type Hooks struct {
	OnEntryCreated     func(ScheduleEntry)
	OnEntryMoved       func(ScheduleEntry)
	OnEntryResized     func(ScheduleEntry)
	OnEntryDeleted     func(entryID string)
	OnPersistenceError func(*PersistenceError)
	OnRowsInvalidated  func(technicianIDs []string)
}

// Options configures a Board.
type Options struct {
	Store       ScheduleStore
	Technicians TechnicianDirectory
	WorkItems   WorkItemSource

	Geometry        grid.Geometry
	Quantum         time.Duration
	MinDuration     time.Duration
	DefaultDuration time.Duration
	DebounceWindow  time.Duration

	IDGenerator func() string
	Now         func() time.Time
	Metrics     metrics.Sink
	Logger      logging.Logger
	Hooks       Hooks
}

// Board is the dispatch board engine: the day view, the gesture controllers
// and the persistence reconciler behind a single facade for hosts.
type Board struct {
	geometry grid.Geometry
	hooks    Hooks
	logger   logging.Logger
	sink     metrics.Sink

	day        *DayStore
	reconciler *Reconciler

	// gestureMu serializes the drag and resize controllers; hosts may feed
	// gesture commands from concurrent requests.
	gestureMu sync.Mutex
	drag      *DragController
	resize    *ResizeController

	directory TechnicianDirectory
	catalog   WorkItemSource

	mu          sync.Mutex
	technicians []Technician
	workItems   map[string]WorkItem
}

// New validates the options and wires the board components.
func New(opts Options) (*Board, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("board: schedule store is required")
	}
	if opts.Geometry.Columns() <= 0 {
		geometry, err := grid.New(8, 18)
		if err != nil {
			return nil, err
		}
		opts.Geometry = geometry
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NopSink{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IDGenerator == nil {
		var seq atomic.Uint64
		opts.IDGenerator = func() string {
			return fmt.Sprintf("local-%d", seq.Add(1))
		}
	}

	b := &Board{
		geometry:  opts.Geometry,
		hooks:     opts.Hooks,
		logger:    opts.Logger,
		sink:      opts.Metrics,
		directory: opts.Technicians,
		catalog:   opts.WorkItems,
		workItems: make(map[string]WorkItem),
	}

	b.day = NewDayStore(opts.Store, opts.Logger)
	b.day.SetRowListener(func(technicianIDs []string) {
		if b.hooks.OnRowsInvalidated != nil {
			b.hooks.OnRowsInvalidated(technicianIDs)
		}
	})

	b.reconciler = NewReconciler(opts.Store, b.day, opts.DebounceWindow, opts.Metrics, opts.Logger, func(perr *PersistenceError) {
		if b.hooks.OnPersistenceError != nil {
			b.hooks.OnPersistenceError(perr)
		}
	})

	b.drag = NewDragController(b.day, b.reconciler, b.lookupWorkItem, opts.IDGenerator, opts.Now, opts.DefaultDuration, opts.Metrics, opts.Logger)
	b.resize = NewResizeController(b.day, b.reconciler, opts.Geometry, opts.Quantum, opts.MinDuration, opts.Now, opts.Metrics, opts.Logger)

	return b, nil
}

// Geometry returns the grid geometry the board renders against.
func (b *Board) Geometry() grid.Geometry {
	return b.geometry
}

// Day returns the currently selected day.
func (b *Board) Day() time.Time {
	return b.day.Day()
}

// SelectDay cancels all pending writes, then replaces the day view with the
// entries and technicians for the given day. A fetch failure is returned as
// a LoadError; the board renders empty rather than crashing.
func (b *Board) SelectDay(ctx context.Context, day time.Time) error {
	b.reconciler.Reset()
	b.gestureMu.Lock()
	b.drag.Cancel()
	b.resize.Cancel()
	b.gestureMu.Unlock()

	if b.directory != nil {
		technicians, err := b.directory.ListTechnicians(ctx)
		if err != nil {
			b.mu.Lock()
			b.technicians = nil
			b.mu.Unlock()
			b.logger.Errorf("technician listing failed: %v", err)
			return &LoadError{Day: day, Err: err}
		}
		b.mu.Lock()
		b.technicians = technicians
		b.mu.Unlock()
	}

	return b.day.Load(ctx, day, b.geometry.DayStart(day), b.geometry.DayEnd(day))
}

// Technicians returns the rows of the board.
func (b *Board) Technicians() []Technician {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Technician, len(b.technicians))
	copy(out, b.technicians)
	return out
}

// RefreshWorkItems replaces the loaded unassigned set with a page of search
// results from the external catalog.
func (b *Board) RefreshWorkItems(ctx context.Context, query WorkItemQuery) (WorkItemPage, error) {
	if b.catalog == nil {
		return WorkItemPage{}, nil
	}
	page, err := b.catalog.SearchWorkItems(ctx, query)
	if err != nil {
		return WorkItemPage{}, err
	}
	b.mu.Lock()
	b.workItems = make(map[string]WorkItem, len(page.Items))
	for _, item := range page.Items {
		b.workItems[item.ID] = item
	}
	b.mu.Unlock()
	return page, nil
}

// WorkItem resolves an id against the currently loaded unassigned set.
func (b *Board) WorkItem(id string) (WorkItem, bool) {
	return b.lookupWorkItem(id)
}

func (b *Board) lookupWorkItem(id string) (WorkItem, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.workItems[id]
	return item, ok
}

// Entries returns the day's entries ordered by start time.
func (b *Board) Entries() []ScheduleEntry {
	return b.day.Entries()
}

// EntriesForTechnician returns the entries rendered on one technician row.
func (b *Board) EntriesForTechnician(technicianID string) []ScheduleEntry {
	return b.day.EntriesForTechnician(technicianID)
}

// Entry returns a single entry by identifier.
func (b *Board) Entry(id string) (ScheduleEntry, bool) {
	return b.day.Get(id)
}

// Span returns the horizontal placement of an entry for rendering.
func (b *Board) Span(entry ScheduleEntry) grid.Span {
	return b.geometry.Span(entry.Start, entry.End)
}

// Cell builds a drop target for a technician row at the given hour and
// minute of the selected day.
func (b *Board) Cell(technicianID string, hour, minute int) Cell {
	return Cell{
		TechnicianID: technicianID,
		SlotStart:    b.geometry.SlotStart(b.day.Day(), hour, minute),
	}
}

// BeginWorkItemDrag starts dragging an unassigned work item.
func (b *Board) BeginWorkItemDrag(workItemID string, anchorOffset float64) error {
	b.gestureMu.Lock()
	defer b.gestureMu.Unlock()
	return b.drag.BeginWorkItemDrag(workItemID, anchorOffset)
}

// BeginEntryDrag starts dragging an existing entry.
func (b *Board) BeginEntryDrag(entryID string, anchorOffset float64) error {
	b.gestureMu.Lock()
	defer b.gestureMu.Unlock()
	return b.drag.BeginEntryDrag(entryID, anchorOffset)
}

// HoverCell highlights the cell under the pointer during a drag.
func (b *Board) HoverCell(cell Cell) {
	b.gestureMu.Lock()
	defer b.gestureMu.Unlock()
	b.drag.Hover(cell)
}

// DropOnCell completes a drag over a valid cell and flushes the resulting
// write promptly.
func (b *Board) DropOnCell(cell Cell) (ScheduleEntry, error) {
	b.gestureMu.Lock()
	state, _ := b.drag.State()
	entry, err := b.drag.DropOnCell(cell)
	b.gestureMu.Unlock()
	if err != nil {
		return ScheduleEntry{}, err
	}
	b.reconciler.Flush(entry.ID)

	switch state.Source {
	case SourceWorkItem:
		if b.hooks.OnEntryCreated != nil {
			b.hooks.OnEntryCreated(entry)
		}
	case SourceEntry:
		if b.hooks.OnEntryMoved != nil {
			b.hooks.OnEntryMoved(entry)
		}
	}
	return entry, nil
}

// CancelDrag abandons the drag gesture; used for drops outside any valid
// cell.
func (b *Board) CancelDrag() {
	b.gestureMu.Lock()
	defer b.gestureMu.Unlock()
	b.drag.Cancel()
}

// BeginResize starts a resize gesture on an entry edge.
func (b *Board) BeginResize(entryID string, edge ResizeEdge, pointerX float64) error {
	b.gestureMu.Lock()
	defer b.gestureMu.Unlock()
	return b.resize.Begin(entryID, edge, pointerX)
}

// TrackResize feeds a pointer move into the resize gesture.
func (b *Board) TrackResize(pointerX, columnPixelWidth float64) bool {
	b.gestureMu.Lock()
	defer b.gestureMu.Unlock()
	applied := b.resize.Track(pointerX, columnPixelWidth)
	if applied && b.hooks.OnEntryResized != nil {
		if state, ok := b.resize.State(); ok {
			if entry, found := b.day.Get(state.EntryID); found {
				b.hooks.OnEntryResized(entry)
			}
		}
	}
	return applied
}

// EndResize finishes the resize gesture and flushes the pending write.
func (b *Board) EndResize() {
	b.gestureMu.Lock()
	defer b.gestureMu.Unlock()
	b.resize.End()
}

// DeleteEntry removes an entry optimistically and enqueues the delete write.
func (b *Board) DeleteEntry(entryID string) error {
	entry, ok := b.day.Get(entryID)
	if !ok {
		return ErrNotFound
	}

	b.day.ApplyLocal(Mutation{Kind: MutationDelete, Entry: entry})
	b.sink.MutationApplied("delete")
	b.reconciler.Enqueue(MutationDelete, entry)
	b.reconciler.Flush(entryID)

	if b.hooks.OnEntryDeleted != nil {
		b.hooks.OnEntryDeleted(entryID)
	}
	return nil
}

// Reload refetches the selected day, used after an external editor changed
// entries outside the board.
func (b *Board) Reload(ctx context.Context) error {
	return b.SelectDay(ctx, b.day.Day())
}

// Close flushes pending writes and waits for in-flight completions.
func (b *Board) Close() {
	b.reconciler.Close()
}
