package board

import (
	"time"

	"github.com/example/dispatch-board/internal/logging"
	"github.com/example/dispatch-board/internal/metrics"
)

// DragSource identifies what a drag gesture picked up.
type DragSource string

const (
	// SourceWorkItem is a drag starting on an unassigned work item in the
	// side panel.
	SourceWorkItem DragSource = "work_item"
	// SourceEntry is a drag starting on an entry already on the board.
	SourceEntry DragSource = "entry"
)

// DragState is the ephemeral bookkeeping of an in-progress drag gesture. It
// is owned exclusively by the DragController and never persisted.
type DragState struct {
	Source       DragSource
	WorkItemID   string
	EntryID      string
	AnchorOffset float64
	// Original span of a dragged entry, so a move preserves its duration.
	OriginalStart time.Time
	OriginalEnd   time.Time
}

// DragController turns generic pointer drag events into the two domain
// operations the board supports: create an entry from an unassigned work
// item, and move an existing entry to a new technician and time.
//
// States: idle -> dragging -> idle. A drop outside any valid cell, or an
// explicit cancel, returns to idle with no mutation.
type DragController struct {
	day             *DayStore
	reconciler      *Reconciler
	lookupItem      func(id string) (WorkItem, bool)
	idGenerator     func() string
	now             func() time.Time
	defaultDuration time.Duration
	sink            metrics.Sink
	logger          logging.Logger

	state *DragState
	hover *Cell
}

// NewDragController wires the drag controller. lookupItem resolves a work
// item id against the currently loaded unassigned set.
func NewDragController(day *DayStore, reconciler *Reconciler, lookupItem func(id string) (WorkItem, bool), idGenerator func() string, now func() time.Time, defaultDuration time.Duration, sink metrics.Sink, logger logging.Logger) *DragController {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if defaultDuration <= 0 {
		defaultDuration = DefaultEntryDuration
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &DragController{
		day:             day,
		reconciler:      reconciler,
		lookupItem:      lookupItem,
		idGenerator:     idGenerator,
		now:             now,
		defaultDuration: defaultDuration,
		sink:            sink,
		logger:          logger,
	}
}

// BeginWorkItemDrag enters the dragging state for an unassigned work item.
func (c *DragController) BeginWorkItemDrag(workItemID string, anchorOffset float64) error {
	if c.state != nil {
		return ErrGestureInProgress
	}
	c.state = &DragState{
		Source:       SourceWorkItem,
		WorkItemID:   workItemID,
		AnchorOffset: anchorOffset,
	}
	return nil
}

// BeginEntryDrag enters the dragging state for an existing entry.
func (c *DragController) BeginEntryDrag(entryID string, anchorOffset float64) error {
	if c.state != nil {
		return ErrGestureInProgress
	}
	entry, ok := c.day.Get(entryID)
	if !ok {
		return ErrNotFound
	}
	c.state = &DragState{
		Source:        SourceEntry,
		EntryID:       entryID,
		AnchorOffset:  anchorOffset,
		OriginalStart: entry.Start,
		OriginalEnd:   entry.End,
	}
	return nil
}

// Hover records the cell currently under the pointer. Pure UI feedback; the
// gesture state is unchanged.
func (c *DragController) Hover(cell Cell) {
	if c.state == nil {
		return
	}
	c.hover = &cell
}

// Hovered returns the highlighted cell, if any.
func (c *DragController) Hovered() *Cell {
	return c.hover
}

// Dragging reports whether a drag gesture is in progress.
func (c *DragController) Dragging() bool {
	return c.state != nil
}

// State returns a copy of the in-progress drag state for inspection.
func (c *DragController) State() (DragState, bool) {
	if c.state == nil {
		return DragState{}, false
	}
	return *c.state, true
}

// DropOnCell completes the gesture over a valid cell. For a work item source
// a new entry is created with the default duration; for an entry source the
// entry keeps its duration and is shifted to the cell's time and technician.
// The mutation is applied optimistically and a persistence write is enqueued.
func (c *DragController) DropOnCell(cell Cell) (ScheduleEntry, error) {
	state := c.state
	if state == nil {
		return ScheduleEntry{}, ErrNoGesture
	}
	c.reset()

	switch state.Source {
	case SourceWorkItem:
		return c.dropWorkItem(state, cell)
	case SourceEntry:
		return c.moveEntry(state, cell)
	default:
		return ScheduleEntry{}, ErrNoGesture
	}
}

// Cancel abandons the gesture with no mutation. Also used for drops that
// land outside any valid cell.
func (c *DragController) Cancel() {
	c.reset()
}

func (c *DragController) dropWorkItem(state *DragState, cell Cell) (ScheduleEntry, error) {
	item, ok := c.lookupItem(state.WorkItemID)
	if !ok {
		err := &WorkItemNotFoundError{WorkItemID: state.WorkItemID}
		c.logger.Warnf("%v", err)
		return ScheduleEntry{}, err
	}

	now := c.now()
	entry := ScheduleEntry{
		ID:            c.idGenerator(),
		WorkItemID:    item.ID,
		WorkItemType:  item.Type,
		Title:         item.Name,
		Status:        StatusScheduled,
		TechnicianIDs: []string{cell.TechnicianID},
		Start:         cell.SlotStart,
		End:           cell.SlotStart.Add(c.defaultDuration),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	c.day.ApplyLocal(Mutation{Kind: MutationCreate, Entry: entry})
	c.sink.MutationApplied("drop_create")
	c.reconciler.Enqueue(MutationCreate, entry)
	return entry, nil
}

func (c *DragController) moveEntry(state *DragState, cell Cell) (ScheduleEntry, error) {
	entry, ok := c.day.Get(state.EntryID)
	if !ok {
		return ScheduleEntry{}, ErrNotFound
	}

	duration := state.OriginalEnd.Sub(state.OriginalStart)
	entry.Start = cell.SlotStart
	entry.End = cell.SlotStart.Add(duration)
	entry.TechnicianIDs = []string{cell.TechnicianID}
	entry.UpdatedAt = c.now()

	c.day.ApplyLocal(Mutation{Kind: MutationUpdate, Entry: entry})
	c.sink.MutationApplied("drag_move")
	c.reconciler.Enqueue(MutationUpdate, entry)
	return entry, nil
}

func (c *DragController) reset() {
	c.state = nil
	c.hover = nil
}
