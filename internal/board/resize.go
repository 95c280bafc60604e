package board

import (
	"time"

	"github.com/example/dispatch-board/internal/grid"
	"github.com/example/dispatch-board/internal/logging"
	"github.com/example/dispatch-board/internal/metrics"
)

// ResizeEdge identifies which boundary of an entry is being dragged.
type ResizeEdge string

const (
	// EdgeStart adjusts the entry's start time.
	EdgeStart ResizeEdge = "start"
	// EdgeEnd adjusts the entry's end time.
	EdgeEnd ResizeEdge = "end"
)

// ResizeState is the ephemeral bookkeeping of an in-progress resize gesture.
type ResizeState struct {
	EntryID         string
	Edge            ResizeEdge
	InitialPointerX float64
	InitialStart    time.Time
	InitialEnd      time.Time
}

// ResizeController turns a pointer drag on an entry's edge handle into a
// continuous start or end time adjustment, quantized and bounded.
//
// States: idle -> resizing(edge) -> idle. Candidates that would invert the
// span or shrink it below the minimum duration are rejected silently; the
// entry keeps its previous span and tracking continues.
type ResizeController struct {
	day         *DayStore
	reconciler  *Reconciler
	geometry    grid.Geometry
	quantum     time.Duration
	minDuration time.Duration
	now         func() time.Time
	sink        metrics.Sink
	logger      logging.Logger

	state *ResizeState
}

// NewResizeController wires the resize controller.
func NewResizeController(day *DayStore, reconciler *Reconciler, geometry grid.Geometry, quantum, minDuration time.Duration, now func() time.Time, sink metrics.Sink, logger logging.Logger) *ResizeController {
	if quantum <= 0 {
		quantum = grid.DefaultQuantum
	}
	if minDuration <= 0 {
		minDuration = MinEntryDuration
	}
	if now == nil {
		now = time.Now
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &ResizeController{
		day:         day,
		reconciler:  reconciler,
		geometry:    geometry,
		quantum:     quantum,
		minDuration: minDuration,
		now:         now,
		sink:        sink,
		logger:      logger,
	}
}

// Begin enters the resizing state for the entry's edge. The originating
// pointer event must not reach the drag or cell click handlers; hosts stop
// its propagation before calling Begin.
func (c *ResizeController) Begin(entryID string, edge ResizeEdge, pointerX float64) error {
	if c.state != nil {
		return ErrGestureInProgress
	}
	entry, ok := c.day.Get(entryID)
	if !ok {
		return ErrNotFound
	}
	c.state = &ResizeState{
		EntryID:         entryID,
		Edge:            edge,
		InitialPointerX: pointerX,
		InitialStart:    entry.Start,
		InitialEnd:      entry.End,
	}
	return nil
}

// Resizing reports whether a resize gesture is in progress.
func (c *ResizeController) Resizing() bool {
	return c.state != nil
}

// State returns a copy of the in-progress resize state for inspection.
func (c *ResizeController) State() (ResizeState, bool) {
	if c.state == nil {
		return ResizeState{}, false
	}
	return *c.state, true
}

// Track recomputes the dragged boundary from the pointer's current X
// position, applies the candidate optimistically and schedules a debounced
// write. It reports whether the candidate was applied; rejected candidates
// leave the entry unchanged but the gesture keeps tracking.
func (c *ResizeController) Track(pointerX, columnPixelWidth float64) bool {
	state := c.state
	if state == nil {
		return false
	}
	entry, ok := c.day.Get(state.EntryID)
	if !ok {
		return false
	}

	delta := c.geometry.DeltaFromPixels(pointerX-state.InitialPointerX, columnPixelWidth, c.quantum)
	day := c.day.Day()

	start := state.InitialStart
	end := state.InitialEnd
	switch state.Edge {
	case EdgeStart:
		start = c.geometry.ClampToDay(state.InitialStart.Add(delta), day)
	case EdgeEnd:
		end = c.geometry.ClampToDay(state.InitialEnd.Add(delta), day)
	default:
		return false
	}

	if !end.After(start) || end.Sub(start) < c.minDuration {
		return false
	}
	if start.Equal(entry.Start) && end.Equal(entry.End) {
		// Pointer moved less than a quantum; nothing to apply.
		return false
	}

	entry.Start = start
	entry.End = end
	entry.UpdatedAt = c.now()

	c.day.ApplyLocal(Mutation{Kind: MutationUpdate, Entry: entry})
	c.sink.MutationApplied("resize")
	c.reconciler.Enqueue(MutationUpdate, entry)
	return true
}

// End leaves the resizing state and flushes any pending debounced write
// promptly.
func (c *ResizeController) End() {
	state := c.state
	c.state = nil
	if state == nil {
		return
	}
	c.reconciler.Flush(state.EntryID)
}

// Cancel leaves the resizing state without flushing; any already scheduled
// write fires on its own timer.
func (c *ResizeController) Cancel() {
	c.state = nil
}
