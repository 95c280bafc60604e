package metrics

// Sink receives counters emitted by the board engine. Implementations must be
// safe for concurrent use.
type Sink interface {
	// MutationApplied records an optimistic local mutation by gesture kind
	// (drop_create, drag_move, resize, delete).
	MutationApplied(kind string)
	// WriteCompleted records the outcome of a persistence write
	// (create/update/delete) as "ok" or "error".
	WriteCompleted(op, outcome string)
	// WriteSuperseded records a pending write cancelled by a newer mutation
	// for the same entry.
	WriteSuperseded()
}

// NopSink discards all metrics.
type NopSink struct{}

func (NopSink) MutationApplied(string)     {}
func (NopSink) WriteCompleted(_, _ string) {}
func (NopSink) WriteSuperseded()           {}
