package board

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when the referenced entry does not exist on the
	// board.
	ErrNotFound = errors.New("board: entry not found")
	// ErrNoGesture is returned when a drop or resize event arrives while no
	// gesture is in progress.
	ErrNoGesture = errors.New("board: no gesture in progress")
	// ErrGestureInProgress is returned when a gesture begins while another is
	// still active on the same controller.
	ErrGestureInProgress = errors.New("board: gesture already in progress")
)

// LoadError reports that the entries or technicians for a day could not be
// fetched. It is non-fatal; the board renders empty.
type LoadError struct {
	Day time.Time
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load board for %s: %v", e.Day.Format("2006-01-02"), e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// WorkItemNotFoundError reports a drop referencing a work item that is not
// present in the currently loaded unassigned set. No mutation is performed.
type WorkItemNotFoundError struct {
	WorkItemID string
}

func (e *WorkItemNotFoundError) Error() string {
	return fmt.Sprintf("unable to find work item with id: %s", e.WorkItemID)
}

// PersistenceError reports a create/update/delete write that failed after
// being sent. The board reverts the entry to its last confirmed state.
type PersistenceError struct {
	EntryID string
	Op      string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s for entry %s: %v", e.Op, e.EntryID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
