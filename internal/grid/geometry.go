package grid

import (
	"fmt"
	"math"
	"time"
)

// DefaultQuantum is the smallest unit of time adjustment on the board.
const DefaultQuantum = 15 * time.Minute

// Geometry maps between wall-clock time and a horizontal axis of equal-width
// hour columns spanning StartHour to EndHour on a single day.
type Geometry struct {
	StartHour int
	EndHour   int
}

// New validates the configured hour range and returns a Geometry.
func New(startHour, endHour int) (Geometry, error) {
	if startHour < 0 || startHour > 23 {
		return Geometry{}, fmt.Errorf("grid: start hour %d out of range", startHour)
	}
	if endHour < 1 || endHour > 24 {
		return Geometry{}, fmt.Errorf("grid: end hour %d out of range", endHour)
	}
	if startHour >= endHour {
		return Geometry{}, fmt.Errorf("grid: start hour %d must be before end hour %d", startHour, endHour)
	}
	return Geometry{StartHour: startHour, EndHour: endHour}, nil
}

// Columns returns the number of hour columns rendered by the grid.
func (g Geometry) Columns() int {
	return g.EndHour - g.StartHour
}

// ColumnWidthPercent returns the width of a single hour column as a
// percentage of the full grid width.
func (g Geometry) ColumnWidthPercent() float64 {
	return 100.0 / float64(g.Columns())
}

// Span describes the horizontal placement of an entry as percentages of the
// grid width.
type Span struct {
	OffsetPercent float64
	WidthPercent  float64
}

// Span converts an entry's start and end instants into a horizontal span.
// Both instants are interpreted in their own locations; callers are expected
// to pass instants on the grid's selected day.
func (g Geometry) Span(start, end time.Time) Span {
	colWidth := g.ColumnWidthPercent()
	hours := float64(start.Hour()-g.StartHour) + float64(start.Minute())/60.0
	duration := end.Sub(start).Hours()
	return Span{
		OffsetPercent: hours * colWidth,
		WidthPercent:  duration * colWidth,
	}
}

// DeltaFromPixels converts a pointer's horizontal pixel displacement into a
// time delta rounded to the nearest quantum. A zero or negative column width
// yields a zero delta.
func (g Geometry) DeltaFromPixels(pixelDelta, columnPixelWidth float64, quantum time.Duration) time.Duration {
	if columnPixelWidth <= 0 {
		return 0
	}
	if quantum <= 0 {
		quantum = DefaultQuantum
	}
	stepsPerHour := float64(time.Hour) / float64(quantum)
	hours := pixelDelta / columnPixelWidth
	quantized := math.Round(hours*stepsPerHour) / stepsPerHour
	return time.Duration(quantized * float64(time.Hour))
}

// DayStart returns the instant at which the grid begins on the given day.
func (g Geometry) DayStart(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), g.StartHour, 0, 0, 0, day.Location())
}

// DayEnd returns the instant at which the grid ends on the given day.
func (g Geometry) DayEnd(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), g.EndHour, 0, 0, 0, day.Location())
}

// SlotStart returns the instant a cell at the given hour and minute begins on
// the given day.
func (g Geometry) SlotStart(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// ClampToDay restricts an instant to the visible grid range of the given day.
func (g Geometry) ClampToDay(t, day time.Time) time.Time {
	start := g.DayStart(day)
	end := g.DayEnd(day)
	if t.Before(start) {
		return start
	}
	if t.After(end) {
		return end
	}
	return t
}

// Contains reports whether the instant falls inside the visible grid range of
// the given day.
func (g Geometry) Contains(t, day time.Time) bool {
	start := g.DayStart(day)
	end := g.DayEnd(day)
	return !t.Before(start) && !t.After(end)
}
