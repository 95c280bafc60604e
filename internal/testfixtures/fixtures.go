package testfixtures

import (
	"time"

	"github.com/example/dispatch-board/internal/board"
)

// ReferenceTime is the shared anchor instant for deterministic tests: a
// Tuesday at 09:00 local time.
func ReferenceTime() time.Time {
	return time.Date(2024, 3, 12, 9, 0, 0, 0, time.Local)
}

// ReferenceDay returns the day containing ReferenceTime at midnight.
func ReferenceDay() time.Time {
	ref := ReferenceTime()
	return time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
}

// Technicians returns a small technician roster.
func Technicians() []board.Technician {
	return []board.Technician{
		{ID: "tech-1", DisplayName: "Avery Chen"},
		{ID: "tech-2", DisplayName: "Jordan Patel"},
		{ID: "tech-3", DisplayName: "Sam Okafor"},
	}
}

// WorkItems returns a sample unassigned work item pool.
func WorkItems() []board.WorkItem {
	return []board.WorkItem{
		{ID: "ticket-100", Type: board.WorkItemTicket, Name: "Fix printer", Description: "Front desk printer jams", Billable: true},
		{ID: "task-200", Type: board.WorkItemProjectTask, Name: "Rack new switch", Description: "Install access switch in IDF-2", Billable: true},
		{ID: "adhoc-300", Type: board.WorkItemAdHoc, Name: "Password reset batch", Billable: false},
	}
}

// Entry builds a schedule entry on the reference day between the given hours.
func Entry(id, technicianID string, startHour, endHour int) board.ScheduleEntry {
	day := ReferenceDay()
	return board.ScheduleEntry{
		ID:            id,
		WorkItemID:    "ticket-100",
		WorkItemType:  board.WorkItemTicket,
		Title:         "Fix printer",
		Status:        board.StatusScheduled,
		TechnicianIDs: []string{technicianID},
		Start:         day.Add(time.Duration(startHour) * time.Hour),
		End:           day.Add(time.Duration(endHour) * time.Hour),
		CreatedAt:     ReferenceTime(),
		UpdatedAt:     ReferenceTime(),
	}
}
