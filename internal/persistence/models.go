package persistence

import "time"

// WorkItemType classifies an assignable unit of work.
type WorkItemType string

const (
	// WorkItemTicket is a service ticket raised by a customer.
	WorkItemTicket WorkItemType = "ticket"
	// WorkItemProjectTask is a task belonging to a project plan.
	WorkItemProjectTask WorkItemType = "project_task"
	// WorkItemAdHoc is a one-off entry created directly by a dispatcher.
	WorkItemAdHoc WorkItemType = "ad_hoc"
	// WorkItemNonBillable covers internal, non-billable categories.
	WorkItemNonBillable WorkItemType = "non_billable"
)

// WorkItem represents an assignable unit of work owned by external systems.
type WorkItem struct {
	ID          string
	Type        WorkItemType
	Name        string
	Description string
	Billable    bool
}

// Technician represents a schedulable resource from the directory.
type Technician struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScheduleEntry represents a persisted assignment of a work item to one or
// more technicians for a concrete time span.
type ScheduleEntry struct {
	ID            string
	WorkItemID    string
	WorkItemType  WorkItemType
	Title         string
	Status        string
	TechnicianIDs []string
	Start         time.Time
	End           time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
