package entity

import "time"

type EventType string

const (
	EventReportClaimed          EventType = "report.claimed"
	EventReportCompleted        EventType = "report.completed"
	EventReportOverdue          EventType = "report.overdue"
	EventNgoApproved            EventType = "ngo.approved"
	EventNgoRejected            EventType = "ngo.rejected"
	EventPasswordResetRequested EventType = "auth.password_reset_requested"
)

// DomainEvent is emitted by use cases after a state change has been persisted.
// Only the fields relevant to Type are populated.
type DomainEvent struct {
	Type       EventType   `json:"type"`
	Report     *Report     `json:"report,omitempty"`
	NgoRequest *NgoRequest `json:"ngoRequest,omitempty"`
	ActorID    string      `json:"actorId,omitempty"`

	// Set on report.overdue: who missed which deadline.
	PreviousAssignee string     `json:"previousAssignee,omitempty"`
	PreviousDueDate  *time.Time `json:"previousDueDate,omitempty"`

	// Set on auth.password_reset_requested.
	Email string `json:"-"`
	OTP   string `json:"-"`

	OccurredAt time.Time `json:"occurredAt"`
}

func (e DomainEvent) IsReportEvent() bool {
	return e.Report != nil
}
