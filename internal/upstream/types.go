package upstream

import "time"

// Status is the lifecycle state of a queue item. Items leave the live view the
// moment they become done.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusInService Status = "in_service"
	StatusDone      Status = "done"
)

// QueueItem represents one unit of work waiting for or receiving service, as
// returned by the remote scheduling API.
type QueueItem struct {
	ID              int64      `json:"id"`
	Code            string     `json:"code"`
	Room            string     `json:"room"`
	ScheduledMoment time.Time  `json:"scheduledMoment"`
	Status          Status     `json:"status"`
	Kind            string     `json:"kind,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	SpecialistID    *int64     `json:"specialistId,omitempty"`
	PatientID       *int64     `json:"patientId,omitempty"`
	ReceptionistID  *int64     `json:"receptionistId,omitempty"`
	ResponsibleID   *int64     `json:"responsibleId,omitempty"`
	UnitPrefix      string     `json:"unitPrefix,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
}

// DetailsUpdate carries the editable fields of a queue item.
type DetailsUpdate struct {
	Room  string `json:"room"`
	Kind  string `json:"kind"`
	Notes string `json:"notes"`
}

// Plan is an insurance-plan record.
type Plan struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Active    bool   `json:"active"`
}

// Scope narrows which live items a fetch returns. The zero value is the global
// "currently in service" scope.
type Scope struct {
	Date  string // YYYY-MM-DD
	Staff string // staff member identifier
}

// IsGlobal reports whether the scope is the unfiltered in-service query.
func (s Scope) IsGlobal() bool {
	return s.Date == "" && s.Staff == ""
}

// Key returns a stable identifier for the scope, used to key per-scope pollers.
func (s Scope) Key() string {
	if s.IsGlobal() {
		return "global"
	}
	return "date=" + s.Date + "&staff=" + s.Staff
}
