package models

import "time"

// RequestStatus is the lifecycle position of an information request.
// Transitions are strictly forward: Pending → Assigned → Responded.
type RequestStatus int

const (
	StatusPending RequestStatus = iota
	StatusAssigned
	StatusResponded
)

func (s RequestStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAssigned:
		return "assigned"
	case StatusResponded:
		return "responded"
	default:
		return "unknown"
	}
}

// ParseRequestStatus maps a status name to its RequestStatus. The bool is
// false for unrecognised names.
func ParseRequestStatus(name string) (RequestStatus, bool) {
	switch name {
	case "pending":
		return StatusPending, true
	case "assigned":
		return StatusAssigned, true
	case "responded":
		return StatusResponded, true
	}
	return 0, false
}

// Request дзеркалить запит, зафіксований у реєстрі (ledger).
// ID призначається реєстром, не локально.
type Request struct {
	ID                    string        `gorm:"primaryKey" json:"id"`
	ClientID              string        `gorm:"index" json:"clientId"`
	Description           string        `json:"description"`
	RequestHash           string        `json:"requestHash"`
	RequestFilename       string        `json:"requestFilename"`
	Status                RequestStatus `json:"status"`
	AssignedOfficerUserID string        `gorm:"index" json:"assignedOfficerUserId,omitempty"`
	AssignedAt            *time.Time    `json:"assignedAt,omitempty"`
	ResponseHash          string        `json:"responseHash,omitempty"`
	ResponseFilename      string        `json:"responseFilename,omitempty"`
	RespondedAt           *time.Time    `json:"respondedAt,omitempty"`
	CreatedAt             time.Time     `json:"createdAt"`
}
