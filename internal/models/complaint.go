package models

import "time"

// Complaint is an active grievance against the response to a request.
// At most one active complaint may exist per request. Closing a complaint
// requires two independent acknowledgements (client + admin); once both are
// set the record is moved to the archive and cannot be reopened.
type Complaint struct {
	ID                 string     `gorm:"primaryKey" json:"id"`
	RequestID          string     `gorm:"uniqueIndex" json:"requestId"`
	ClientUserID       string     `gorm:"index" json:"clientUserId"`
	OfficerUserID      string     `gorm:"index" json:"officerUserId"`
	Text               string     `json:"text"`
	CreatedAt          time.Time  `json:"createdAt"`
	Notified           bool       `json:"notified"`
	NotifiedAt         *time.Time `json:"notifiedAt,omitempty"`
	ResolutionHash     string     `json:"resolutionHash,omitempty"`
	ResolutionFilename string     `json:"resolutionFilename,omitempty"`
	ResolutionAt       *time.Time `json:"resolutionAt,omitempty"`
	ResolvedByUser     bool       `json:"resolvedByUser"`
	ResolvedByAdmin    bool       `json:"resolvedByAdmin"`
}

// ArchivedComplaint is the minimal permanent record kept after both parties
// acknowledged resolution. Append-only, never mutated.
type ArchivedComplaint struct {
	ID                 string    `gorm:"primaryKey" json:"id"`
	RequestID          string    `gorm:"index" json:"requestId"`
	ClientUserID       string    `json:"clientUserId"`
	OfficerUserID      string    `json:"officerUserId"`
	ComplaintCreatedAt time.Time `json:"complaintCreatedAt"`
	ResolvedAt         time.Time `json:"resolvedAt"`
}
