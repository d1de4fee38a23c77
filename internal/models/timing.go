package models

import "time"

// TimingKind names the lifecycle operation a timing record belongs to.
type TimingKind string

const (
	TimingRequest    TimingKind = "request"
	TimingAssignment TimingKind = "assignment"
	TimingResponse   TimingKind = "response"
)

// TimingRecord is an append-only duration breakdown for one lifecycle
// transition. Audit/performance data only; the state machine never reads it.
type TimingRecord struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	Kind          TimingKind `gorm:"index" json:"-"`
	RequestID     string     `json:"requestId"`
	ActorUserID   string     `json:"actorUserId"`
	StartedAt     time.Time  `json:"startedAt"`
	ContentStart  *time.Time `json:"contentStart,omitempty"`
	ContentEnd    *time.Time `json:"contentEnd,omitempty"`
	LedgerStart   *time.Time `json:"ledgerStart,omitempty"`
	LedgerEnd     *time.Time `json:"ledgerEnd,omitempty"`
	FinishedAt    time.Time  `json:"finishedAt"`
	ContentMillis int64      `json:"contentMillis"`
	LedgerMillis  int64      `json:"ledgerMillis"`
	TotalMillis   int64      `json:"totalMillis"`
	ContentID     string     `json:"contentId,omitempty"`
	TxHash        string     `json:"txHash,omitempty"`
}
