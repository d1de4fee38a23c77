// Package timing records per-operation duration breakdowns: how long the
// content store and the ledger took within each lifecycle transition.
// Records are append-only audit data; nothing in the state machine reads
// them back.
package timing

import (
	"time"

	"rtigo/backend/internal/models"
	"rtigo/backend/internal/storage"
)

// Capture accumulates one operation's marks. Zero-cost on failure paths: a
// capture that is never finished appends nothing.
type Capture struct {
	kind  models.TimingKind
	rec   models.TimingRecord
	clock func() time.Time
}

// Begin starts a capture for one lifecycle operation. The clock is the
// engine's, so tests can drive the marks deterministically.
func Begin(kind models.TimingKind, actorUserID string, clock func() time.Time) *Capture {
	return &Capture{
		kind: kind,
		rec: models.TimingRecord{
			ActorUserID: actorUserID,
			StartedAt:   clock(),
		},
		clock: clock,
	}
}

// StartContent marks the beginning of the content-store window.
func (c *Capture) StartContent() {
	now := c.clock()
	c.rec.ContentStart = &now
}

// EndContent marks the end of the content-store window.
func (c *Capture) EndContent(contentID string) {
	now := c.clock()
	c.rec.ContentEnd = &now
	c.rec.ContentID = contentID
}

// StartLedger marks the beginning of the ledger window.
func (c *Capture) StartLedger() {
	now := c.clock()
	c.rec.LedgerStart = &now
}

// EndLedger marks the end of the ledger window.
func (c *Capture) EndLedger(txHash string) {
	now := c.clock()
	c.rec.LedgerEnd = &now
	c.rec.TxHash = txHash
}

// Finish derives the durations and appends the record. Called only after the
// mirror write succeeded; failed operations leave no timing record.
func (c *Capture) Finish(store storage.Storage, requestID string) error {
	c.rec.RequestID = requestID
	c.rec.FinishedAt = c.clock()
	if c.rec.ContentStart != nil && c.rec.ContentEnd != nil {
		c.rec.ContentMillis = c.rec.ContentEnd.Sub(*c.rec.ContentStart).Milliseconds()
	}
	if c.rec.LedgerStart != nil && c.rec.LedgerEnd != nil {
		c.rec.LedgerMillis = c.rec.LedgerEnd.Sub(*c.rec.LedgerStart).Milliseconds()
	}
	c.rec.TotalMillis = c.rec.FinishedAt.Sub(c.rec.StartedAt).Milliseconds()
	return store.AppendTiming(c.kind, c.rec)
}
