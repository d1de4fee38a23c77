// Package lifecycle implements the request state machine and the dual-write
// protocol that keeps the local mirror consistent with ledger commits.
//
// Every mutating operation follows the same ordering: content store, then
// ledger, then mirror. The ledger is the durable source of truth and the
// mirror a rebuildable projection, so the mirror is only touched after the
// ledger call committed.
package lifecycle

import (
	"context"
	"log"
	"time"

	"rtigo/backend/internal/content"
	"rtigo/backend/internal/ledger"
	"rtigo/backend/internal/models"
	"rtigo/backend/internal/storage"
	"rtigo/backend/internal/timing"
)

// Engine orchestrates request-state transitions. It holds no state across
// calls; everything persisted lives in the mirror store or behind the
// gateways.
type Engine struct {
	Storage storage.Storage
	Content content.Store
	Ledger  ledger.Gateway
	Clock   func() time.Time
}

// NewEngine creates an Engine over the given collaborators.
func NewEngine(s storage.Storage, c content.Store, l ledger.Gateway) *Engine {
	return &Engine{Storage: s, Content: c, Ledger: l, Clock: time.Now}
}

// SubmitRequest uploads the document, records the creation on the ledger and
// mirrors the new request in status Pending. The request id is the one the
// ledger assigned; a receipt without one is a hard failure, no local id is
// invented.
func (e *Engine) SubmitRequest(ctx context.Context, clientID string, blob []byte, filename, description string) (*models.Request, error) {
	cap := timing.Begin(models.TimingRequest, clientID, e.Clock)

	cap.StartContent()
	contentID, err := e.Content.Put(ctx, blob)
	if err != nil {
		return nil, &models.ContentStoreError{Op: "upload request document", Err: err}
	}
	if err := e.Content.Pin(ctx, contentID); err != nil {
		return nil, &models.ContentStoreError{Op: "pin request document", Err: err}
	}
	cap.EndContent(contentID)

	cap.StartLedger()
	receipt, err := e.Ledger.Submit(ctx, ledger.CreateRequestCall(clientID, contentID, description))
	if err != nil {
		return nil, &models.LedgerError{Op: "create request", Err: err}
	}
	cap.EndLedger(receipt.TxHash)
	if receipt.RequestID == "" {
		// The create is already on the ledger; retrying would submit it
		// again. Surface the committed TxHash so an operator can follow up.
		return nil, &models.MirrorWriteError{Op: "create request", TxHash: receipt.TxHash, Err: models.ErrMissingRequestID}
	}

	req, err := e.applyCreate(ledger.Event{
		Kind:         ledger.EventCreated,
		RequestID:    receipt.RequestID,
		ClientUserID: clientID,
		ContentID:    contentID,
		Description:  description,
		TxHash:       receipt.TxHash,
	}, filename)
	if err != nil {
		return nil, &models.MirrorWriteError{Op: "mirror new request", TxHash: receipt.TxHash, Err: err}
	}

	e.finishTiming(cap, receipt.RequestID)
	return req, nil
}

// AssignRequest assigns a Pending request to an officer. The transition and
// the assignee are validated before anything reaches the ledger, so a
// rejected call leaves no trace anywhere.
func (e *Engine) AssignRequest(ctx context.Context, adminID, requestID, officerUserID string) (*models.Request, error) {
	officer, err := e.Storage.FindUserByID(officerUserID)
	if err != nil {
		return nil, err
	}
	if officer == nil || officer.Role != models.RoleOfficer {
		return nil, models.ErrInvalidAssignee
	}
	req, err := e.Storage.FindRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, models.ErrRequestNotFound
	}
	if req.Status != models.StatusPending {
		return nil, models.ErrInvalidTransition
	}

	cap := timing.Begin(models.TimingAssignment, adminID, e.Clock)

	cap.StartLedger()
	receipt, err := e.Ledger.Submit(ctx, ledger.AssignRequestCall(requestID, officerUserID))
	if err != nil {
		return nil, &models.LedgerError{Op: "assign request", Err: err}
	}
	cap.EndLedger(receipt.TxHash)

	updated, err := e.applyAssign(ledger.Event{
		Kind:          ledger.EventAssigned,
		RequestID:     requestID,
		OfficerUserID: officerUserID,
		TxHash:        receipt.TxHash,
	})
	if err != nil {
		return nil, &models.MirrorWriteError{Op: "mirror assignment", TxHash: receipt.TxHash, Err: err}
	}
	if updated == nil {
		// The request vanished between the pre-check and the ledger commit;
		// the ledger has the assignment and the reconciler will repair it.
		return nil, &models.MirrorWriteError{Op: "mirror assignment", TxHash: receipt.TxHash, Err: models.ErrRequestNotFound}
	}

	e.finishTiming(cap, requestID)
	return updated, nil
}

// SubmitResponse uploads the response document for an Assigned request. Only
// the assigned officer may respond.
func (e *Engine) SubmitResponse(ctx context.Context, officerID, requestID string, blob []byte, filename string) (*models.Request, error) {
	req, err := e.Storage.FindRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, models.ErrRequestNotFound
	}
	if req.Status != models.StatusAssigned {
		return nil, models.ErrInvalidTransition
	}
	if req.AssignedOfficerUserID != officerID {
		return nil, models.ErrUnauthorized
	}

	cap := timing.Begin(models.TimingResponse, officerID, e.Clock)

	cap.StartContent()
	contentID, err := e.Content.Put(ctx, blob)
	if err != nil {
		return nil, &models.ContentStoreError{Op: "upload response document", Err: err}
	}
	if err := e.Content.Pin(ctx, contentID); err != nil {
		return nil, &models.ContentStoreError{Op: "pin response document", Err: err}
	}
	cap.EndContent(contentID)

	cap.StartLedger()
	receipt, err := e.Ledger.Submit(ctx, ledger.SubmitResponseCall(requestID, officerID, contentID))
	if err != nil {
		return nil, &models.LedgerError{Op: "submit response", Err: err}
	}
	cap.EndLedger(receipt.TxHash)

	updated, err := e.applyRespond(ledger.Event{
		Kind:          ledger.EventResponded,
		RequestID:     requestID,
		OfficerUserID: officerID,
		ContentID:     contentID,
		TxHash:        receipt.TxHash,
	}, filename)
	if err != nil {
		return nil, &models.MirrorWriteError{Op: "mirror response", TxHash: receipt.TxHash, Err: err}
	}
	if updated == nil {
		return nil, &models.MirrorWriteError{Op: "mirror response", TxHash: receipt.TxHash, Err: models.ErrRequestNotFound}
	}

	e.finishTiming(cap, requestID)
	return updated, nil
}

// ListRequestsBy is a read-only filter over the mirror.
func (e *Engine) ListRequestsBy(pred storage.RequestPredicate) ([]models.Request, error) {
	return e.Storage.ListRequestsBy(pred)
}

// OverdueAssigned returns the Assigned requests whose assignment age
// strictly exceeds threshold. Recomputed from current time on every call,
// never persisted.
func (e *Engine) OverdueAssigned(threshold time.Duration) ([]models.Request, error) {
	now := e.Clock()
	return e.Storage.ListRequestsBy(func(r models.Request) bool {
		return r.Status == models.StatusAssigned &&
			r.AssignedAt != nil &&
			now.Sub(*r.AssignedAt) > threshold
	})
}

// finishTiming appends the capture. Telemetry is audit-only, so a failed
// append is logged and otherwise ignored.
func (e *Engine) finishTiming(cap *timing.Capture, requestID string) {
	if err := cap.Finish(e.Storage, requestID); err != nil {
		log.Printf("WARN: failed to append timing record for request %s: %v", requestID, err)
	}
}
