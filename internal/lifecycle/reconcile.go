package lifecycle

import (
	"context"
	"fmt"
	"log"

	"rtigo/backend/internal/ledger"
	"rtigo/backend/internal/models"
)

// ApplyEvent projects one committed ledger event into the mirror. It is
// idempotent: re-applying an event the mirror already reflects changes
// nothing and reports applied=false. The happy-path operations and the
// reconciler both funnel their mirror writes through here, which is what
// keeps the mirror rebuildable from the ledger alone.
func (e *Engine) ApplyEvent(ev ledger.Event) (bool, error) {
	switch ev.Kind {
	case ledger.EventCreated:
		existing, err := e.Storage.FindRequestByID(ev.RequestID)
		if err != nil {
			return false, err
		}
		if existing != nil {
			return false, nil
		}
		if _, err := e.applyCreate(ev, ""); err != nil {
			return false, err
		}
		return true, nil
	case ledger.EventAssigned:
		applied := false
		_, err := e.Storage.UpdateRequest(ev.RequestID, func(r *models.Request) error {
			if r.Status != models.StatusPending {
				return nil
			}
			e.assignFields(r, ev)
			applied = true
			return nil
		})
		return applied, err
	case ledger.EventResponded:
		applied := false
		_, err := e.Storage.UpdateRequest(ev.RequestID, func(r *models.Request) error {
			if r.Status != models.StatusAssigned {
				return nil
			}
			e.respondFields(r, ev, "")
			applied = true
			return nil
		})
		return applied, err
	default:
		return false, fmt.Errorf("unknown ledger event kind %q", ev.Kind)
	}
}

func (e *Engine) applyCreate(ev ledger.Event, filename string) (*models.Request, error) {
	createdAt := ev.At
	if createdAt.IsZero() {
		createdAt = e.Clock()
	}
	req := &models.Request{
		ID:              ev.RequestID,
		ClientID:        ev.ClientUserID,
		Description:     ev.Description,
		RequestHash:     ev.ContentID,
		RequestFilename: filename,
		Status:          models.StatusPending,
		CreatedAt:       createdAt,
	}
	if err := e.Storage.AddRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (e *Engine) applyAssign(ev ledger.Event) (*models.Request, error) {
	return e.Storage.UpdateRequest(ev.RequestID, func(r *models.Request) error {
		if r.Status != models.StatusPending {
			// already assigned by a racing write or an earlier replay
			return nil
		}
		e.assignFields(r, ev)
		return nil
	})
}

func (e *Engine) applyRespond(ev ledger.Event, filename string) (*models.Request, error) {
	return e.Storage.UpdateRequest(ev.RequestID, func(r *models.Request) error {
		if r.Status != models.StatusAssigned {
			return nil
		}
		e.respondFields(r, ev, filename)
		return nil
	})
}

func (e *Engine) assignFields(r *models.Request, ev ledger.Event) {
	at := ev.At
	if at.IsZero() {
		at = e.Clock()
	}
	r.Status = models.StatusAssigned
	r.AssignedOfficerUserID = ev.OfficerUserID
	r.AssignedAt = &at
}

func (e *Engine) respondFields(r *models.Request, ev ledger.Event, filename string) {
	at := ev.At
	if at.IsZero() {
		at = e.Clock()
	}
	r.Status = models.StatusResponded
	r.ResponseHash = ev.ContentID
	r.ResponseFilename = filename
	r.RespondedAt = &at
}

// Reconciler repairs the one documented inconsistency window: the ledger
// committed but the mirror write failed. It replays the ledger's event log
// through ApplyEvent; events already mirrored are skipped.
type Reconciler struct {
	Engine *Engine
	Reader ledger.EventReader
}

// Replay applies every committed event and returns how many actually changed
// the mirror.
func (r *Reconciler) Replay(ctx context.Context) (int, error) {
	events, err := r.Reader.Events(ctx)
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, ev := range events {
		ok, err := r.Engine.ApplyEvent(ev)
		if err != nil {
			return applied, fmt.Errorf("replay %s event for request %s: %w", ev.Kind, ev.RequestID, err)
		}
		if ok {
			applied++
			log.Printf("INFO: reconciled %s event for request %s (tx %s)", ev.Kind, ev.RequestID, ev.TxHash)
		}
	}
	return applied, nil
}
