// Package ledger is the gateway to the append-only authoritative transaction
// log. The engine treats a submission as a single opaque, possibly-slow,
// possibly-failing operation; callers bound it with a context deadline.
package ledger

import (
	"context"
	"time"
)

// Contract method names.
const (
	MethodCreateRequest  = "createRequest"
	MethodAssignRequest  = "assignRequest"
	MethodSubmitResponse = "submitResponse"
)

// Call is one contract invocation to be encoded, signed and submitted.
type Call struct {
	Method string
	Args   []any
}

// CreateRequestCall records a new request for clientUserID referencing the
// uploaded document by contentID.
func CreateRequestCall(clientUserID, contentID, description string) Call {
	return Call{Method: MethodCreateRequest, Args: []any{clientUserID, contentID, description}}
}

// AssignRequestCall assigns requestID to officerUserID.
func AssignRequestCall(requestID, officerUserID string) Call {
	return Call{Method: MethodAssignRequest, Args: []any{requestID, officerUserID}}
}

// SubmitResponseCall records officerUserID's response document for requestID.
func SubmitResponseCall(requestID, officerUserID, responseHash string) Call {
	return Call{Method: MethodSubmitResponse, Args: []any{requestID, officerUserID, responseHash}}
}

// Receipt is the commit evidence for a submitted call. RequestID is filled
// from the emitted creation event and is empty for calls that do not create
// a request. A create whose receipt carried no event also leaves it empty;
// the engine treats that as a hard failure rather than minting a local id.
type Receipt struct {
	TxHash    string
	RequestID string
}

// Gateway submits one encoded, signed call and waits for its commit.
type Gateway interface {
	Submit(ctx context.Context, call Call) (*Receipt, error)
}

// EventKind names a committed lifecycle event read back from the ledger.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventAssigned  EventKind = "assigned"
	EventResponded EventKind = "responded"
)

// Event is one committed lifecycle fact. Fields beyond RequestID are filled
// only where the event carries them.
type Event struct {
	Kind          EventKind
	RequestID     string
	ClientUserID  string
	OfficerUserID string
	ContentID     string
	Description   string
	TxHash        string
	At            time.Time
}

// EventReader streams the committed events in ledger order. The reconciler
// replays them into the mirror; the wire format behind this stays with the
// ledger.
type EventReader interface {
	Events(ctx context.Context) ([]Event, error)
}
