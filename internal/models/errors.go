package models

import (
	"errors"
	"fmt"
)

// Permanent domain failures. These are surfaced to the caller as-is and are
// not worth retrying.
var (
	ErrInvalidTransition  = errors.New("invalid request state transition")
	ErrInvalidAssignee    = errors.New("assignee is not a registered officer")
	ErrUnauthorized       = errors.New("actor does not own this record")
	ErrDuplicateComplaint = errors.New("request already has an active complaint")
	ErrNotYetResponded    = errors.New("request has not been responded to")
	ErrRequestNotFound    = errors.New("request not found")
	ErrComplaintNotFound  = errors.New("complaint not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrIdentityRegistered = errors.New("identity number already registered")

	// ErrMissingRequestID means the ledger committed a create call but its
	// receipt carried no request id. A locally invented id could never match
	// what the ledger indexes under, so this is a hard failure.
	ErrMissingRequestID = errors.New("ledger receipt carries no request id")
)

// ContentStoreError wraps a blob upload/download failure. The whole
// operation is safe to retry: nothing was submitted to the ledger.
type ContentStoreError struct {
	Op  string
	Err error
}

func (e *ContentStoreError) Error() string {
	return fmt.Sprintf("content store: %s: %v", e.Op, e.Err)
}

func (e *ContentStoreError) Unwrap() error { return e.Err }

// LedgerError wraps a ledger submission failure. No mirror side effect has
// occurred, so the whole operation is safe to retry.
type LedgerError struct {
	Op  string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger: %s: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error { return e.Err }

// MirrorWriteError means the ledger committed but the local mirror write
// failed. Plain retry would double-submit the ledger call; the mirror must
// instead be repaired by replaying the committed event (see the lifecycle
// reconciler). TxHash identifies the committed transaction for operators.
type MirrorWriteError struct {
	Op     string
	TxHash string
	Err    error
}

func (e *MirrorWriteError) Error() string {
	return fmt.Sprintf("mirror write after ledger commit %s: %s: %v", e.TxHash, e.Op, e.Err)
}

func (e *MirrorWriteError) Unwrap() error { return e.Err }
