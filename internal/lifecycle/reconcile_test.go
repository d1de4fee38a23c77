package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rtigo/backend/internal/ledger"
	"rtigo/backend/internal/lifecycle"
	"rtigo/backend/internal/models"
)

func ledgerHistory(at time.Time) []ledger.Event {
	return []ledger.Event{
		{Kind: ledger.EventCreated, RequestID: "R-1", ClientUserID: "client-1", ContentID: "Qm1", Description: "D", TxHash: "0x1", At: at},
		{Kind: ledger.EventAssigned, RequestID: "R-1", OfficerUserID: "officer-1", TxHash: "0x2", At: at.Add(time.Minute)},
		{Kind: ledger.EventResponded, RequestID: "R-1", OfficerUserID: "officer-1", ContentID: "Qm2", TxHash: "0x3", At: at.Add(2 * time.Minute)},
	}
}

// TestReconciler_RebuildsEmptyMirror replays the full history into a mirror
// that lost everything.
func TestReconciler_RebuildsEmptyMirror(t *testing.T) {
	gateway := new(MockGateway)
	engine, store, _ := newTestEngine(gateway)
	reader := new(MockEventReader)

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	reader.On("Events", mock.Anything).Return(ledgerHistory(at), nil).Once()

	rec := &lifecycle.Reconciler{Engine: engine, Reader: reader}
	applied, err := rec.Replay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, applied)

	req, err := store.FindRequestByID("R-1")
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, models.StatusResponded, req.Status)
	assert.Equal(t, "officer-1", req.AssignedOfficerUserID)
	assert.Equal(t, "Qm1", req.RequestHash)
	assert.Equal(t, "Qm2", req.ResponseHash)
	assert.Equal(t, at, req.CreatedAt)
}

// TestReconciler_ReplayIsIdempotent verifies a second replay changes nothing.
func TestReconciler_ReplayIsIdempotent(t *testing.T) {
	gateway := new(MockGateway)
	engine, store, _ := newTestEngine(gateway)
	reader := new(MockEventReader)

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	reader.On("Events", mock.Anything).Return(ledgerHistory(at), nil).Twice()

	rec := &lifecycle.Reconciler{Engine: engine, Reader: reader}
	_, err := rec.Replay(context.Background())
	require.NoError(t, err)

	before, _ := store.FindRequestByID("R-1")

	applied, err := rec.Replay(context.Background())
	require.NoError(t, err)
	assert.Zero(t, applied, "already-mirrored events must be skipped")

	after, _ := store.FindRequestByID("R-1")
	assert.Equal(t, before, after)
}

// TestReconciler_RepairsPartialMirror skips what the mirror has and applies
// what it lost.
func TestReconciler_RepairsPartialMirror(t *testing.T) {
	gateway := new(MockGateway)
	engine, store, _ := newTestEngine(gateway)
	reader := new(MockEventReader)

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	// Mirror already has the request in Pending; assignment and response
	// committed on the ledger but missed the mirror.
	require.NoError(t, store.AddRequest(&models.Request{
		ID: "R-1", ClientID: "client-1", RequestHash: "Qm1", Description: "D",
		Status: models.StatusPending, CreatedAt: at,
	}))
	reader.On("Events", mock.Anything).Return(ledgerHistory(at), nil).Once()

	rec := &lifecycle.Reconciler{Engine: engine, Reader: reader}
	applied, err := rec.Replay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	req, _ := store.FindRequestByID("R-1")
	assert.Equal(t, models.StatusResponded, req.Status)
	require.NotNil(t, req.AssignedAt)
	assert.Equal(t, at.Add(time.Minute), *req.AssignedAt)
}

// TestApplyEvent_UnknownKind surfaces bad event kinds instead of guessing.
func TestApplyEvent_UnknownKind(t *testing.T) {
	gateway := new(MockGateway)
	engine, _, _ := newTestEngine(gateway)

	_, err := engine.ApplyEvent(ledger.Event{Kind: "rescinded", RequestID: "R-1"})
	assert.Error(t, err)
}

// TestApplyEvent_AssignBeforeCreate is a no-op: the mirror cannot assign a
// request it has never seen.
func TestApplyEvent_AssignBeforeCreate(t *testing.T) {
	gateway := new(MockGateway)
	engine, store, _ := newTestEngine(gateway)

	applied, err := engine.ApplyEvent(ledger.Event{
		Kind: ledger.EventAssigned, RequestID: "R-unknown", OfficerUserID: "officer-1",
	})
	require.NoError(t, err)
	assert.False(t, applied)

	requests, _ := store.ListRequestsBy(func(models.Request) bool { return true })
	assert.Empty(t, requests)
}
