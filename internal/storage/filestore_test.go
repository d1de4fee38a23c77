package storage_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtigo/backend/internal/models"
	"rtigo/backend/internal/storage"
)

// TestFileStore_PersistsAcrossReopen verifies the whole-document rewrite
// survives a close/reopen cycle.
func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := storage.OpenFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.AddRequest(newPendingRequest("R-1", "client-1")))
	require.NoError(t, store.CreateUser(&models.User{Name: "A", IdentityNumber: "111", Role: models.RoleOfficer}))
	require.NoError(t, store.AppendTiming(models.TimingRequest, models.TimingRecord{RequestID: "R-1"}))

	reopened, err := storage.OpenFileStore(dir)
	require.NoError(t, err)

	req, err := reopened.FindRequestByID("R-1")
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "client-1", req.ClientID)

	officers, err := reopened.ListUsersByRole(models.RoleOfficer)
	require.NoError(t, err)
	assert.Len(t, officers, 1)

	timings, err := reopened.ListTimings(models.TimingRequest)
	require.NoError(t, err)
	assert.Len(t, timings, 1)
}

// TestFileStore_MigratesLegacyDocument verifies a pre-versioning document
// (no schemaVersion, missing complaint collections) is upgraded once at open.
func TestFileStore_MigratesLegacyDocument(t *testing.T) {
	dir := t.TempDir()
	legacy := map[string]any{
		"users": []map[string]any{
			{"id": "U-1", "name": "Asha", "identityNumber": "111", "role": "client"},
		},
		"requests": []map[string]any{
			{"id": "R-1", "clientId": "U-1", "status": 0, "createdAt": time.Now().Format(time.RFC3339)},
		},
	}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db.json"), raw, 0o644))

	store, err := storage.OpenFileStore(dir)
	require.NoError(t, err)

	// Existing records survive the migration.
	user, err := store.FindUserByID("U-1")
	require.NoError(t, err)
	require.NotNil(t, user)
	req, err := store.FindRequestByID("R-1")
	require.NoError(t, err)
	require.NotNil(t, req)

	// The rewritten document carries the version tag and all collections.
	rewritten, err := os.ReadFile(filepath.Join(dir, "db.json"))
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rewritten, &doc))
	assert.Contains(t, doc, "schemaVersion")
	assert.Contains(t, doc, "complaints")
	assert.Contains(t, doc, "resolvedComplaints")

	var version int
	require.NoError(t, json.Unmarshal(doc["schemaVersion"], &version))
	assert.Equal(t, storage.SchemaVersion, version)
}

// TestFileStore_RejectsNewerSchema refuses documents written by a newer build.
func TestFileStore_RejectsNewerSchema(t *testing.T) {
	dir := t.TempDir()
	raw := []byte(`{"schemaVersion": 99, "users": [], "requests": [], "complaints": [], "resolvedComplaints": []}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db.json"), raw, 0o644))

	_, err := storage.OpenFileStore(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "schema version")
}

// TestFileStore_TimingDocumentLayout verifies the second document keeps one
// collection per lifecycle kind.
func TestFileStore_TimingDocumentLayout(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.OpenFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.AppendTiming(models.TimingRequest, models.TimingRecord{RequestID: "R-1"}))
	require.NoError(t, store.AppendTiming(models.TimingAssignment, models.TimingRecord{RequestID: "R-1"}))
	require.NoError(t, store.AppendTiming(models.TimingResponse, models.TimingRecord{RequestID: "R-1"}))

	raw, err := os.ReadFile(filepath.Join(dir, "timings.json"))
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "request")
	assert.Contains(t, doc, "assignment")
	assert.Contains(t, doc, "response")
}

// TestFileStore_PersistFailureRollsBack verifies a failed document rewrite
// leaves the in-memory state exactly where disk is: no mutation survives in
// memory that is not on disk.
func TestFileStore_PersistFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.OpenFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.AddRequest(newPendingRequest("R-1", "client-1")))
	require.NoError(t, store.AddComplaint(newActiveComplaint("C-1", "R-1")))
	_, err = store.UpdateComplaint("C-1", func(c *models.Complaint) error {
		c.ResolvedByUser = true
		c.ResolvedByAdmin = true
		return nil
	})
	require.NoError(t, err)

	// A directory where db.json lives makes every rewrite fail.
	dbPath := filepath.Join(dir, "db.json")
	require.NoError(t, os.Remove(dbPath))
	require.NoError(t, os.Mkdir(dbPath, 0o755))

	// Update: record keeps its pre-mutation state.
	_, err = store.UpdateRequest("R-1", func(r *models.Request) error {
		r.Status = models.StatusAssigned
		return nil
	})
	require.Error(t, err)
	req, ferr := store.FindRequestByID("R-1")
	require.NoError(t, ferr)
	assert.Equal(t, models.StatusPending, req.Status)

	// Add: the record does not linger in memory.
	require.Error(t, store.AddRequest(newPendingRequest("R-2", "client-1")))
	ghost, _ := store.FindRequestByID("R-2")
	assert.Nil(t, ghost)

	// Archive: the complaint stays active and the archive stays empty.
	_, err = store.ArchiveComplaint("C-1")
	require.Error(t, err)
	active, _ := store.FindComplaintByID("C-1")
	require.NotNil(t, active)
	archived, _ := store.ListArchivedComplaints()
	assert.Empty(t, archived)
}

// TestFileStore_ArchiveComplaint mirrors the memory-store quorum behaviour
// on the persisted document.
func TestFileStore_ArchiveComplaint(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.OpenFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.AddComplaint(newActiveComplaint("C-1", "R-1")))
	_, err = store.UpdateComplaint("C-1", func(c *models.Complaint) error {
		c.ResolvedByAdmin = true
		c.ResolvedByUser = true
		return nil
	})
	require.NoError(t, err)

	arch, err := store.ArchiveComplaint("C-1")
	require.NoError(t, err)
	require.NotNil(t, arch)

	// Reopen: the move is persisted.
	reopened, err := storage.OpenFileStore(dir)
	require.NoError(t, err)
	active, _ := reopened.ListComplaintsBy(storage.AllComplaints())
	assert.Empty(t, active)
	archived, _ := reopened.ListArchivedComplaints()
	assert.Len(t, archived, 1)
	assert.Equal(t, "R-1", archived[0].RequestID)
}
