package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtigo/backend/internal/api/handler"
	"rtigo/backend/internal/complaint"
	"rtigo/backend/internal/content"
	"rtigo/backend/internal/ledger"
	"rtigo/backend/internal/lifecycle"
	"rtigo/backend/internal/storage"
)

// stubGateway accepts every call; the auth tests never reach the ledger.
type stubGateway struct{}

func (stubGateway) Submit(ctx context.Context, call ledger.Call) (*ledger.Receipt, error) {
	return &ledger.Receipt{TxHash: "0x0", RequestID: "R-stub"}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := storage.NewMemoryStore()
	blobs := content.NewMemoryStore()
	engine := lifecycle.NewEngine(store, blobs, stubGateway{})
	complaints := complaint.NewService(store, blobs)
	h := handler.NewHandler(store, engine, complaints, blobs, []byte("test-secret"))
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

// registerAndLogin drives the full credential flow and returns a bearer token.
func registerAndLogin(t *testing.T, r *gin.Engine, name, identity, role string) string {
	t.Helper()
	w, out := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
		"name": name, "identityNumber": identity, "role": role,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	userID, _ := out["id"].(string)
	signinKey, _ := out["signinKey"].(string)
	require.NotEmpty(t, userID)
	require.NotEmpty(t, signinKey)

	w, out = doJSON(t, r, http.MethodPost, "/login", "", gin.H{
		"userId": userID, "signinKey": signinKey,
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := out["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterAndLogin(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "Іван", "ID-100", "client")
	assert.NotEmpty(t, token)
}

func TestRegister_Validation(t *testing.T) {
	r := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/register", "", gin.H{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/register", "", gin.H{
		"name": "X", "identityNumber": "ID-1", "role": "tsar",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_DuplicateIdentity(t *testing.T) {
	r := newTestRouter(t)
	registerAndLogin(t, r, "Перший", "ID-1", "client")

	w, _ := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
		"name": "Другий", "identityNumber": "ID-1", "role": "client",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_WrongKey(t *testing.T) {
	r := newTestRouter(t)
	w, out := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
		"name": "X", "identityNumber": "ID-1", "role": "client",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	userID := out["id"].(string)

	w, _ = doJSON(t, r, http.MethodPost, "/login", "", gin.H{
		"userId": userID, "signinKey": "not-the-key",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := newTestRouter(t)
	clientToken := registerAndLogin(t, r, "Клієнт", "ID-1", "client")

	// No token at all.
	w, _ := doJSON(t, r, http.MethodGet, "/client/requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token.
	w, _ = doJSON(t, r, http.MethodGet, "/client/requests", "nonsense", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Right role.
	w, _ = doJSON(t, r, http.MethodGet, "/client/requests", clientToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Client token on an admin route.
	w, _ = doJSON(t, r, http.MethodGet, "/admin/requests", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
