package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipzone/clipzone/internal/engine"
	"github.com/clipzone/clipzone/internal/logging"
	"github.com/clipzone/clipzone/internal/memstore"
	"github.com/clipzone/clipzone/internal/middleware"
	"github.com/clipzone/clipzone/internal/reporting"
)

func newTestAPI(t *testing.T) (*gin.Engine, *memstore.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetJWTSecret("test-secret")

	store := memstore.New()
	logger := logging.NewNopLogger()
	eng := engine.New(store, store, nil, logger)
	reporter := reporting.New(store, store, nil, logger)

	api := &API{
		accounts: store,
		clips:    store,
		health:   store,
		engine:   eng,
		reporter: reporter,
		tokenTTL: time.Hour,
		logger:   logger,
	}

	return setupRouter(api, nil), store
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func registerAccount(t *testing.T, router *gin.Engine, name, email, role string) (id, token string) {
	t.Helper()

	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	account := body["account"].(map[string]interface{})
	return account["id"].(string), body["token"].(string)
}

func submitTestClip(t *testing.T, router *gin.Engine, clipperToken, creatorID string, views int64) string {
	t.Helper()

	w := doJSON(t, router, "POST", "/api/v1/clips", clipperToken, gin.H{
		"creator_id": creatorID,
		"title":      "Stream highlights",
		"media_ref":  "clips/abc/highlight.mp4",
		"views":      views,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody(t, w)["id"].(string)
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestAPI(t)

	w := doJSON(t, router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRegister(t *testing.T) {
	router, _ := newTestAPI(t)

	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", gin.H{
		"name":     "Casey",
		"email":    "Casey@Example.com",
		"password": "password123",
		"role":     "creator",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])

	account := body["account"].(map[string]interface{})
	assert.Equal(t, "creator", account["role"])
	assert.Equal(t, "casey@example.com", account["email"])
	assert.Equal(t, 5.0, account["cpm"])
	assert.NotContains(t, w.Body.String(), "password123")
}

func TestRegisterDefaultsToClipper(t *testing.T) {
	router, _ := newTestAPI(t)

	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", gin.H{
		"name":     "Kim",
		"email":    "kim@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	account := decodeBody(t, w)["account"].(map[string]interface{})
	assert.Equal(t, "clipper", account["role"])
	assert.Equal(t, 0.0, account["cpm"])
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	router, _ := newTestAPI(t)

	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", gin.H{
		"name":     "Eve",
		"email":    "eve@example.com",
		"password": "password123",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _ := newTestAPI(t)
	registerAccount(t, router, "First", "dup@example.com", "clipper")

	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", gin.H{
		"name":     "Second",
		"email":    "dup@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin(t *testing.T) {
	router, _ := newTestAPI(t)
	registerAccount(t, router, "Casey", "casey@example.com", "creator")

	w := doJSON(t, router, "POST", "/api/v1/auth/login", "", gin.H{
		"email":    "casey@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["token"])

	w = doJSON(t, router, "POST", "/api/v1/auth/login", "", gin.H{
		"email":    "casey@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, "POST", "/api/v1/auth/login", "", gin.H{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	router, _ := newTestAPI(t)
	id, token := registerAccount(t, router, "Casey", "casey@example.com", "creator")

	w := doJSON(t, router, "GET", "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, id, body["id"])
	assert.Equal(t, "casey@example.com", body["email"])

	w = doJSON(t, router, "GET", "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitClip(t *testing.T) {
	router, _ := newTestAPI(t)
	creatorID, _ := registerAccount(t, router, "Creator", "creator@example.com", "creator")
	_, clipperToken := registerAccount(t, router, "Clipper", "clipper@example.com", "clipper")

	w := doJSON(t, router, "POST", "/api/v1/clips", clipperToken, gin.H{
		"creator_id": creatorID,
		"title":      "Stream highlights",
		"media_ref":  "clips/abc/highlight.mp4",
		"views":      2000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, 5.0, body["cpm_snapshot"])
	assert.Equal(t, 10.0, body["earnings"])
}

func TestSubmitClipRequiresClipperRole(t *testing.T) {
	router, _ := newTestAPI(t)
	creatorID, creatorToken := registerAccount(t, router, "Creator", "creator@example.com", "creator")

	w := doJSON(t, router, "POST", "/api/v1/clips", creatorToken, gin.H{
		"creator_id": creatorID,
		"title":      "Self clip",
		"media_ref":  "clips/abc/clip.mp4",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmitClipUnknownCreator(t *testing.T) {
	router, _ := newTestAPI(t)
	_, clipperToken := registerAccount(t, router, "Clipper", "clipper@example.com", "clipper")

	w := doJSON(t, router, "POST", "/api/v1/clips", clipperToken, gin.H{
		"creator_id": "missing",
		"title":      "Clip",
		"media_ref":  "clips/abc/clip.mp4",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCreators(t *testing.T) {
	router, _ := newTestAPI(t)
	registerAccount(t, router, "Beta", "beta@example.com", "creator")
	registerAccount(t, router, "Alpha", "alpha@example.com", "creator")
	_, clipperToken := registerAccount(t, router, "Clipper", "clipper@example.com", "clipper")

	w := doJSON(t, router, "GET", "/api/v1/clips/creators", clipperToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	creators := decodeBody(t, w)["creators"].([]interface{})
	require.Len(t, creators, 2)
	assert.Equal(t, "Alpha", creators[0].(map[string]interface{})["name"])
	assert.Equal(t, "Beta", creators[1].(map[string]interface{})["name"])
}

func TestModerateClipApproval(t *testing.T) {
	router, store := newTestAPI(t)
	creatorID, creatorToken := registerAccount(t, router, "Creator", "creator@example.com", "creator")
	clipperID, clipperToken := registerAccount(t, router, "Clipper", "clipper@example.com", "clipper")

	clipID := submitTestClip(t, router, clipperToken, creatorID, 0)

	w := doJSON(t, router, "PATCH", fmt.Sprintf("/api/v1/clips/%s/status", clipID), creatorToken, gin.H{
		"status": "approved",
		"views":  10000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "approved", body["status"])
	assert.Equal(t, 50.0, body["earnings"])

	account, err := store.GetAccount(context.Background(), clipperID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, account.Balance)

	// Re-approving with more views must not credit again
	w = doJSON(t, router, "PATCH", fmt.Sprintf("/api/v1/clips/%s/status", clipID), creatorToken, gin.H{
		"status": "approved",
		"views":  99999,
	})
	require.Equal(t, http.StatusOK, w.Code)

	account, err = store.GetAccount(context.Background(), clipperID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, account.Balance)
}

func TestModerateClipWrongCreator(t *testing.T) {
	router, _ := newTestAPI(t)
	creatorID, _ := registerAccount(t, router, "Creator", "creator@example.com", "creator")
	_, otherToken := registerAccount(t, router, "Other", "other@example.com", "creator")
	_, clipperToken := registerAccount(t, router, "Clipper", "clipper@example.com", "clipper")

	clipID := submitTestClip(t, router, clipperToken, creatorID, 100)

	w := doJSON(t, router, "PATCH", fmt.Sprintf("/api/v1/clips/%s/status", clipID), otherToken, gin.H{
		"status": "approved",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestModerateClipValidation(t *testing.T) {
	router, _ := newTestAPI(t)
	creatorID, creatorToken := registerAccount(t, router, "Creator", "creator@example.com", "creator")
	_, clipperToken := registerAccount(t, router, "Clipper", "clipper@example.com", "clipper")

	clipID := submitTestClip(t, router, clipperToken, creatorID, 100)

	w := doJSON(t, router, "PATCH", fmt.Sprintf("/api/v1/clips/%s/status", clipID), creatorToken, gin.H{
		"status": "published",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "PATCH", "/api/v1/clips/missing/status", creatorToken, gin.H{
		"status": "approved",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClipperDashboard(t *testing.T) {
	router, _ := newTestAPI(t)
	creatorID, creatorToken := registerAccount(t, router, "Creator", "creator@example.com", "creator")
	_, clipperToken := registerAccount(t, router, "Clipper", "clipper@example.com", "clipper")

	clipID := submitTestClip(t, router, clipperToken, creatorID, 10000)
	w := doJSON(t, router, "PATCH", fmt.Sprintf("/api/v1/clips/%s/status", clipID), creatorToken, gin.H{
		"status": "approved",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/v1/clips/clipper/dashboard", clipperToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, 1.0, summary["total_clips"])
	assert.Equal(t, 1.0, summary["approved_clips"])
	assert.Equal(t, 50.0, summary["balance"])
	assert.Len(t, body["clips"].([]interface{}), 1)
}

func TestCreatorDashboard(t *testing.T) {
	router, _ := newTestAPI(t)
	creatorID, creatorToken := registerAccount(t, router, "Creator", "creator@example.com", "creator")
	_, clipperToken := registerAccount(t, router, "Clipper", "clipper@example.com", "clipper")

	approved := submitTestClip(t, router, clipperToken, creatorID, 10000)
	submitTestClip(t, router, clipperToken, creatorID, 500)

	w := doJSON(t, router, "PATCH", fmt.Sprintf("/api/v1/clips/%s/status", approved), creatorToken, gin.H{
		"status": "approved",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/v1/creator/dashboard", creatorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, 2.0, summary["total_clips"])
	assert.Equal(t, 1.0, summary["approved_clips"])
	assert.Equal(t, 1.0, summary["pending_clips"])
	assert.Equal(t, 5.0, summary["current_cpm"])

	topClippers := body["top_clippers"].([]interface{})
	require.Len(t, topClippers, 1)
	assert.Equal(t, "Clipper", topClippers[0].(map[string]interface{})["name"])

	// Clippers cannot reach the creator dashboard
	w = doJSON(t, router, "GET", "/api/v1/creator/dashboard", clipperToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSetCPM(t *testing.T) {
	router, _ := newTestAPI(t)
	_, creatorToken := registerAccount(t, router, "Creator", "creator@example.com", "creator")

	w := doJSON(t, router, "POST", "/api/v1/creator/cpm", creatorToken, gin.H{"cpm": 8.5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 8.5, decodeBody(t, w)["cpm"])

	w = doJSON(t, router, "POST", "/api/v1/creator/cpm", creatorToken, gin.H{"cpm": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router, _ := newTestAPI(t)

	for _, route := range []struct{ method, path string }{
		{"POST", "/api/v1/clips"},
		{"GET", "/api/v1/clips/creators"},
		{"GET", "/api/v1/clips/clipper/dashboard"},
		{"GET", "/api/v1/creator/dashboard"},
		{"POST", "/api/v1/creator/cpm"},
	} {
		w := doJSON(t, router, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}
