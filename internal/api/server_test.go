package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marcus/dmscreen/internal/models"
	"github.com/marcus/dmscreen/internal/serverdb"
	"github.com/marcus/dmscreen/internal/syncclient"
)

// newTestServer creates a Server backed by a temp database.
func newTestServer(t *testing.T, modCfg func(*Config)) (*Server, *serverdb.ServerDB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "server.db")
	store, err := serverdb.Open(dbPath)
	if err != nil {
		t.Fatalf("open server db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := Config{ListenAddr: ":0", ServerDBPath: dbPath}
	if modCfg != nil {
		modCfg(&cfg)
	}
	srv, err := NewServer(cfg, store)
	if err != nil {
		t.Fatalf("create server: %v", err)
	}
	return srv, store
}

// createTestUser creates a user and API key, returning the id and bearer token.
func createTestUser(t *testing.T, store *serverdb.ServerDB, name string) (string, string) {
	t.Helper()
	user, err := store.CreateUser(name)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, _, err := store.GenerateAPIKey(user.ID, "test")
	if err != nil {
		t.Fatalf("generate api key: %v", err)
	}
	return user.ID, token
}

func doRequest(srv *Server, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error.Code
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	w := doRequest(srv, "GET", "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID")
	}
}

func TestRequestIDReused(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	const id = "7d444840-9dc0-11d1-b245-5ffdce74fad2"

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("X-Request-ID", id)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != id {
		t.Fatalf("request id: got %q", got)
	}

	req = httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	w = httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got == "not-a-uuid" {
		t.Fatal("invalid request id was echoed")
	}
}

func TestAuthErrors(t *testing.T) {
	srv, store := newTestServer(t, nil)
	userID, _ := createTestUser(t, store, "dana")
	_, otherToken := createTestUser(t, store, "eli")
	path := "/v1/users/" + userID + "/state"

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing header", "", http.StatusUnauthorized, ErrCodeUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ErrCodeUnauthorized},
		{"unknown key", "Bearer " + serverdb.APIKeyPrefix + "nope", http.StatusUnauthorized, ErrCodeUnauthorized},
		{"other user's key", "Bearer " + otherToken, http.StatusForbidden, ErrCodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			srv.routes().ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("status: got %d, want %d", w.Code, tt.status)
			}
			if code := errorCode(t, w); code != tt.code {
				t.Fatalf("code: got %q, want %q", code, tt.code)
			}
		})
	}
}

func TestGetMissingDocument(t *testing.T) {
	srv, store := newTestServer(t, nil)
	userID, token := createTestUser(t, store, "dana")

	w := doRequest(srv, "GET", "/v1/users/"+userID+"/state", token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestPutStampsServerTime(t *testing.T) {
	srv, store := newTestServer(t, nil)
	userID, token := createTestUser(t, store, "dana")
	fixed := time.Date(2024, 3, 4, 5, 6, 7, 8, time.UTC)
	srv.now = func() time.Time { return fixed }

	body := []byte(`{"players":[{"name":"Ana","pp":12,"pi":null,"ac":15}],"lastSync":"1999-01-01T00:00:00Z"}`)
	w := doRequest(srv, "PUT", "/v1/users/"+userID+"/state", token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("put: %d %s", w.Code, w.Body.String())
	}
	var put PutStateResponse
	json.NewDecoder(w.Body).Decode(&put)
	if !put.LastSync.Equal(fixed) {
		t.Fatalf("lastSync: got %v", put.LastSync)
	}

	w = doRequest(srv, "GET", "/v1/users/"+userID+"/state", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	var rec models.SyncRecord
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !rec.LastSync.Equal(fixed) {
		t.Fatalf("client-supplied lastSync survived: %v", rec.LastSync)
	}
	if len(rec.Players) != 1 || rec.Players[0].Name != "Ana" || rec.Players[0].PI != nil {
		t.Fatalf("players: %+v", rec.Players)
	}
	if rec.Encounter == nil || rec.SortBy != models.SortInitiative {
		t.Fatalf("document not normalized: %+v", rec.GameState)
	}
}

func TestPutRejectsBadBodies(t *testing.T) {
	srv, store := newTestServer(t, func(c *Config) { c.MaxDocumentBytes = 256 })
	userID, token := createTestUser(t, store, "dana")
	path := "/v1/users/" + userID + "/state"

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed", `{"players":`, http.StatusBadRequest},
		{"array", `[]`, http.StatusBadRequest},
		{"bad sort mode", `{"sortBy":"dexterity"}`, http.StatusBadRequest},
		{"too large", `{"links":[{"name":"` + strings.Repeat("x", 300) + `","url":"https://a"}]}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(srv, "PUT", path, token, []byte(tt.body))
			if w.Code != tt.status {
				t.Fatalf("status: got %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
		})
	}

	if doc, _ := store.GetDocument(userID); doc != nil {
		t.Fatal("rejected body was stored")
	}
}

func TestMetrics(t *testing.T) {
	srv, store := newTestServer(t, nil)
	userID, token := createTestUser(t, store, "dana")
	path := "/v1/users/" + userID + "/state"

	doRequest(srv, "GET", path, token, nil)
	doRequest(srv, "PUT", path, token, []byte(`{}`))
	doRequest(srv, "GET", path, token, nil)

	w := doRequest(srv, "GET", "/metricz", "", nil)
	var snap MetricsSnapshot
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Requests != 4 || snap.ClientErrors != 1 || snap.DocumentReads != 1 || snap.DocumentWrites != 1 || snap.Documents != 1 {
		t.Fatalf("metrics: %+v", snap)
	}
}

func TestClientRoundTrip(t *testing.T) {
	srv, store := newTestServer(t, nil)
	userID, token := createTestUser(t, store, "dana")
	_, otherToken := createTestUser(t, store, "eli")

	httpSrv := httptest.NewServer(srv.routes())
	defer httpSrv.Close()
	ctx := context.Background()

	client := syncclient.New(httpSrv.URL+"/", token, "dev-1")
	if _, err := client.HealthCheck(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}
	me, err := client.Me(ctx)
	if err != nil || me.UserID != userID || me.Name != "dana" {
		t.Fatalf("me: %+v %v", me, err)
	}

	rec, err := client.Get(ctx, userID)
	if err != nil || rec != nil {
		t.Fatalf("empty get: %+v %v", rec, err)
	}

	state := models.DefaultState()
	state.Encounter = []models.Character{{Name: "Orc", HP: 7, MaxHP: 15, AC: models.IntPtr(13)}}
	state.CurrentDay = 9
	stamp, err := client.Set(ctx, userID, state)
	if err != nil {
		t.Fatalf("set: %v", err)
	}

	rec, err = client.Get(ctx, userID)
	if err != nil || rec == nil {
		t.Fatalf("get: %+v %v", rec, err)
	}
	if !rec.LastSync.Equal(stamp) || rec.CurrentDay != 9 || len(rec.Encounter) != 1 || *rec.Encounter[0].AC != 13 {
		t.Fatalf("round trip: %+v", rec)
	}
	if doc, _ := store.GetDocument(userID); doc.DeviceID != "dev-1" {
		t.Fatalf("device id: %q", doc.DeviceID)
	}

	intruder := syncclient.New(httpSrv.URL, otherToken, "dev-2")
	if _, err := intruder.Get(ctx, userID); !errors.Is(err, syncclient.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	anon := syncclient.New(httpSrv.URL, "", "")
	if _, err := anon.Set(ctx, userID, state); !errors.Is(err, syncclient.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
