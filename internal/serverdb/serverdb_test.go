package serverdb

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *ServerDB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenSetsVersion(t *testing.T) {
	db := newTestDB(t)
	if v := db.getSchemaVersion(); v != ServerSchemaVersion {
		t.Fatalf("version: got %d, want %d", v, ServerSchemaVersion)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestMigrateFromV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.db")
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	v1 := `
CREATE TABLE users (id TEXT PRIMARY KEY, name TEXT NOT NULL, created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP);
CREATE TABLE documents (user_id TEXT PRIMARY KEY, data TEXT NOT NULL, last_sync TEXT NOT NULL);
CREATE TABLE schema_info (key TEXT PRIMARY KEY, value TEXT NOT NULL);
INSERT INTO schema_info (key, value) VALUES ('version', '1');
INSERT INTO users (id, name) VALUES ('u_old', 'old');
INSERT INTO documents (user_id, data, last_sync) VALUES ('u_old', '{}', '2024-01-02T03:04:05Z');
`
	if _, err := conn.Exec(v1); err != nil {
		t.Fatal(err)
	}
	conn.Close()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	doc, err := db.GetDocument("u_old")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc == nil || doc.DeviceID != "" || string(doc.Data) != "{}" {
		t.Fatalf("migrated document: %+v", doc)
	}
}

func TestUsers(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.CreateUser("  "); err == nil {
		t.Fatal("expected error for blank name")
	}
	u, err := db.CreateUser("Dana")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(u.ID, "u_") || len(u.ID) != 18 {
		t.Fatalf("id: %q", u.ID)
	}

	got, err := db.GetUserByID(u.ID)
	if err != nil || got == nil || got.Name != "Dana" {
		t.Fatalf("get: %+v %v", got, err)
	}
	missing, err := db.GetUserByID("u_nope")
	if err != nil || missing != nil {
		t.Fatalf("missing: %+v %v", missing, err)
	}

	db.CreateUser("Eli")
	users, err := db.ListUsers()
	if err != nil || len(users) != 2 {
		t.Fatalf("list: %d %v", len(users), err)
	}
}

func TestAPIKeys(t *testing.T) {
	db := newTestDB(t)
	u, _ := db.CreateUser("Dana")

	if _, _, err := db.GenerateAPIKey("u_missing", "x"); err == nil {
		t.Fatal("expected error for unknown user")
	}

	plain, ak, err := db.GenerateAPIKey(u.ID, "laptop")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(plain, APIKeyPrefix) || len(plain) != len(APIKeyPrefix)+keyLength {
		t.Fatalf("plaintext: %q", plain)
	}
	if ak.KeyPrefix != plain[len(APIKeyPrefix):len(APIKeyPrefix)+8] {
		t.Fatalf("prefix: %q", ak.KeyPrefix)
	}

	gotKey, gotUser, err := db.VerifyAPIKey(plain)
	if err != nil || gotKey == nil || gotUser.ID != u.ID {
		t.Fatalf("verify: %+v %+v %v", gotKey, gotUser, err)
	}
	if gotKey.LastUsedAt == nil {
		t.Fatal("last used not set")
	}

	k, usr, err := db.VerifyAPIKey(APIKeyPrefix + "wrong")
	if err != nil || k != nil || usr != nil {
		t.Fatalf("wrong key: %+v %+v %v", k, usr, err)
	}

	keys, _ := db.ListAPIKeys(u.ID)
	if len(keys) != 1 {
		t.Fatalf("list: %d", len(keys))
	}

	if err := db.RevokeAPIKey(ak.ID, "u_other"); err == nil {
		t.Fatal("revoke by non-owner should fail")
	}
	if err := db.RevokeAPIKey(ak.ID, u.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if k, _, _ := db.VerifyAPIKey(plain); k != nil {
		t.Fatal("revoked key still verifies")
	}
}

func TestDocuments(t *testing.T) {
	db := newTestDB(t)
	u, _ := db.CreateUser("Dana")

	doc, err := db.GetDocument(u.ID)
	if err != nil || doc != nil {
		t.Fatalf("empty: %+v %v", doc, err)
	}

	zone := time.FixedZone("x", 3600)
	first := time.Date(2024, 5, 1, 12, 0, 0, 123456789, zone)
	stamp, err := db.PutDocument(u.ID, []byte(`{"currentDay":1}`), "dev-a", first)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if stamp.Location() != time.UTC || !stamp.Equal(first) {
		t.Fatalf("stamp: %v", stamp)
	}

	second := first.Add(time.Minute)
	if _, err := db.PutDocument(u.ID, []byte(`{"currentDay":2}`), "dev-b", second); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	doc, err = db.GetDocument(u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(doc.Data) != `{"currentDay":2}` || doc.DeviceID != "dev-b" || !doc.LastSync.Equal(second) {
		t.Fatalf("doc: %+v", doc)
	}

	if n, _ := db.CountDocuments(); n != 1 {
		t.Fatalf("count: %d", n)
	}
	if err := db.DeleteDocument(u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if doc, _ := db.GetDocument(u.ID); doc != nil {
		t.Fatal("document survived delete")
	}
}
