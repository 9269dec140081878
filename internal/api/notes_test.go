package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"glasstask/internal/models"
)

func TestNoteRoundTrip(t *testing.T) {
	server, database, mailer := newTestServer(t, 600*time.Second)
	token := registerAndLogin(t, server, mailer, "bob", "bob@example.com", "secret123")

	const secret = "my private thought"

	rr := doJSON(t, server, http.MethodPost, "/api/notes", `{"content":"`+secret+`"}`, token)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body=%q", rr.Code, rr.Body.String())
	}
	var created models.Note
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if !created.Encrypted {
		t.Fatal("stored note not marked encrypted")
	}

	// The row must hold ciphertext, never the plaintext.
	var stored string
	if err := database.QueryRow(`SELECT content FROM notes WHERE id = ?`, created.ID).Scan(&stored); err != nil {
		t.Fatalf("reading stored note: %v", err)
	}
	if stored == secret || strings.Contains(stored, secret) {
		t.Fatalf("note stored in plaintext: %q", stored)
	}

	rr = doJSON(t, server, http.MethodGet, "/api/notes", "", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var notes []models.Note
	if err := json.Unmarshal(rr.Body.Bytes(), &notes); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	if notes[0].Content != secret {
		t.Fatalf("content = %q, want %q", notes[0].Content, secret)
	}
	if notes[0].Encrypted {
		t.Fatal("listed note still marked encrypted")
	}

	rr = doJSON(t, server, http.MethodDelete, "/api/notes/"+created.ID, "", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}
	rr = doJSON(t, server, http.MethodGet, "/api/notes", "", token)
	if err := json.Unmarshal(rr.Body.Bytes(), &notes); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(notes) != 0 {
		t.Fatalf("after delete %d notes remain, want 0", len(notes))
	}
}

func TestNoteRequiresContent(t *testing.T) {
	server, _, mailer := newTestServer(t, 600*time.Second)
	token := registerAndLogin(t, server, mailer, "bob", "bob@example.com", "secret123")

	rr := doJSON(t, server, http.MethodPost, "/api/notes", `{}`, token)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUndecryptableNoteReturnedAsIs(t *testing.T) {
	server, database, mailer := newTestServer(t, 600*time.Second)
	token := registerAndLogin(t, server, mailer, "bob", "bob@example.com", "secret123")

	rr := doJSON(t, server, http.MethodPost, "/api/notes", `{"content":"fine"}`, token)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rr.Code)
	}
	var created models.Note
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	// Corrupt the ciphertext behind the handler's back.
	if _, err := database.Exec(`UPDATE notes SET content = 'deadbeef' WHERE id = ?`, created.ID); err != nil {
		t.Fatalf("corrupting note: %v", err)
	}

	rr = doJSON(t, server, http.MethodGet, "/api/notes", "", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var notes []models.Note
	if err := json.Unmarshal(rr.Body.Bytes(), &notes); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	if !notes[0].Encrypted {
		t.Fatal("undecryptable note should stay marked encrypted")
	}
}

func TestNotesAreScopedToOwner(t *testing.T) {
	server, _, mailer := newTestServer(t, 600*time.Second)
	alice := registerAndLogin(t, server, mailer, "alice", "alice@example.com", "secret123")
	mallory := registerAndLogin(t, server, mailer, "mallory", "mallory@example.com", "secret123")

	rr := doJSON(t, server, http.MethodPost, "/api/notes", `{"content":"alice only"}`, alice)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rr.Code)
	}
	var created models.Note
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	rr = doJSON(t, server, http.MethodGet, "/api/notes", "", mallory)
	var notes []models.Note
	if err := json.Unmarshal(rr.Body.Bytes(), &notes); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(notes) != 0 {
		t.Fatalf("other user sees %d notes, want 0", len(notes))
	}

	rr = doJSON(t, server, http.MethodDelete, "/api/notes/"+created.ID, "", mallory)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
