package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"glasstask/internal/crypt"
	"glasstask/internal/db"
	"glasstask/internal/models"
)

type NoteHandler struct {
	notes *db.NoteRepository
	box   *crypt.Box
}

func NewNoteHandler(notes *db.NoteRepository, box *crypt.Box) *NoteHandler {
	return &NoteHandler{notes: notes, box: box}
}

type NoteRequest struct {
	Content string `json:"content" validate:"required,max=65536"`
}

// GET /api/notes
//
// Content is decrypted before it leaves the server. A note whose ciphertext
// no longer opens (wrong key, corruption) is returned as-is with
// encrypted=true instead of failing the whole list.
func (h *NoteHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.FindAllByUser(GetUserID(r))
	if err != nil {
		slog.Error("error fetching notes", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	out := make([]*models.Note, 0, len(notes))
	for _, n := range notes {
		plaintext, err := h.box.Open(n.Content)
		if err != nil {
			slog.Warn("note content did not decrypt", "note_id", n.ID, "request_id", getRequestID(r))
			out = append(out, n)
			continue
		}
		out = append(out, &models.Note{
			ID:        n.ID,
			Content:   plaintext,
			Encrypted: false,
			CreatedAt: n.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

// POST /api/notes
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	sealed, err := h.box.Seal(req.Content)
	if err != nil {
		slog.Error("error encrypting note", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	note, err := h.notes.Create(GetUserID(r), sealed)
	if err != nil {
		slog.Error("error creating note", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

// DELETE /api/notes/{id}
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.notes.Delete(GetUserID(r), chi.URLParam(r, "id"))
	if errors.Is(err, db.ErrNotFound) {
		notFound(w, "Note not found")
		return
	}
	if err != nil {
		slog.Error("error deleting note", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Note deleted"})
}
