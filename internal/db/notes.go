package db

import (
	"fmt"
	"time"

	"glasstask/internal/models"
)

type NoteRepository struct {
	db *DB
}

func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create stores a note. Content arrives already sealed by the API layer;
// this repository never sees plaintext.
func (r *NoteRepository) Create(userID, content string) (*models.Note, error) {
	id, err := GenerateID("nte")
	if err != nil {
		return nil, fmt.Errorf("generating note ID: %w", err)
	}
	now := time.Now().UTC()

	_, err = r.db.Exec(
		`INSERT INTO notes (id, user_id, content, encrypted, created_at) VALUES (?, ?, ?, 1, ?)`,
		id, userID, content, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}

	return &models.Note{
		ID:        id,
		UserID:    userID,
		Content:   content,
		Encrypted: true,
		CreatedAt: now,
	}, nil
}

func (r *NoteRepository) FindAllByUser(userID string) ([]*models.Note, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, content, encrypted, created_at FROM notes WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	notes := []*models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.Encrypted, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, &n)
	}

	return notes, rows.Err()
}

func (r *NoteRepository) Delete(userID, id string) error {
	result, err := r.db.Exec(`DELETE FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return checkRowsAffected(result)
}
