package models

import "time"

// Note content is stored encrypted; the API layer decrypts before returning it.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Content   string    `json:"content"`
	Encrypted bool      `json:"encrypted"`
	CreatedAt time.Time `json:"createdAt"`
}
