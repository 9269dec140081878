package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"glasstask/internal/models"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new account. A duplicate email surfaces as ErrDuplicate
// from the unique constraint, which is the single arbiter when two
// registrations race on the same address.
func (r *UserRepository) Create(username, email, passwordHash string, avatarURL *string) (*models.User, error) {
	id, err := GenerateID("usr")
	if err != nil {
		return nil, fmt.Errorf("generating user ID: %w", err)
	}
	now := time.Now().UTC()

	_, err = r.db.Exec(
		`INSERT INTO users (id, username, email, password_hash, avatar_url, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, username, email, passwordHash, avatarURL, now,
	)
	if err != nil {
		if IsUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &models.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		AvatarURL:    avatarURL,
		CreatedAt:    now,
	}, nil
}

func (r *UserRepository) FindByID(id string) (*models.User, error) {
	return r.findOne(`SELECT id, username, email, password_hash, avatar_url, created_at, updated_at FROM users WHERE id = ?`, id)
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	return r.findOne(`SELECT id, username, email, password_hash, avatar_url, created_at, updated_at FROM users WHERE email = ?`, email)
}

func (r *UserRepository) UpdateProfile(id string, username *string, avatarURL *string) error {
	if username == nil && avatarURL == nil {
		return nil
	}

	query := `UPDATE users SET updated_at = ?`
	args := []any{time.Now().UTC()}
	if username != nil {
		query += `, username = ?`
		args = append(args, *username)
	}
	if avatarURL != nil {
		query += `, avatar_url = ?`
		args = append(args, *avatarURL)
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *UserRepository) findOne(query string, args ...any) (*models.User, error) {
	var u models.User
	var avatarURL sql.NullString
	var updatedAt sql.NullTime

	err := r.db.QueryRow(query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&avatarURL,
		&u.CreatedAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	if avatarURL.Valid {
		u.AvatarURL = &avatarURL.String
	}
	u.UpdatedAt = nullTimeToPtr(updatedAt)

	return &u, nil
}
