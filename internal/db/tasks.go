package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"glasstask/internal/models"
)

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskInput carries the caller-editable task fields.
type TaskInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	DueDate     *time.Time
	Completed   bool
}

func (r *TaskRepository) Create(userID string, in TaskInput) (*models.Task, error) {
	id, err := GenerateID("tsk")
	if err != nil {
		return nil, fmt.Errorf("generating task ID: %w", err)
	}
	now := time.Now().UTC()

	_, err = r.db.Exec(
		`INSERT INTO tasks (id, user_id, title, description, category, priority, due_date, completed, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, in.Title, in.Description, in.Category, in.Priority, ptrToNullTime(in.DueDate), in.Completed, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	return &models.Task{
		ID:          id,
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Completed:   in.Completed,
		CreatedAt:   now,
	}, nil
}

func (r *TaskRepository) FindAllByUser(userID string) ([]*models.Task, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, title, description, category, priority, due_date, completed, created_at, updated_at
         FROM tasks WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func (r *TaskRepository) FindByID(userID, id string) (*models.Task, error) {
	row := r.db.QueryRow(
		`SELECT id, user_id, title, description, category, priority, due_date, completed, created_at, updated_at
         FROM tasks WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// Update replaces the editable fields of the user's task and returns the
// updated row. Ownership is enforced in the WHERE clause.
func (r *TaskRepository) Update(userID, id string, in TaskInput) (*models.Task, error) {
	result, err := r.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, category = ?, priority = ?, due_date = ?, completed = ?, updated_at = ?
         WHERE id = ? AND user_id = ?`,
		in.Title, in.Description, in.Category, in.Priority, ptrToNullTime(in.DueDate), in.Completed, time.Now().UTC(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return nil, err
	}

	return r.FindByID(userID, id)
}

func (r *TaskRepository) Delete(userID, id string) error {
	result, err := r.db.Exec(`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *TaskRepository) DeleteAllByUser(userID string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM tasks WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("erasing tasks: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	var dueDate, updatedAt sql.NullTime

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Category,
		&t.Priority,
		&dueDate,
		&t.Completed,
		&t.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	t.DueDate = nullTimeToPtr(dueDate)
	t.UpdatedAt = nullTimeToPtr(updatedAt)

	return &t, nil
}
