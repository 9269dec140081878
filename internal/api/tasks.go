package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"glasstask/internal/db"
)

type TaskHandler struct {
	tasks *db.TaskRepository
}

func NewTaskHandler(tasks *db.TaskRepository) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type TaskRequest struct {
	Title       string     `json:"title" validate:"required,max=256"`
	Description string     `json:"description" validate:"max=4096"`
	Category    string     `json:"category" validate:"max=64"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed"`
}

func (req *TaskRequest) toInput() db.TaskInput {
	return db.TaskInput{
		Title:       sanitizeText(req.Title),
		Description: sanitizeText(req.Description),
		Category:    sanitizeText(req.Category),
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
	}
}

// GET /api/tasks
func (h *TaskHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.FindAllByUser(GetUserID(r))
	if err != nil {
		slog.Error("error fetching tasks", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	in := req.toInput()
	if in.Title == "" {
		badRequest(w, "title is required")
		return
	}

	task, err := h.tasks.Create(GetUserID(r), in)
	if err != nil {
		slog.Error("error creating task", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	in := req.toInput()
	if in.Title == "" {
		badRequest(w, "title is required")
		return
	}

	task, err := h.tasks.Update(GetUserID(r), chi.URLParam(r, "id"), in)
	if errors.Is(err, db.ErrNotFound) {
		notFound(w, "Task not found")
		return
	}
	if err != nil {
		slog.Error("error updating task", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.tasks.Delete(GetUserID(r), chi.URLParam(r, "id"))
	if errors.Is(err, db.ErrNotFound) {
		notFound(w, "Task not found")
		return
	}
	if err != nil {
		slog.Error("error deleting task", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Task deleted"})
}

// DELETE /api/tasks/erase/all
func (h *TaskHandler) EraseAll(w http.ResponseWriter, r *http.Request) {
	if _, err := h.tasks.DeleteAllByUser(GetUserID(r)); err != nil {
		slog.Error("error erasing tasks", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "All tasks erased"})
}
