package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"glasstask/internal/db"
)

type FinanceHandler struct {
	finance *db.FinanceRepository
}

func NewFinanceHandler(finance *db.FinanceRepository) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

type FinanceRequest struct {
	Type     string     `json:"type" validate:"required,oneof=income expense"`
	Amount   float64    `json:"amount" validate:"required,gt=0"`
	Title    string     `json:"title" validate:"max=256"`
	Category string     `json:"category" validate:"max=64"`
	Date     *time.Time `json:"date"`
}

func (req *FinanceRequest) toInput() db.FinanceInput {
	return db.FinanceInput{
		Type:     req.Type,
		Amount:   req.Amount,
		Title:    sanitizeText(req.Title),
		Category: sanitizeText(req.Category),
		Date:     req.Date,
	}
}

// GET /api/finance
func (h *FinanceHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.finance.FindAllByUser(GetUserID(r))
	if err != nil {
		slog.Error("error fetching finance records", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// POST /api/finance
func (h *FinanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req FinanceRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	record, err := h.finance.Create(GetUserID(r), req.toInput())
	if err != nil {
		slog.Error("error creating finance record", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// PUT /api/finance/{id}
func (h *FinanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req FinanceRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	record, err := h.finance.Update(GetUserID(r), chi.URLParam(r, "id"), req.toInput())
	if errors.Is(err, db.ErrNotFound) {
		notFound(w, "Finance record not found")
		return
	}
	if err != nil {
		slog.Error("error updating finance record", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// DELETE /api/finance/{id}
func (h *FinanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.finance.Delete(GetUserID(r), chi.URLParam(r, "id"))
	if errors.Is(err, db.ErrNotFound) {
		notFound(w, "Finance record not found")
		return
	}
	if err != nil {
		slog.Error("error deleting finance record", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Finance record deleted"})
}

// GET /api/finance/budget/summary
func (h *FinanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.finance.Summary(GetUserID(r))
	if err != nil {
		slog.Error("error summarizing finance records", "error", err, "request_id", getRequestID(r))
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
