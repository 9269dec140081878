package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"glasstask/internal/models"
)

type FinanceRepository struct {
	db *DB
}

func NewFinanceRepository(db *DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

type FinanceInput struct {
	Type     string
	Amount   float64
	Title    string
	Category string
	Date     *time.Time
}

func (r *FinanceRepository) Create(userID string, in FinanceInput) (*models.FinanceRecord, error) {
	id, err := GenerateID("fin")
	if err != nil {
		return nil, fmt.Errorf("generating finance record ID: %w", err)
	}
	now := time.Now().UTC()

	_, err = r.db.Exec(
		`INSERT INTO finance_records (id, user_id, type, amount, title, category, date, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, in.Type, in.Amount, in.Title, in.Category, ptrToNullTime(in.Date), now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating finance record: %w", err)
	}

	return &models.FinanceRecord{
		ID:        id,
		UserID:    userID,
		Type:      in.Type,
		Amount:    in.Amount,
		Title:     in.Title,
		Category:  in.Category,
		Date:      in.Date,
		CreatedAt: now,
	}, nil
}

func (r *FinanceRepository) FindAllByUser(userID string) ([]*models.FinanceRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, type, amount, title, category, date, created_at
         FROM finance_records WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying finance records: %w", err)
	}
	defer rows.Close()

	records := []*models.FinanceRecord{}
	for rows.Next() {
		rec, err := scanFinanceRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *FinanceRepository) FindByID(userID, id string) (*models.FinanceRecord, error) {
	row := r.db.QueryRow(
		`SELECT id, user_id, type, amount, title, category, date, created_at
         FROM finance_records WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	rec, err := scanFinanceRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (r *FinanceRepository) Update(userID, id string, in FinanceInput) (*models.FinanceRecord, error) {
	result, err := r.db.Exec(
		`UPDATE finance_records SET type = ?, amount = ?, title = ?, category = ?, date = ?
         WHERE id = ? AND user_id = ?`,
		in.Type, in.Amount, in.Title, in.Category, ptrToNullTime(in.Date), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating finance record: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return nil, err
	}

	return r.FindByID(userID, id)
}

func (r *FinanceRepository) Delete(userID, id string) error {
	result, err := r.db.Exec(`DELETE FROM finance_records WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting finance record: %w", err)
	}
	return checkRowsAffected(result)
}

// Summary aggregates income and expense totals in the database rather than
// loading every record into memory.
func (r *FinanceRepository) Summary(userID string) (*models.BudgetSummary, error) {
	var income, expense sql.NullFloat64
	err := r.db.QueryRow(
		`SELECT
            SUM(CASE WHEN type = ? THEN amount ELSE 0 END),
            SUM(CASE WHEN type = ? THEN amount ELSE 0 END)
         FROM finance_records WHERE user_id = ?`,
		models.FinanceTypeIncome, models.FinanceTypeExpense, userID,
	).Scan(&income, &expense)
	if err != nil {
		return nil, fmt.Errorf("summarizing finance records: %w", err)
	}

	s := &models.BudgetSummary{
		Income:  income.Float64,
		Expense: expense.Float64,
	}
	s.Balance = s.Income - s.Expense
	return s, nil
}

func scanFinanceRecord(row rowScanner) (*models.FinanceRecord, error) {
	var rec models.FinanceRecord
	var date sql.NullTime

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Type,
		&rec.Amount,
		&rec.Title,
		&rec.Category,
		&date,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning finance record: %w", err)
	}

	rec.Date = nullTimeToPtr(date)

	return &rec, nil
}
