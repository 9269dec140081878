package models

import "time"

const (
	FinanceTypeIncome  = "income"
	FinanceTypeExpense = "expense"
)

type FinanceRecord struct {
	ID        string     `json:"id"`
	UserID    string     `json:"-"`
	Type      string     `json:"type"`
	Amount    float64    `json:"amount"`
	Title     string     `json:"title,omitempty"`
	Category  string     `json:"category,omitempty"`
	Date      *time.Time `json:"date,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type BudgetSummary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}
