package main

import "time"

// User represents a registered user
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Account represents a user's money account (cash, card, savings, ...).
// Balance is a cached value; OpeningBalance is the immutable anchor the
// reconciler folds transactions onto.
type Account struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Name           string    `json:"name"`
	OpeningBalance float64   `json:"opening_balance"`
	Balance        float64   `json:"balance"`
	Currency       string    `json:"currency"`
	Type           string    `json:"type"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Transaction represents a single income or expense posting against an account
type Transaction struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	AccountID   int64     `json:"account_id"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category represents a user-defined transaction category
type Category struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// Budget represents a spending budget for a category
type Budget struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Spent     float64   `json:"spent"`
	Period    string    `json:"period"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FinancialGoal represents a savings goal
type FinancialGoal struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"user_id"`
	Name                string     `json:"name"`
	TargetAmount        float64    `json:"target_amount"`
	Deadline            *time.Time `json:"deadline"`
	MonthlyContribution float64    `json:"monthly_contribution"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ExchangeRate is a stored conversion rate between two currencies
type ExchangeRate struct {
	ID           int64     `json:"id"`
	FromCurrency string    `json:"from_currency"`
	ToCurrency   string    `json:"to_currency"`
	Rate         float64   `json:"rate"`
	CreatedAt    time.Time `json:"created_at"`
}

// CurrencyBalance aggregates transaction totals for one currency
type CurrencyBalance struct {
	Currency string  `json:"currency"`
	Balance  float64 `json:"balance"`
	Income   float64 `json:"income"`
	Expense  float64 `json:"expense"`
}

// TransactionStats contains income/expense totals for a period
type TransactionStats struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Period  string  `json:"period"`
}
