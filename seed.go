package main

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Seed a demo user with accounts, transactions, budgets and a goal for
// presentations. Idempotent: will only run if the demo user is absent.
func seedDemoData(db *sql.DB) error {
	const demoEmail = "demo@spendy.local"

	var exists bool
	if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, demoEmail).Scan(&exists); err != nil {
		return fmt.Errorf("checking demo user: %w", err)
	}
	if exists {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var userID int64
	if err := tx.QueryRow(
		`INSERT INTO users (email, full_name, hashed_password) VALUES ($1, 'Demo User', $2) RETURNING id`,
		demoEmail, string(hashed),
	).Scan(&userID); err != nil {
		return fmt.Errorf("seeding demo user: %w", err)
	}

	var cardID, cashID int64
	if err := tx.QueryRow(
		`INSERT INTO accounts (user_id, name, opening_balance, balance, currency, type)
		 VALUES ($1, 'Main Card', 1200, 1200, 'USD', 'card') RETURNING id`,
		userID,
	).Scan(&cardID); err != nil {
		return fmt.Errorf("seeding demo accounts: %w", err)
	}
	if err := tx.QueryRow(
		`INSERT INTO accounts (user_id, name, opening_balance, balance, currency, type)
		 VALUES ($1, 'Wallet', 15000, 15000, 'RUB', 'cash') RETURNING id`,
		userID,
	).Scan(&cashID); err != nil {
		return fmt.Errorf("seeding demo accounts: %w", err)
	}

	// A handful of income/expense demo transactions over the last ~30 days
	demoTx := `
	INSERT INTO transactions (user_id, account_id, amount, type, category, description, date) VALUES
	($1, $2, 3200.00, 'income', 'Salary', 'Monthly payroll', CURRENT_TIMESTAMP - INTERVAL '28 days'),
	($1, $2, 850.00, 'income', 'Freelance', 'Landing page project', CURRENT_TIMESTAMP - INTERVAL '25 days'),
	($1, $2, 1500.00, 'expense', 'Rent', 'Apartment', CURRENT_TIMESTAMP - INTERVAL '24 days'),
	($1, $2, 120.45, 'expense', 'Utilities', 'Electricity', CURRENT_TIMESTAMP - INTERVAL '22 days'),
	($1, $2, 96.72, 'expense', 'Groceries', NULL, CURRENT_TIMESTAMP - INTERVAL '20 days'),
	($1, $2, 28.50, 'expense', 'Entertainment', 'Movie night', CURRENT_TIMESTAMP - INTERVAL '16 days'),
	($1, $3, 2500.00, 'expense', 'Groceries', NULL, CURRENT_TIMESTAMP - INTERVAL '14 days'),
	($1, $3, 1200.00, 'expense', 'Transport', 'Metro card', CURRENT_TIMESTAMP - INTERVAL '10 days'),
	($1, $3, 5000.00, 'income', 'Freelance', NULL, CURRENT_TIMESTAMP - INTERVAL '6 days'),
	($1, $2, 54.80, 'expense', 'Entertainment', 'Dinner out', CURRENT_TIMESTAMP - INTERVAL '1 days')
	`
	if _, err := tx.Exec(demoTx, userID, cardID, cashID); err != nil {
		return fmt.Errorf("seeding demo transactions: %w", err)
	}

	// Bring cached balances in line with the seeded transaction set
	reconcile := `
	UPDATE accounts SET balance = opening_balance + COALESCE((
		SELECT SUM(CASE WHEN t.type = 'income' THEN t.amount ELSE -t.amount END)
		FROM transactions t WHERE t.account_id = accounts.id
	), 0)
	WHERE user_id = $1
	`
	if _, err := tx.Exec(reconcile, userID); err != nil {
		return fmt.Errorf("reconciling seeded balances: %w", err)
	}

	demoCategories := `
	INSERT INTO categories (user_id, name, color, type) VALUES
	($1, 'Groceries', '#e74c3c', 'expense'),
	($1, 'Rent', '#e67e22', 'expense'),
	($1, 'Utilities', '#f39c12', 'expense'),
	($1, 'Transport', '#3498db', 'expense'),
	($1, 'Entertainment', '#9b59b6', 'expense'),
	($1, 'Salary', '#27ae60', 'income'),
	($1, 'Freelance', '#16a085', 'income')
	`
	if _, err := tx.Exec(demoCategories, userID); err != nil {
		return fmt.Errorf("seeding demo categories: %w", err)
	}

	demoBudgets := `
	INSERT INTO budgets (user_id, category, amount, period) VALUES
	($1, 'Groceries', 400.00, 'month'),
	($1, 'Entertainment', 200.00, 'month'),
	($1, 'Transport', 150.00, 'month')
	`
	if _, err := tx.Exec(demoBudgets, userID); err != nil {
		return fmt.Errorf("seeding demo budgets: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO financial_goals (user_id, name, target_amount, monthly_contribution)
		 VALUES ($1, 'Vacation fund', 3000.00, 250.00)`,
		userID,
	); err != nil {
		return fmt.Errorf("seeding demo goal: %w", err)
	}

	return tx.Commit()
}
