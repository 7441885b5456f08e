package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ledgerStore is the persistence surface the balance reconciler needs. Lookup
// methods return (nil, nil) when the row does not exist or is not owned by the
// given user.
type ledgerStore interface {
	Account(ctx context.Context, userID, accountID int64) (*Account, error)
	Accounts(ctx context.Context, userID int64) ([]Account, error)
	AccountTransactions(ctx context.Context, accountID int64) ([]Transaction, error)
	Transaction(ctx context.Context, userID, txID int64) (*Transaction, error)
	TransactionsBetween(ctx context.Context, userID int64, start, end time.Time, accountID int64) ([]Transaction, error)
	InsertTransaction(ctx context.Context, t *Transaction) error
	UpdateTransaction(ctx context.Context, t *Transaction) error
	DeleteTransaction(ctx context.Context, txID int64) error
	SetBalance(ctx context.Context, accountID int64, balance float64) error
}

// ledgerUnit is an atomic unit of work. Either every write in the unit becomes
// visible or none does.
type ledgerUnit interface {
	ledgerStore
	Commit() error
	Rollback() error
}

// ledgerDB is a store that can open units of work. Its own store methods run
// outside any unit and may observe concurrent writes.
type ledgerDB interface {
	ledgerStore
	Begin(ctx context.Context) (ledgerUnit, error)
}

type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// pgStore implements ledgerStore over either *sql.DB or *sql.Tx.
type pgStore struct {
	q sqlQuerier
}

// pgDB wraps the shared connection pool.
type pgDB struct {
	pgStore
	db *sql.DB
}

// pgUnit wraps one open database transaction.
type pgUnit struct {
	pgStore
	tx *sql.Tx
}

func newPGStore(database *sql.DB) *pgDB {
	return &pgDB{pgStore: pgStore{q: database}, db: database}
}

func (s *pgDB) Begin(ctx context.Context) (ledgerUnit, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin unit of work: %w", err)
	}
	return &pgUnit{pgStore: pgStore{q: tx}, tx: tx}, nil
}

func (u *pgUnit) Commit() error   { return u.tx.Commit() }
func (u *pgUnit) Rollback() error { return u.tx.Rollback() }

// Account inside a unit of work locks the account row. Concurrent mutations
// against the same account therefore serialize before reading the transaction
// set, so no recompute can fold over a stale set.
func (u *pgUnit) Account(ctx context.Context, userID, accountID int64) (*Account, error) {
	row := u.tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		accountID, userID,
	)
	return scanAccount(row)
}

const accountColumns = `id, user_id, name, opening_balance, balance, currency, type, created_at, updated_at`

func scanAccount(row *sql.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.OpeningBalance, &a.Balance, &a.Currency, &a.Type, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s pgStore) Account(ctx context.Context, userID, accountID int64) (*Account, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2`,
		accountID, userID,
	)
	return scanAccount(row)
}

func (s pgStore) Accounts(ctx context.Context, userID int64) ([]Account, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]Account, 0)
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.OpeningBalance, &a.Balance, &a.Currency, &a.Type, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

const transactionColumns = `id, user_id, account_id, amount, type, category, description, date, created_at, updated_at`

func scanTransactions(rows *sql.Rows) ([]Transaction, error) {
	defer rows.Close()
	txs := make([]Transaction, 0)
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.Amount, &t.Type, &t.Category, &t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (s pgStore) AccountTransactions(ctx context.Context, accountID int64) ([]Transaction, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE account_id = $1`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func (s pgStore) Transaction(ctx context.Context, userID, txID int64) (*Transaction, error) {
	var t Transaction
	err := s.q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`,
		txID, userID,
	).Scan(&t.ID, &t.UserID, &t.AccountID, &t.Amount, &t.Type, &t.Category, &t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s pgStore) TransactionsBetween(ctx context.Context, userID int64, start, end time.Time, accountID int64) ([]Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date <= $3`
	args := []any{userID, start, end}
	if accountID != 0 {
		query += ` AND account_id = $4`
		args = append(args, accountID)
	}
	query += ` ORDER BY date DESC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func (s pgStore) InsertTransaction(ctx context.Context, t *Transaction) error {
	return s.q.QueryRowContext(ctx,
		`INSERT INTO transactions (user_id, account_id, amount, type, category, description, date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		t.UserID, t.AccountID, t.Amount, t.Type, t.Category, t.Description, t.Date,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (s pgStore) UpdateTransaction(ctx context.Context, t *Transaction) error {
	return s.q.QueryRowContext(ctx,
		`UPDATE transactions
		 SET account_id = $1, amount = $2, type = $3, category = $4, description = $5, date = $6, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $7
		 RETURNING updated_at`,
		t.AccountID, t.Amount, t.Type, t.Category, t.Description, t.Date, t.ID,
	).Scan(&t.UpdatedAt)
}

func (s pgStore) DeleteTransaction(ctx context.Context, txID int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, txID)
	return err
}

func (s pgStore) SetBalance(ctx context.Context, accountID int64, balance float64) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		balance, accountID,
	)
	return err
}
