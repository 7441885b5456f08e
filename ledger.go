package main

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Transaction types. Transfers are stored as a paired expense+income, never as
// a third type.
const (
	txIncome  = "income"
	txExpense = "expense"
)

const transferCategory = "Transfer"

var (
	errNotFound          = errors.New("not found")
	errInvalidPeriod     = errors.New("invalid period")
	errInvalidType       = errors.New("invalid transaction type")
	errInvalidAmount     = errors.New("amount must not be negative")
	errInsufficientFunds = errors.New("insufficient funds")
	errIntegrity         = errors.New("transaction type outside income/expense")
)

// TransactionInput carries the mutable fields of a transaction.
type TransactionInput struct {
	AccountID   int64
	Amount      float64
	Type        string
	Category    string
	Description *string
	Date        time.Time
}

// TransferInput describes a transfer between two accounts owned by one user.
type TransferInput struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        float64
	Date          time.Time
	Description   *string
	ExchangeRate  *float64
}

// Ledger orchestrates transaction mutations and keeps cached account balances
// consistent with the transaction set.
type Ledger struct {
	store ledgerDB
}

func newLedger(store ledgerDB) *Ledger {
	return &Ledger{store: store}
}

// recomputeBalance derives an account balance from the opening balance and the
// complete transaction set. It is a pure fold: calling it any number of times
// over the same inputs yields the same value.
func recomputeBalance(openingBalance float64, txs []Transaction) (float64, error) {
	balance := openingBalance
	for _, t := range txs {
		switch t.Type {
		case txIncome:
			balance += t.Amount
		case txExpense:
			balance -= t.Amount
		default:
			return 0, fmt.Errorf("transaction %d: %w: %q", t.ID, errIntegrity, t.Type)
		}
	}
	return balance, nil
}

// reconcile recomputes and persists the cached balance of one account within
// the caller's unit of work.
func (l *Ledger) reconcile(ctx context.Context, u ledgerStore, account *Account) error {
	txs, err := u.AccountTransactions(ctx, account.ID)
	if err != nil {
		return err
	}
	balance, err := recomputeBalance(account.OpeningBalance, txs)
	if err != nil {
		return err
	}
	return u.SetBalance(ctx, account.ID, balance)
}

func validateInput(in TransactionInput) error {
	if in.Type != txIncome && in.Type != txExpense {
		return fmt.Errorf("%w: %q", errInvalidType, in.Type)
	}
	if in.Amount < 0 {
		return errInvalidAmount
	}
	return nil
}

// CreateTransaction inserts a transaction and reconciles the target account,
// all inside one unit of work.
func (l *Ledger) CreateTransaction(ctx context.Context, userID int64, in TransactionInput) (*Transaction, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	u, err := l.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer u.Rollback()

	account, err := u.Account(ctx, userID, in.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", in.AccountID, errNotFound)
	}

	t := &Transaction{
		UserID:      userID,
		AccountID:   in.AccountID,
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date,
	}
	if err := u.InsertTransaction(ctx, t); err != nil {
		return nil, err
	}

	if err := l.reconcile(ctx, u, account); err != nil {
		return nil, err
	}
	if err := u.Commit(); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTransaction overwrites a transaction's mutable fields and reconciles
// the target account. If the update moves the transaction to a different
// account, both the old and the new account are reconciled in the same unit.
func (l *Ledger) UpdateTransaction(ctx context.Context, userID, txID int64, in TransactionInput) (*Transaction, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	u, err := l.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer u.Rollback()

	existing, err := u.Transaction(ctx, userID, txID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("transaction %d: %w", txID, errNotFound)
	}

	account, err := u.Account(ctx, userID, in.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("account %d: %w", in.AccountID, errNotFound)
	}

	previousAccountID := existing.AccountID

	existing.AccountID = in.AccountID
	existing.Amount = in.Amount
	existing.Type = in.Type
	existing.Category = in.Category
	existing.Description = in.Description
	existing.Date = in.Date
	if err := u.UpdateTransaction(ctx, existing); err != nil {
		return nil, err
	}

	if err := l.reconcile(ctx, u, account); err != nil {
		return nil, err
	}

	// The transaction moved: the old account's cached balance is stale too.
	if previousAccountID != in.AccountID {
		previous, err := u.Account(ctx, userID, previousAccountID)
		if err != nil {
			return nil, err
		}
		if previous != nil {
			if err := l.reconcile(ctx, u, previous); err != nil {
				return nil, err
			}
		}
	}

	if err := u.Commit(); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteTransaction removes a transaction and reconciles its former account.
func (l *Ledger) DeleteTransaction(ctx context.Context, userID, txID int64) error {
	u, err := l.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer u.Rollback()

	existing, err := u.Transaction(ctx, userID, txID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("transaction %d: %w", txID, errNotFound)
	}

	account, err := u.Account(ctx, userID, existing.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("account %d: %w", existing.AccountID, errNotFound)
	}

	if err := u.DeleteTransaction(ctx, txID); err != nil {
		return err
	}
	if err := l.reconcile(ctx, u, account); err != nil {
		return err
	}
	return u.Commit()
}

// Transfer atomically posts an expense leg on the source account and an income
// leg on the destination account, then reconciles both. When currencies differ
// and a rate is supplied, the destination amount is scaled by it; with no rate
// the raw amount is posted unconverted.
func (l *Ledger) Transfer(ctx context.Context, userID int64, in TransferInput) error {
	if in.Amount < 0 {
		return errInvalidAmount
	}

	u, err := l.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer u.Rollback()

	from, err := u.Account(ctx, userID, in.FromAccountID)
	if err != nil {
		return err
	}
	to, err := u.Account(ctx, userID, in.ToAccountID)
	if err != nil {
		return err
	}
	if from == nil || to == nil {
		return fmt.Errorf("account: %w", errNotFound)
	}

	// Interactive check against the cached balance; a stale-but-close value
	// is an accepted tradeoff here.
	if from.Balance < in.Amount {
		return errInsufficientFunds
	}

	toAmount := in.Amount
	if from.Currency != to.Currency && in.ExchangeRate != nil {
		toAmount = in.Amount * *in.ExchangeRate
	}

	fromDesc := fmt.Sprintf("Transfer to %s", to.Name)
	toDesc := fmt.Sprintf("Transfer from %s", from.Name)
	if in.Description != nil && *in.Description != "" {
		fromDesc = *in.Description
		toDesc = *in.Description
	}

	outLeg := &Transaction{
		UserID:      userID,
		AccountID:   from.ID,
		Amount:      in.Amount,
		Type:        txExpense,
		Category:    transferCategory,
		Description: &fromDesc,
		Date:        in.Date,
	}
	if err := u.InsertTransaction(ctx, outLeg); err != nil {
		return err
	}

	inLeg := &Transaction{
		UserID:      userID,
		AccountID:   to.ID,
		Amount:      toAmount,
		Type:        txIncome,
		Category:    transferCategory,
		Description: &toDesc,
		Date:        in.Date,
	}
	if err := u.InsertTransaction(ctx, inLeg); err != nil {
		return err
	}

	if err := l.reconcile(ctx, u, from); err != nil {
		return err
	}
	if err := l.reconcile(ctx, u, to); err != nil {
		return err
	}
	return u.Commit()
}

// periodWindow maps a period name to its trailing time range ending at now.
// Windows are fixed-length, not calendar-aligned, except day which starts at
// local midnight.
func periodWindow(now time.Time, period string) (time.Time, time.Time, error) {
	switch period {
	case "day":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return start, now, nil
	case "week":
		return now.AddDate(0, 0, -7), now, nil
	case "month":
		return now.AddDate(0, 0, -30), now, nil
	case "year":
		return now.AddDate(0, 0, -365), now, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", errInvalidPeriod, period)
	}
}

// Accounts lists the user's accounts with their cached balances.
func (l *Ledger) Accounts(ctx context.Context, userID int64) ([]Account, error) {
	return l.store.Accounts(ctx, userID)
}

// ListTransactions returns the user's transactions within the period window,
// newest first. accountID 0 means all accounts.
func (l *Ledger) ListTransactions(ctx context.Context, userID int64, period string, accountID int64) ([]Transaction, error) {
	start, end, err := periodWindow(time.Now(), period)
	if err != nil {
		return nil, err
	}
	return l.store.TransactionsBetween(ctx, userID, start, end, accountID)
}

// Stats sums income and expense totals for the user over the period window.
func (l *Ledger) Stats(ctx context.Context, userID int64, period string, accountID int64) (*TransactionStats, error) {
	start, end, err := periodWindow(time.Now(), period)
	if err != nil {
		return nil, err
	}
	txs, err := l.store.TransactionsBetween(ctx, userID, start, end, accountID)
	if err != nil {
		return nil, err
	}

	stats := &TransactionStats{Period: period}
	for _, t := range txs {
		switch t.Type {
		case txIncome:
			stats.Income += t.Amount
		case txExpense:
			stats.Expense += t.Amount
		}
	}
	return stats, nil
}

// BalancesByCurrency groups the user's accounts by currency and accumulates
// income/expense totals and a net balance per currency bucket. Read-only and
// order-independent; it does not touch cached account balances.
func (l *Ledger) BalancesByCurrency(ctx context.Context, userID int64) (map[string]CurrencyBalance, error) {
	accounts, err := l.store.Accounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]CurrencyBalance)
	for _, account := range accounts {
		bucket, ok := balances[account.Currency]
		if !ok {
			bucket = CurrencyBalance{Currency: account.Currency}
		}

		txs, err := l.store.AccountTransactions(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range txs {
			switch t.Type {
			case txIncome:
				bucket.Income += t.Amount
				bucket.Balance += t.Amount
			case txExpense:
				bucket.Expense += t.Amount
				bucket.Balance -= t.Amount
			}
		}
		balances[account.Currency] = bucket
	}
	return balances, nil
}
