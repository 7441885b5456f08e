package main

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

// ---- In-memory store ----

type memData struct {
	accounts     map[int64]Account
	transactions map[int64]Transaction
}

func (d *memData) clone() *memData {
	c := &memData{
		accounts:     make(map[int64]Account, len(d.accounts)),
		transactions: make(map[int64]Transaction, len(d.transactions)),
	}
	for id, a := range d.accounts {
		c.accounts[id] = a
	}
	for id, t := range d.transactions {
		c.transactions[id] = t
	}
	return c
}

// memStore implements ledgerDB for tests. Units of work operate on a clone of
// the data and publish it on Commit, so a rollback leaves no partial state.
type memStore struct {
	data   *memData
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{data: &memData{
		accounts:     make(map[int64]Account),
		transactions: make(map[int64]Transaction),
	}}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) Begin(ctx context.Context) (ledgerUnit, error) {
	return &memUnit{parent: m, data: m.data.clone()}, nil
}

func (m *memStore) view() *memUnit {
	return &memUnit{parent: m, data: m.data}
}

func (m *memStore) Account(ctx context.Context, userID, accountID int64) (*Account, error) {
	return m.view().Account(ctx, userID, accountID)
}

func (m *memStore) Accounts(ctx context.Context, userID int64) ([]Account, error) {
	return m.view().Accounts(ctx, userID)
}

func (m *memStore) AccountTransactions(ctx context.Context, accountID int64) ([]Transaction, error) {
	return m.view().AccountTransactions(ctx, accountID)
}

func (m *memStore) Transaction(ctx context.Context, userID, txID int64) (*Transaction, error) {
	return m.view().Transaction(ctx, userID, txID)
}

func (m *memStore) TransactionsBetween(ctx context.Context, userID int64, start, end time.Time, accountID int64) ([]Transaction, error) {
	return m.view().TransactionsBetween(ctx, userID, start, end, accountID)
}

func (m *memStore) InsertTransaction(ctx context.Context, t *Transaction) error {
	return m.view().InsertTransaction(ctx, t)
}

func (m *memStore) UpdateTransaction(ctx context.Context, t *Transaction) error {
	return m.view().UpdateTransaction(ctx, t)
}

func (m *memStore) DeleteTransaction(ctx context.Context, txID int64) error {
	return m.view().DeleteTransaction(ctx, txID)
}

func (m *memStore) SetBalance(ctx context.Context, accountID int64, balance float64) error {
	return m.view().SetBalance(ctx, accountID, balance)
}

type memUnit struct {
	parent *memStore
	data   *memData
}

func (u *memUnit) Commit() error {
	u.parent.data = u.data
	return nil
}

func (u *memUnit) Rollback() error { return nil }

func (u *memUnit) Account(ctx context.Context, userID, accountID int64) (*Account, error) {
	a, ok := u.data.accounts[accountID]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	return &a, nil
}

func (u *memUnit) Accounts(ctx context.Context, userID int64) ([]Account, error) {
	accounts := make([]Account, 0)
	for _, a := range u.data.accounts {
		if a.UserID == userID {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (u *memUnit) AccountTransactions(ctx context.Context, accountID int64) ([]Transaction, error) {
	txs := make([]Transaction, 0)
	for _, t := range u.data.transactions {
		if t.AccountID == accountID {
			txs = append(txs, t)
		}
	}
	return txs, nil
}

func (u *memUnit) Transaction(ctx context.Context, userID, txID int64) (*Transaction, error) {
	t, ok := u.data.transactions[txID]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return &t, nil
}

func (u *memUnit) TransactionsBetween(ctx context.Context, userID int64, start, end time.Time, accountID int64) ([]Transaction, error) {
	txs := make([]Transaction, 0)
	for _, t := range u.data.transactions {
		if t.UserID != userID {
			continue
		}
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		if accountID != 0 && t.AccountID != accountID {
			continue
		}
		txs = append(txs, t)
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })
	return txs, nil
}

func (u *memUnit) InsertTransaction(ctx context.Context, t *Transaction) error {
	t.ID = u.parent.id()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	u.data.transactions[t.ID] = *t
	return nil
}

func (u *memUnit) UpdateTransaction(ctx context.Context, t *Transaction) error {
	if _, ok := u.data.transactions[t.ID]; !ok {
		return errors.New("update of missing transaction")
	}
	t.UpdatedAt = time.Now()
	u.data.transactions[t.ID] = *t
	return nil
}

func (u *memUnit) DeleteTransaction(ctx context.Context, txID int64) error {
	delete(u.data.transactions, txID)
	return nil
}

func (u *memUnit) SetBalance(ctx context.Context, accountID int64, balance float64) error {
	a, ok := u.data.accounts[accountID]
	if !ok {
		return errors.New("set balance of missing account")
	}
	a.Balance = balance
	u.data.accounts[accountID] = a
	return nil
}

// ---- Fixtures ----

func newTestLedger() (*Ledger, *memStore) {
	m := newMemStore()
	return newLedger(m), m
}

func seedAccount(t *testing.T, m *memStore, userID int64, opening float64, currency string) *Account {
	t.Helper()
	a := Account{
		ID:             m.id(),
		UserID:         userID,
		Name:           "Account " + currency,
		OpeningBalance: opening,
		Balance:        opening,
		Currency:       currency,
		Type:           "card",
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	m.data.accounts[a.ID] = a
	return &a
}

func balanceOf(t *testing.T, m *memStore, accountID int64) float64 {
	t.Helper()
	a, ok := m.data.accounts[accountID]
	if !ok {
		t.Fatalf("account %d not found", accountID)
	}
	return a.Balance
}

func strPtr(s string) *string    { return &s }
func ratePtr(r float64) *float64 { return &r }

func mustCreate(t *testing.T, l *Ledger, userID int64, in TransactionInput) *Transaction {
	t.Helper()
	tx, err := l.CreateTransaction(context.Background(), userID, in)
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	return tx
}

func income(accountID int64, amount float64, daysAgo int) TransactionInput {
	return TransactionInput{
		AccountID: accountID,
		Amount:    amount,
		Type:      txIncome,
		Category:  "Salary",
		Date:      time.Now().AddDate(0, 0, -daysAgo),
	}
}

func expense(accountID int64, amount float64, daysAgo int) TransactionInput {
	return TransactionInput{
		AccountID: accountID,
		Amount:    amount,
		Type:      txExpense,
		Category:  "Groceries",
		Date:      time.Now().AddDate(0, 0, -daysAgo),
	}
}

// ---- Reconciler core ----

func TestRecomputeBalance(t *testing.T) {
	tests := []struct {
		name    string
		opening float64
		txs     []Transaction
		want    float64
		wantErr error
	}{
		{"no transactions", 100, nil, 100, nil},
		{"income only", 0, []Transaction{{Type: txIncome, Amount: 50}, {Type: txIncome, Amount: 25}}, 75, nil},
		{"mixed", 100, []Transaction{{Type: txIncome, Amount: 50}, {Type: txExpense, Amount: 30}}, 120, nil},
		{"negative result allowed", 10, []Transaction{{Type: txExpense, Amount: 25}}, -15, nil},
		{"unknown type", 0, []Transaction{{ID: 7, Type: "transfer", Amount: 5}}, 0, errIntegrity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := recomputeBalance(tt.opening, tt.txs)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("recomputeBalance: %v", err)
			}
			if got != tt.want {
				t.Errorf("balance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecomputeBalanceOrderIndependent(t *testing.T) {
	txs := []Transaction{
		{Type: txIncome, Amount: 50},
		{Type: txExpense, Amount: 30},
		{Type: txIncome, Amount: 12.5},
	}
	forward, err := recomputeBalance(100, txs)
	if err != nil {
		t.Fatal(err)
	}
	reversed := []Transaction{txs[2], txs[1], txs[0]}
	backward, err := recomputeBalance(100, reversed)
	if err != nil {
		t.Fatal(err)
	}
	if forward != backward {
		t.Errorf("fold depends on order: %v vs %v", forward, backward)
	}
}

// ---- Mutation orchestration ----

func TestCreateDeleteReconcilesBalance(t *testing.T) {
	l, m := newTestLedger()
	acct := seedAccount(t, m, 1, 100, "USD")

	in := mustCreate(t, l, 1, income(acct.ID, 50, 0))
	if got := balanceOf(t, m, acct.ID); got != 150 {
		t.Fatalf("balance after income = %v, want 150", got)
	}

	mustCreate(t, l, 1, expense(acct.ID, 30, 0))
	if got := balanceOf(t, m, acct.ID); got != 120 {
		t.Fatalf("balance after expense = %v, want 120", got)
	}

	if err := l.DeleteTransaction(context.Background(), 1, in.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if got := balanceOf(t, m, acct.ID); got != 70 {
		t.Fatalf("balance after delete = %v, want 70", got)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	l, m := newTestLedger()
	acct := seedAccount(t, m, 1, 100, "USD")
	mustCreate(t, l, 1, income(acct.ID, 50, 0))

	before := balanceOf(t, m, acct.ID)

	// A redundant recompute must not drift the cached value.
	u, err := m.Begin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	a, err := u.Account(context.Background(), 1, acct.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.reconcile(context.Background(), u, a); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if err := u.Commit(); err != nil {
		t.Fatal(err)
	}

	if got := balanceOf(t, m, acct.ID); got != before {
		t.Errorf("balance drifted from %v to %v on redundant recompute", before, got)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	l, m := newTestLedger()
	acct := seedAccount(t, m, 1, 100, "USD")

	tests := []struct {
		name    string
		userID  int64
		in      TransactionInput
		wantErr error
	}{
		{"unknown account", 1, income(999, 10, 0), errNotFound},
		{"foreign account", 2, income(acct.ID, 10, 0), errNotFound},
		{"bad type", 1, TransactionInput{AccountID: acct.ID, Amount: 10, Type: "transfer", Category: "x", Date: time.Now()}, errInvalidType},
		{"negative amount", 1, TransactionInput{AccountID: acct.ID, Amount: -5, Type: txIncome, Category: "x", Date: time.Now()}, errInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.CreateTransaction(context.Background(), tt.userID, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if n := len(m.data.transactions); n != 0 {
		t.Errorf("%d transaction rows persisted by failed creates", n)
	}
	if got := balanceOf(t, m, acct.ID); got != 100 {
		t.Errorf("balance changed to %v by failed creates", got)
	}
}

func TestCreateRollsBackOnCorruptRow(t *testing.T) {
	l, m := newTestLedger()
	acct := seedAccount(t, m, 1, 100, "USD")

	// Externally-inserted row with a type outside the closed set.
	corrupt := Transaction{ID: m.id(), UserID: 1, AccountID: acct.ID, Amount: 5, Type: "adjustment", Date: time.Now()}
	m.data.transactions[corrupt.ID] = corrupt

	_, err := l.CreateTransaction(context.Background(), 1, income(acct.ID, 50, 0))
	if !errors.Is(err, errIntegrity) {
		t.Fatalf("err = %v, want %v", err, errIntegrity)
	}

	// The whole unit rolled back: no new row, balance untouched.
	if n := len(m.data.transactions); n != 1 {
		t.Errorf("transaction count = %d, want 1", n)
	}
	if got := balanceOf(t, m, acct.ID); got != 100 {
		t.Errorf("balance = %v, want 100", got)
	}
}

func TestUpdateTransactionReconcilesBothAccounts(t *testing.T) {
	l, m := newTestLedger()
	src := seedAccount(t, m, 1, 100, "USD")
	dst := seedAccount(t, m, 1, 200, "USD")

	tx := mustCreate(t, l, 1, income(src.ID, 50, 0))
	if got := balanceOf(t, m, src.ID); got != 150 {
		t.Fatalf("source balance = %v, want 150", got)
	}

	moved := income(dst.ID, 80, 0)
	if _, err := l.UpdateTransaction(context.Background(), 1, tx.ID, moved); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}

	if got := balanceOf(t, m, src.ID); got != 100 {
		t.Errorf("old account balance = %v, want 100", got)
	}
	if got := balanceOf(t, m, dst.ID); got != 280 {
		t.Errorf("new account balance = %v, want 280", got)
	}
}

func TestUpdateTransactionNotFound(t *testing.T) {
	l, m := newTestLedger()
	acct := seedAccount(t, m, 1, 100, "USD")

	_, err := l.UpdateTransaction(context.Background(), 1, 42, income(acct.ID, 10, 0))
	if !errors.Is(err, errNotFound) {
		t.Fatalf("err = %v, want %v", err, errNotFound)
	}

	tx := mustCreate(t, l, 1, income(acct.ID, 10, 0))
	_, err = l.UpdateTransaction(context.Background(), 2, tx.ID, income(acct.ID, 10, 0))
	if !errors.Is(err, errNotFound) {
		t.Fatalf("foreign user err = %v, want %v", err, errNotFound)
	}
}

func TestDeleteMatchesNeverExisted(t *testing.T) {
	l, m := newTestLedger()
	acct := seedAccount(t, m, 1, 100, "USD")

	mustCreate(t, l, 1, expense(acct.ID, 30, 2))
	drop := mustCreate(t, l, 1, income(acct.ID, 50, 1))

	if err := l.DeleteTransaction(context.Background(), 1, drop.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}

	// Same balance as a ledger where the dropped row never existed.
	if got := balanceOf(t, m, acct.ID); got != 70 {
		t.Errorf("balance = %v, want 70", got)
	}
}

// ---- Transfers ----

func TestTransferSameCurrency(t *testing.T) {
	l, m := newTestLedger()
	from := seedAccount(t, m, 1, 500, "USD")
	to := seedAccount(t, m, 1, 100, "USD")

	err := l.Transfer(context.Background(), 1, TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        200,
		Date:          time.Now(),
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if got := balanceOf(t, m, from.ID); got != 300 {
		t.Errorf("source balance = %v, want 300", got)
	}
	if got := balanceOf(t, m, to.ID); got != 300 {
		t.Errorf("destination balance = %v, want 300", got)
	}
	if n := len(m.data.transactions); n != 2 {
		t.Fatalf("transaction rows = %d, want exactly 2", n)
	}

	for _, tx := range m.data.transactions {
		if tx.Category != transferCategory {
			t.Errorf("leg category = %q, want %q", tx.Category, transferCategory)
		}
		switch tx.AccountID {
		case from.ID:
			if tx.Type != txExpense || tx.Amount != 200 {
				t.Errorf("source leg = %s %v, want expense 200", tx.Type, tx.Amount)
			}
			if tx.Description == nil || *tx.Description != "Transfer to "+to.Name {
				t.Errorf("source leg description = %v", tx.Description)
			}
		case to.ID:
			if tx.Type != txIncome || tx.Amount != 200 {
				t.Errorf("destination leg = %s %v, want income 200", tx.Type, tx.Amount)
			}
			if tx.Description == nil || *tx.Description != "Transfer from "+from.Name {
				t.Errorf("destination leg description = %v", tx.Description)
			}
		}
	}
}

func TestTransferCrossCurrency(t *testing.T) {
	l, m := newTestLedger()
	from := seedAccount(t, m, 1, 1000, "USD")
	to := seedAccount(t, m, 1, 0, "RUB")

	err := l.Transfer(context.Background(), 1, TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        100,
		Date:          time.Now(),
		ExchangeRate:  ratePtr(90),
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if got := balanceOf(t, m, from.ID); got != 900 {
		t.Errorf("source balance = %v, want 900", got)
	}
	if got := balanceOf(t, m, to.ID); got != 9000 {
		t.Errorf("destination balance = %v, want 9000", got)
	}
}

func TestTransferCrossCurrencyNoRate(t *testing.T) {
	l, m := newTestLedger()
	from := seedAccount(t, m, 1, 1000, "USD")
	to := seedAccount(t, m, 1, 0, "RUB")

	err := l.Transfer(context.Background(), 1, TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        100,
		Date:          time.Now(),
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	// No rate supplied: the raw amount lands in the destination currency.
	if got := balanceOf(t, m, to.ID); got != 100 {
		t.Errorf("destination balance = %v, want 100", got)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	l, m := newTestLedger()
	from := seedAccount(t, m, 1, 50, "USD")
	to := seedAccount(t, m, 1, 10, "USD")

	err := l.Transfer(context.Background(), 1, TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        200,
		Date:          time.Now(),
	})
	if !errors.Is(err, errInsufficientFunds) {
		t.Fatalf("err = %v, want %v", err, errInsufficientFunds)
	}

	if n := len(m.data.transactions); n != 0 {
		t.Errorf("transaction rows = %d, want 0", n)
	}
	if got := balanceOf(t, m, from.ID); got != 50 {
		t.Errorf("source balance = %v, want 50", got)
	}
	if got := balanceOf(t, m, to.ID); got != 10 {
		t.Errorf("destination balance = %v, want 10", got)
	}
}

func TestTransferAccountNotFound(t *testing.T) {
	l, m := newTestLedger()
	from := seedAccount(t, m, 1, 500, "USD")
	foreign := seedAccount(t, m, 2, 0, "USD")

	err := l.Transfer(context.Background(), 1, TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   foreign.ID,
		Amount:        10,
		Date:          time.Now(),
	})
	if !errors.Is(err, errNotFound) {
		t.Fatalf("err = %v, want %v", err, errNotFound)
	}
	if n := len(m.data.transactions); n != 0 {
		t.Errorf("transaction rows = %d, want 0", n)
	}
}

func TestTransferCustomDescription(t *testing.T) {
	l, m := newTestLedger()
	from := seedAccount(t, m, 1, 500, "USD")
	to := seedAccount(t, m, 1, 0, "USD")

	err := l.Transfer(context.Background(), 1, TransferInput{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        25,
		Date:          time.Now(),
		Description:   strPtr("Rent share"),
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	for _, tx := range m.data.transactions {
		if tx.Description == nil || *tx.Description != "Rent share" {
			t.Errorf("leg description = %v, want Rent share", tx.Description)
		}
	}
}

// ---- Reporting ----

func TestBalancesByCurrency(t *testing.T) {
	l, m := newTestLedger()
	usd := seedAccount(t, m, 1, 1000, "USD")
	usd2 := seedAccount(t, m, 1, 0, "USD")
	rub := seedAccount(t, m, 1, 50000, "RUB")
	other := seedAccount(t, m, 2, 0, "USD")

	mustCreate(t, l, 1, income(usd.ID, 100, 1))
	mustCreate(t, l, 1, expense(usd2.ID, 40, 1))
	mustCreate(t, l, 1, income(rub.ID, 9000, 1))
	mustCreate(t, l, 1, expense(rub.ID, 2500, 1))
	mustCreate(t, l, 2, income(other.ID, 777, 1))

	balances, err := l.BalancesByCurrency(context.Background(), 1)
	if err != nil {
		t.Fatalf("BalancesByCurrency: %v", err)
	}

	if len(balances) != 2 {
		t.Fatalf("got %d currency buckets, want 2", len(balances))
	}

	usdBucket := balances["USD"]
	if usdBucket.Income != 100 || usdBucket.Expense != 40 || usdBucket.Balance != 60 {
		t.Errorf("USD bucket = %+v, want income 100 expense 40 balance 60", usdBucket)
	}

	rubBucket := balances["RUB"]
	if rubBucket.Income != 9000 || rubBucket.Expense != 2500 || rubBucket.Balance != 6500 {
		t.Errorf("RUB bucket = %+v, want income 9000 expense 2500 balance 6500", rubBucket)
	}
}

func TestStatsWindow(t *testing.T) {
	l, m := newTestLedger()
	acct := seedAccount(t, m, 1, 0, "USD")

	mustCreate(t, l, 1, income(acct.ID, 300, 10)) // inside month window
	mustCreate(t, l, 1, expense(acct.ID, 120, 10))
	mustCreate(t, l, 1, income(acct.ID, 999, 40)) // outside month window

	stats, err := l.Stats(context.Background(), 1, "month", 0)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Income != 300 {
		t.Errorf("income = %v, want 300", stats.Income)
	}
	if stats.Expense != 120 {
		t.Errorf("expense = %v, want 120", stats.Expense)
	}
	if stats.Period != "month" {
		t.Errorf("period = %q, want month", stats.Period)
	}
}

func TestStatsInvalidPeriod(t *testing.T) {
	l, _ := newTestLedger()

	if _, err := l.Stats(context.Background(), 1, "fortnight", 0); !errors.Is(err, errInvalidPeriod) {
		t.Fatalf("err = %v, want %v", err, errInvalidPeriod)
	}
}

func TestStatsAccountFilter(t *testing.T) {
	l, m := newTestLedger()
	a := seedAccount(t, m, 1, 0, "USD")
	b := seedAccount(t, m, 1, 0, "USD")

	mustCreate(t, l, 1, income(a.ID, 100, 1))
	mustCreate(t, l, 1, income(b.ID, 70, 1))

	stats, err := l.Stats(context.Background(), 1, "week", b.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Income != 70 {
		t.Errorf("income = %v, want 70", stats.Income)
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	l, m := newTestLedger()
	acct := seedAccount(t, m, 1, 0, "USD")

	mustCreate(t, l, 1, income(acct.ID, 1, 5))
	mustCreate(t, l, 1, income(acct.ID, 2, 1))
	mustCreate(t, l, 1, income(acct.ID, 3, 3))

	txs, err := l.ListTransactions(context.Background(), 1, "month", 0)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txs))
	}
	for i := 1; i < len(txs); i++ {
		if txs[i].Date.After(txs[i-1].Date) {
			t.Errorf("transactions not sorted by date desc at index %d", i)
		}
	}
}

func TestPeriodWindow(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		period    string
		wantStart time.Time
		wantErr   bool
	}{
		{"day", time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), false},
		{"week", now.AddDate(0, 0, -7), false},
		{"month", now.AddDate(0, 0, -30), false},
		{"year", now.AddDate(0, 0, -365), false},
		{"quarter", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			start, end, err := periodWindow(now, tt.period)
			if tt.wantErr {
				if !errors.Is(err, errInvalidPeriod) {
					t.Fatalf("err = %v, want %v", err, errInvalidPeriod)
				}
				return
			}
			if err != nil {
				t.Fatalf("periodWindow: %v", err)
			}
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(now) {
				t.Errorf("end = %v, want %v", end, now)
			}
		})
	}
}
