package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// abortLedgerError maps core error kinds to HTTP statuses
func abortLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errInvalidPeriod),
		errors.Is(err, errInvalidType),
		errors.Is(err, errInvalidAmount),
		errors.Is(err, errInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	if err := db.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "spendy-backend",
	})
}

// ---- Accounts ----

type accountRequest struct {
	Name     string  `json:"name" binding:"required"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
	Type     string  `json:"type" binding:"required"`
}

// getAccounts retrieves all accounts for the current user
func getAccounts(c *gin.Context) {
	user := currentUser(c)

	accounts, err := ledger.Accounts(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// createAccount creates a new account. The initial balance becomes the
// immutable opening balance the reconciler anchors to.
func createAccount(c *gin.Context) {
	user := currentUser(c)

	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Currency == "" {
		req.Currency = "RUB"
	}

	var account Account
	err := db.QueryRow(
		`INSERT INTO accounts (user_id, name, opening_balance, balance, currency, type)
		 VALUES ($1, $2, $3, $3, $4, $5)
		 RETURNING id, user_id, name, opening_balance, balance, currency, type, created_at, updated_at`,
		user.ID, req.Name, req.Balance, req.Currency, req.Type,
	).Scan(&account.ID, &account.UserID, &account.Name, &account.OpeningBalance, &account.Balance,
		&account.Currency, &account.Type, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, account)
}

// ---- Transactions ----

type transactionRequest struct {
	AccountID   int64     `json:"account_id" binding:"required"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type" binding:"required"`
	Category    string    `json:"category" binding:"required"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date" binding:"required"`
}

func (r transactionRequest) input() TransactionInput {
	return TransactionInput{
		AccountID:   r.AccountID,
		Amount:      r.Amount,
		Type:        r.Type,
		Category:    r.Category,
		Description: r.Description,
		Date:        r.Date,
	}
}

func periodParam(c *gin.Context) string {
	return c.DefaultQuery("period", "month")
}

func accountParam(c *gin.Context) (int64, error) {
	raw := c.Query("account_id")
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// getTransactions lists the user's transactions for a period, newest first
func getTransactions(c *gin.Context) {
	user := currentUser(c)

	accountID, err := accountParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account_id"})
		return
	}

	txs, err := ledger.ListTransactions(c.Request.Context(), user.ID, periodParam(c), accountID)
	if err != nil {
		abortLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// createTransaction creates a transaction and reconciles the account balance
func createTransaction(c *gin.Context) {
	user := currentUser(c)

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := ledger.CreateTransaction(c.Request.Context(), user.ID, req.input())
	if err != nil {
		abortLedgerError(c, err)
		return
	}

	invalidateBalanceCache(c.Request.Context(), user.ID)
	c.JSON(http.StatusCreated, t)
}

// updateTransaction overwrites a transaction and reconciles the account(s)
func updateTransaction(c *gin.Context) {
	user := currentUser(c)

	txID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := ledger.UpdateTransaction(c.Request.Context(), user.ID, txID, req.input())
	if err != nil {
		abortLedgerError(c, err)
		return
	}

	invalidateBalanceCache(c.Request.Context(), user.ID)
	c.JSON(http.StatusOK, t)
}

// deleteTransaction removes a transaction and reconciles the account balance
func deleteTransaction(c *gin.Context) {
	user := currentUser(c)

	txID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	if err := ledger.DeleteTransaction(c.Request.Context(), user.ID, txID); err != nil {
		abortLedgerError(c, err)
		return
	}

	invalidateBalanceCache(c.Request.Context(), user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

type transferRequest struct {
	FromAccountID int64     `json:"from_account_id" binding:"required"`
	ToAccountID   int64     `json:"to_account_id" binding:"required"`
	Amount        float64   `json:"amount" binding:"required"`
	Date          time.Time `json:"date" binding:"required"`
	Description   *string   `json:"description"`
	ExchangeRate  *float64  `json:"exchange_rate"`
}

// createTransfer atomically moves money between two of the user's accounts
func createTransfer(c *gin.Context) {
	user := currentUser(c)

	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := ledger.Transfer(c.Request.Context(), user.ID, TransferInput{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Date:          req.Date,
		Description:   req.Description,
		ExchangeRate:  req.ExchangeRate,
	})
	if err != nil {
		abortLedgerError(c, err)
		return
	}

	invalidateBalanceCache(c.Request.Context(), user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Transfer completed successfully"})
}

// getTransactionStats sums income and expense for a period
func getTransactionStats(c *gin.Context) {
	user := currentUser(c)

	accountID, err := accountParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account_id"})
		return
	}

	stats, err := ledger.Stats(c.Request.Context(), user.ID, periodParam(c), accountID)
	if err != nil {
		abortLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// getBalances returns per-currency balance aggregates with optional caching
func getBalances(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	// Try to get from cache
	if redisClient != nil {
		cached, err := redisClient.Get(ctx, balanceCacheKey(user.ID)).Result()
		if err == nil {
			var balances map[string]CurrencyBalance
			if err := json.Unmarshal([]byte(cached), &balances); err == nil {
				c.JSON(http.StatusOK, balances)
				return
			}
		}
	}

	balances, err := ledger.BalancesByCurrency(ctx, user.ID)
	if err != nil {
		abortLedgerError(c, err)
		return
	}

	// Cache for 60 seconds
	if redisClient != nil {
		if data, err := json.Marshal(balances); err == nil {
			redisClient.SetEx(ctx, balanceCacheKey(user.ID), data, 60*time.Second)
		}
	}

	c.JSON(http.StatusOK, balances)
}

// ---- Categories ----

type categoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
	Type  string `json:"type" binding:"required"`
}

// getCategories retrieves the user's categories
func getCategories(c *gin.Context) {
	user := currentUser(c)

	rows, err := db.Query(
		`SELECT id, user_id, name, color, type, created_at FROM categories WHERE user_id = $1 ORDER BY name`,
		user.ID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Color, &cat.Type, &cat.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		categories = append(categories, cat)
	}

	c.JSON(http.StatusOK, categories)
}

// createCategory creates a category for the current user
func createCategory(c *gin.Context) {
	user := currentUser(c)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Color == "" {
		req.Color = "#667eea"
	}

	var cat Category
	err := db.QueryRow(
		`INSERT INTO categories (user_id, name, color, type) VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, name, color, type, created_at`,
		user.ID, req.Name, req.Color, req.Type,
	).Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Color, &cat.Type, &cat.CreatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, cat)
}

// deleteCategory removes a category owned by the current user
func deleteCategory(c *gin.Context) {
	user := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	result, err := db.Exec(`DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// ---- Budgets ----

type budgetRequest struct {
	Category string  `json:"category" binding:"required"`
	Amount   float64 `json:"amount" binding:"required"`
	Period   string  `json:"period" binding:"required"`
}

// getBudgets retrieves the user's budgets
func getBudgets(c *gin.Context) {
	user := currentUser(c)

	rows, err := db.Query(
		`SELECT id, user_id, category, amount, spent, period, created_at, updated_at
		 FROM budgets WHERE user_id = $1 ORDER BY id`,
		user.ID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer rows.Close()

	budgets := make([]Budget, 0)
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount, &b.Spent, &b.Period, &b.CreatedAt, &b.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		budgets = append(budgets, b)
	}

	c.JSON(http.StatusOK, budgets)
}

// createBudget creates a budget for the current user
func createBudget(c *gin.Context) {
	user := currentUser(c)

	var req budgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var b Budget
	err := db.QueryRow(
		`INSERT INTO budgets (user_id, category, amount, period) VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, category, amount, spent, period, created_at, updated_at`,
		user.ID, req.Category, req.Amount, req.Period,
	).Scan(&b.ID, &b.UserID, &b.Category, &b.Amount, &b.Spent, &b.Period, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, b)
}

// updateBudget overwrites a budget's fields
func updateBudget(c *gin.Context) {
	user := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid budget id"})
		return
	}

	var req budgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var b Budget
	err = db.QueryRow(
		`UPDATE budgets SET category = $1, amount = $2, period = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4 AND user_id = $5
		 RETURNING id, user_id, category, amount, spent, period, created_at, updated_at`,
		req.Category, req.Amount, req.Period, id, user.ID,
	).Scan(&b.ID, &b.UserID, &b.Category, &b.Amount, &b.Spent, &b.Period, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, b)
}

// deleteBudget removes a budget owned by the current user
func deleteBudget(c *gin.Context) {
	user := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid budget id"})
		return
	}

	result, err := db.Exec(`DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// ---- Financial goals ----

type goalRequest struct {
	Name                string     `json:"name" binding:"required"`
	TargetAmount        float64    `json:"target_amount" binding:"required"`
	Deadline            *time.Time `json:"deadline"`
	MonthlyContribution float64    `json:"monthly_contribution"`
}

// getGoals retrieves the user's financial goals
func getGoals(c *gin.Context) {
	user := currentUser(c)

	rows, err := db.Query(
		`SELECT id, user_id, name, target_amount, deadline, monthly_contribution, created_at, updated_at
		 FROM financial_goals WHERE user_id = $1 ORDER BY id`,
		user.ID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer rows.Close()

	goals := make([]FinancialGoal, 0)
	for rows.Next() {
		var g FinancialGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.Deadline, &g.MonthlyContribution, &g.CreatedAt, &g.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		goals = append(goals, g)
	}

	c.JSON(http.StatusOK, goals)
}

// createGoal creates a financial goal for the current user
func createGoal(c *gin.Context) {
	user := currentUser(c)

	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var g FinancialGoal
	err := db.QueryRow(
		`INSERT INTO financial_goals (user_id, name, target_amount, deadline, monthly_contribution)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, name, target_amount, deadline, monthly_contribution, created_at, updated_at`,
		user.ID, req.Name, req.TargetAmount, req.Deadline, req.MonthlyContribution,
	).Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.Deadline, &g.MonthlyContribution, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, g)
}

// updateGoal overwrites a goal's fields
func updateGoal(c *gin.Context) {
	user := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid goal id"})
		return
	}

	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var g FinancialGoal
	err = db.QueryRow(
		`UPDATE financial_goals
		 SET name = $1, target_amount = $2, deadline = $3, monthly_contribution = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5 AND user_id = $6
		 RETURNING id, user_id, name, target_amount, deadline, monthly_contribution, created_at, updated_at`,
		req.Name, req.TargetAmount, req.Deadline, req.MonthlyContribution, id, user.ID,
	).Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.Deadline, &g.MonthlyContribution, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Financial goal not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, g)
}

// deleteGoal removes a goal owned by the current user
func deleteGoal(c *gin.Context) {
	user := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid goal id"})
		return
	}

	result, err := db.Exec(`DELETE FROM financial_goals WHERE id = $1 AND user_id = $2`, id, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Financial goal not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Financial goal deleted successfully"})
}

// ---- Exchange rates ----

type exchangeRateRequest struct {
	FromCurrency string  `json:"from_currency" binding:"required"`
	ToCurrency   string  `json:"to_currency" binding:"required"`
	Rate         float64 `json:"rate" binding:"required"`
}

// getExchangeRate looks up a stored conversion rate
func getExchangeRate(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	var rate ExchangeRate
	err := db.QueryRow(
		`SELECT id, from_currency, to_currency, rate, created_at
		 FROM exchange_rates WHERE from_currency = $1 AND to_currency = $2`,
		from, to,
	).Scan(&rate.ID, &rate.FromCurrency, &rate.ToCurrency, &rate.Rate, &rate.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rate)
}

// setExchangeRate stores or replaces a conversion rate
func setExchangeRate(c *gin.Context) {
	var req exchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rate ExchangeRate
	err := db.QueryRow(
		`INSERT INTO exchange_rates (from_currency, to_currency, rate)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (from_currency, to_currency)
		 DO UPDATE SET rate = EXCLUDED.rate, created_at = CURRENT_TIMESTAMP
		 RETURNING id, from_currency, to_currency, rate, created_at`,
		req.FromCurrency, req.ToCurrency, req.Rate,
	).Scan(&rate.ID, &rate.FromCurrency, &rate.ToCurrency, &rate.Rate, &rate.CreatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rate)
}
