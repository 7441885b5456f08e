package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	cfg    Config
	ledger *Ledger
)

func main() {
	// Check for migrate command
	migrateCmd := flag.Bool("migrate", false, "Run database migrations")
	seedDemoCmd := flag.Bool("seed-demo", false, "Seed a demo user with accounts and transactions (idempotent)")
	flag.Parse()

	var err error
	cfg, err = loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *migrateCmd {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migration completed successfully")
		os.Exit(0)
	}
	if *seedDemoCmd {
		if err := initDB(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		if err := seedDemoData(db); err != nil {
			log.Fatalf("Seeding demo data failed: %v", err)
		}
		log.Println("Demo data seeded")
		os.Exit(0)
	}

	// Initialize database
	if err := initDB(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ledger = newLedger(newPGStore(db))

	// Initialize Redis
	if err := initRedis(cfg.RedisURL); err != nil {
		log.Printf("Warning: Failed to initialize Redis: %v", err)
		log.Println("Continuing without Redis cache...")
		redisClient = nil
	}

	// Setup Gin router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Routes
	r.GET("/health", healthCheck)

	r.POST("/api/auth/register", register)
	r.POST("/api/auth/login", login)

	api := r.Group("/api", requireAuth())
	api.POST("/auth/logout", logout)
	api.GET("/auth/me", me)

	api.GET("/accounts", getAccounts)
	api.POST("/accounts", createAccount)

	api.GET("/transactions", getTransactions)
	api.POST("/transactions", createTransaction)
	api.PUT("/transactions/:id", updateTransaction)
	api.DELETE("/transactions/:id", deleteTransaction)
	api.POST("/transactions/transfer", createTransfer)
	api.GET("/transactions/stats", getTransactionStats)
	api.GET("/transactions/balances", getBalances)

	api.GET("/categories", getCategories)
	api.POST("/categories", createCategory)
	api.DELETE("/categories/:id", deleteCategory)

	api.GET("/budgets", getBudgets)
	api.POST("/budgets", createBudget)
	api.PATCH("/budgets/:id", updateBudget)
	api.DELETE("/budgets/:id", deleteBudget)

	api.GET("/goals", getGoals)
	api.POST("/goals", createGoal)
	api.PATCH("/goals/:id", updateGoal)
	api.DELETE("/goals/:id", deleteGoal)

	api.GET("/exchange-rate", getExchangeRate)
	api.POST("/exchange-rate", setExchangeRate)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
