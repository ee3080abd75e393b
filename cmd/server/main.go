package main

import (
	"casino_ledger/internal/api"        // Custom package for API handlers
	"casino_ledger/internal/config"     // Custom package for configuration
	"casino_ledger/internal/ledger"     // Custom package for the ledger engine
	"casino_ledger/internal/middleware" // Custom package for middleware
	"context"                           // context package is needed for Redis operations
	"log"                               // log package is needed for logging

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Ledger engine owns all balance mutation
	engine := ledger.NewEngine(db)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/user", api.RegisterHandler(engine, cfg.StartingBalance)) // Registration endpoint
	r.GET("/user", api.LoginHandler(db, cfg.JWTSecret))               // Login endpoint

	// Public leaderboard route
	r.GET("/leaderboard", api.LeaderboardHandler(engine, redisClient)) // Ranking endpoint

	// Game routes (protected by JWT)
	gameGroup := r.Group("/game")
	// Protect game routes with JWT middleware
	gameGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	gameGroup.POST("/bet", api.PlaceBetHandler(engine, redisClient))       // Place bet endpoint
	gameGroup.POST("/finish", api.FinishGameHandler(engine, redisClient))  // Report outcome endpoint
	gameGroup.GET("/balance", api.GetBalanceHandler(engine, redisClient))  // Balance endpoint
	gameGroup.GET("/history", api.GetHistoryHandler(engine, redisClient))  // Round history endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	// Protect admin routes with JWT and AdminOnly middleware
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(engine))
	adminGroup.GET("/users", api.ListUsersHandler(db, redisClient))   // List accounts endpoint
	adminGroup.GET("/rounds", api.ListRoundsHandler(db, redisClient)) // List rounds endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
