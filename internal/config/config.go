package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv"      // For loading .env files
	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
)

// Config holds the application configuration
type Config struct {
	AppPort         string          // Application port
	DBUser          string          // Database user
	DBPassword      string          // Database password
	DBHost          string          // Database host
	DBPort          string          // Database port
	DBName          string          // Database name
	JWTSecret       string          // JWT secret key
	RedisAddr       string          // Redis server address
	RedisPass       string          // Redis password
	RedisDB         int             // Redis database number
	StartingBalance decimal.Decimal // Balance every new account is created with
	IsProd          bool            // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	// Starting balance defaults to 1000.00 when unset or malformed
	starting, err := decimal.NewFromString(os.Getenv("STARTING_BALANCE"))
	if err != nil || starting.IsNegative() {
		starting = decimal.NewFromInt(1000) // Default starting value
	}
	return &Config{
		AppPort:         os.Getenv("APP_PORT"),          // Application port
		DBUser:          os.Getenv("DB_USER"),           // Database user
		DBPassword:      os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:          os.Getenv("DB_HOST"),           // Database host
		DBPort:          os.Getenv("DB_PORT"),           // Database port
		DBName:          os.Getenv("DB_NAME"),           // Database name
		JWTSecret:       os.Getenv("JWT_SECRET"),        // JWT secret key
		RedisAddr:       os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:       os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:         redisDB,                        // Redis database number
		StartingBalance: starting,                       // Starting balance for new accounts
		IsProd:          os.Getenv("IS_PROD") == "true", // Is production environment
	}
}
