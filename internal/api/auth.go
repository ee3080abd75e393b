package api

import (
	"casino_ledger/internal/domain" // Importing domain models
	"casino_ledger/internal/ledger" // Ledger engine
	"casino_ledger/internal/utils"  // Utility functions
	"errors"                        // Error inspection
	"net/http"                      // HTTP status codes
	"regexp"                        // Regular expressions
	"strings"                       // String manipulation

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
	"golang.org/x/crypto/bcrypt"    // Password hashing
	"gorm.io/gorm"                  // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token   string          `json:"token"`   // JWT token
	UserID  uint            `json:"user_id"` // Account id
	Balance decimal.Decimal `json:"balance"` // Current balance
}

// isValidUsername checks if the username is 3-20 word characters
func isValidUsername(username string) bool {
	matched, _ := regexp.MatchString(`^\w{3,20}$`, username) // Regex to match word characters only
	return matched                                           // Return whether it matched
}

// isValidPassword checks if the password length is between 8 and 64 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 64 // Return true if length is valid
}

// RegisterHandler creates a new account at the starting balance together with
// its zeroed leaderboard entry
func RegisterHandler(engine *ledger.Engine, startingBalance decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate username and password
		if !isValidUsername(req.Username) {
			// If username is invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-20 letters, digits or underscores"})
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			// If password is invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-64 characters"})
			return
		}
		// Hash the password and create the account
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// Create account with lowercase email to ensure uniqueness
		user, err := engine.CreateAccount(c.Request.Context(), req.Username, strings.ToLower(req.Email), string(hash), startingBalance)
		if err != nil {
			// A duplicate username or email is a client error
			if errors.Is(err, ledger.ErrDuplicateIdentity) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already exists"})
				return
			}
			// Anything else is a storage fault
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
			return
		}
		// Return the new account with its starting balance
		c.JSON(http.StatusCreated, gin.H{
			"message": "User registered successfully", // Confirmation
			"user_id": user.ID,                        // Account id
			"balance": user.Balance,                   // Starting balance
		})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Username, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token together with the current balance
		c.JSON(http.StatusOK, AuthResponse{Token: token, UserID: user.ID, Balance: user.Balance})
	}
}
