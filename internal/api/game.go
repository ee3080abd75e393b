package api

import (
	"casino_ledger/internal/domain" // Importing domain models
	"casino_ledger/internal/ledger" // Ledger engine
	"casino_ledger/internal/utils"  // Utility functions
	"context"                       // Context for Redis operations
	"errors"                        // Error inspection
	"net/http"                      // HTTP status codes
	"strconv"                       // String conversion
	"time"                          // Time durations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
	"github.com/sirupsen/logrus"    // Logging library
)

// PlaceBetRequest represents a bet request
type PlaceBetRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"` // Bet amount, exact decimal
}

// FinishGameRequest represents a game outcome report
type FinishGameRequest struct {
	WagerID    string          `json:"wager_id" binding:"required"`  // Wager returned by the bet call
	GameType   string          `json:"game_type" binding:"required"` // Game tag: dice, crash, minefield, ...
	BetAmount  decimal.Decimal `json:"bet_amount"`                   // Amount wagered, must match the wager
	Multiplier decimal.Decimal `json:"multiplier"`                   // Outcome multiplier
	IsWin      bool            `json:"is_win"`                       // Win flag
}

// respondLedgerError maps a ledger error kind to an HTTP status and message
func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"}) // Unknown account
	case errors.Is(err, ledger.ErrWagerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Wager not found"}) // Unknown or foreign wager
	case errors.Is(err, ledger.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"}) // Not enough money
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"}) // Bad bet or multiplier
	case errors.Is(err, ledger.ErrWagerSettled):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Wager already settled"}) // Double settlement
	case errors.Is(err, ledger.ErrWagerMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bet amount does not match wager"}) // Amount mismatch
	default:
		// Storage faults and anything unexpected
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
}

// invalidateAccountCaches drops the cached balance and round history for a user
func invalidateAccountCaches(rdb *redis.Client, userID uint) {
	if rdb == nil {
		return // Cache disabled
	}
	ctx := context.Background()                           // Context for Redis operations
	key := "balance:user:" + strconv.Itoa(int(userID))    // Balance cache key
	prefix := "rounds:user:" + strconv.Itoa(int(userID))  // Round history prefix
	_ = utils.DeleteCache(ctx, rdb, key)                  // Invalidate balance cache
	utils.InvalidatePages(ctx, rdb, prefix)               // Invalidate paginated history cache
}

// invalidateLeaderboardCache drops the cached rankings for every sort key
// (simple version: default limit only, the 60s TTL bounds the rest)
func invalidateLeaderboardCache(rdb *redis.Client) {
	if rdb == nil {
		return // Cache disabled
	}
	ctx := context.Background() // Context for Redis operations
	// Delete the cached ranking for each recognized sort key
	for _, k := range []string{"total_won", "total_wagered", "biggest_win", "win_rate", "games_played"} {
		_ = utils.DeleteCache(ctx, rdb, "leaderboard:"+k+":limit:"+strconv.Itoa(ledger.DefaultRankLimit))
	}
}

// PlaceBetHandler debits the bet amount and opens a pending wager
func PlaceBetHandler(engine *ledger.Engine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req PlaceBetRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		// Debit the balance and open the wager
		wager, balance, err := engine.PlaceBet(c.Request.Context(), userID.(uint), req.Amount)
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,              // Account id
				"amount":  req.Amount.String(), // Bet amount
				"error":   err.Error(),         // Error message
			}).Error("Bet failed") // Log bet failure
			respondLedgerError(c, err) // Map to status and message
			return
		}
		// Log successful bet
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,                          // Account id
			"wager_id":  wager.ID,                        // Wager identifier
			"amount":    req.Amount.String(),             // Bet amount
			"balance":   balance.String(),                // Post-debit balance
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Bet placed") // Log bet success
		invalidateAccountCaches(rdb, userID.(uint)) // Invalidate balance and history cache
		// Return the wager id and the post-debit balance
		c.JSON(http.StatusOK, gin.H{"wager_id": wager.ID, "balance": balance})
	}
}

// FinishGameHandler settles a pending wager with the reported outcome
func FinishGameHandler(engine *ledger.Engine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req FinishGameRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Settle the wager: round append, credit and leaderboard update in one unit
		balance, payout, err := engine.FinishGame(c.Request.Context(), userID.(uint), req.WagerID, req.GameType, req.BetAmount, req.Multiplier, req.IsWin)
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,                 // Account id
				"wager_id": req.WagerID,            // Wager identifier
				"game":     req.GameType,           // Game tag
				"amount":   req.BetAmount.String(), // Bet amount
				"error":    err.Error(),            // Error message
			}).Error("Game settlement failed") // Log settlement failure
			respondLedgerError(c, err) // Map to status and message
			return
		}
		// Log successful settlement
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,                          // Account id
			"wager_id":   req.WagerID,                     // Wager identifier
			"game":       req.GameType,                    // Game tag
			"amount":     req.BetAmount.String(),          // Bet amount
			"multiplier": req.Multiplier.String(),         // Outcome multiplier
			"payout":     payout.String(),                 // Computed payout
			"is_win":     req.IsWin,                       // Win flag
			"timestamp":  time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Game settled") // Log settlement success
		invalidateAccountCaches(rdb, userID.(uint)) // Invalidate balance and history cache
		invalidateLeaderboardCache(rdb)             // Rankings changed
		// Return the post-credit balance and the computed payout
		c.JSON(http.StatusOK, gin.H{"balance": balance, "payout": payout})
	}
}

// GetBalanceHandler returns the current balance for the authenticated user
func GetBalanceHandler(engine *ledger.Engine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                                    // Context for Redis operations
		cacheKey := "balance:user:" + strconv.Itoa(int(userID.(uint))) // Cache key for balance
		var cached struct {
			Balance decimal.Decimal `json:"balance"` // Cached balance
		}
		// Try to get from cache
		if rdb != nil {
			found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
			// If found in cache, return it
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{"balance": cached.Balance, "cached": true})
				return
			}
		}
		// If not in cache, read from the ledger
		balance, err := engine.Balance(c.Request.Context(), userID.(uint))
		if err != nil {
			respondLedgerError(c, err) // Map to status and message
			return
		}
		cached.Balance = balance // Fill the cache payload
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, cached, 60*time.Second) // Cache the balance for 60 seconds
		}
		c.JSON(http.StatusOK, gin.H{"balance": balance, "cached": false}) // Return balance
	}
}

// GetHistoryHandler returns the authenticated user's round history, newest first
func GetHistoryHandler(engine *ledger.Engine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page := 1      // Default page
		pageSize := 20 // Default page size
		// If page exists in query
		if p := c.Query("page"); p != "" {
			// Convert page to integer
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If page_size exists in query
		if ps := c.Query("page_size"); ps != "" {
			// Convert page_size to integer
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size if valid
			}
		}
		// Redis cache key
		cacheKey := "rounds:user:" + strconv.Itoa(int(userID.(uint))) + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Rounds     []domain.Round `json:"rounds"`      // List of rounds
			Page       int            `json:"page"`        // Current page
			PageSize   int            `json:"page_size"`   // Page size
			Total      int64          `json:"total"`       // Total rounds
			TotalPages int            `json:"total_pages"` // Total pages
		}
		// Try to get from cache
		if rdb != nil {
			found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
			// If found in cache, return it
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{
					"rounds":      cached.Rounds,     // Cached rounds
					"page":        cached.Page,       // Current page
					"page_size":   cached.PageSize,   // Page size
					"total":       cached.Total,      // Total rounds
					"total_pages": cached.TotalPages, // Total pages
					"cached":      true,
				})
				return
			}
		}
		// Fetch one page of history from the ledger
		rounds, total, err := engine.History(c.Request.Context(), userID.(uint), page, pageSize)
		if err != nil {
			respondLedgerError(c, err) // Map to status and message
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"rounds":      rounds,     // List of rounds
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total rounds
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Not from cache
		}
		if rdb != nil {
			// Cache the result for 60 seconds
			_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		}
		c.JSON(http.StatusOK, resp) // Return round history
	}
}
