package api

import (
	"casino_ledger/internal/domain" // Importing domain models
	"casino_ledger/internal/ledger" // Ledger engine
	"casino_ledger/internal/utils"  // Utility functions
	"context"                       // Context for Redis operations
	"net/http"                      // HTTP status codes
	"strconv"                       // String conversion
	"time"                          // Time durations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
)

// LeaderEntry represents one leaderboard row returned to clients
type LeaderEntry struct {
	Username     string          `json:"username"`      // Display name
	TotalWagered decimal.Decimal `json:"total_wagered"` // Lifetime amount wagered
	TotalWon     decimal.Decimal `json:"total_won"`     // Lifetime amount won
	BiggestWin   decimal.Decimal `json:"biggest_win"`   // Largest single payout
	GamesPlayed  int64           `json:"games_played"`  // Round count
	WinRate      decimal.Decimal `json:"win_rate"`      // Winning percentage
}

// toLeaderEntries maps leaderboard rows to the response format
func toLeaderEntries(entries []domain.LeaderboardEntry) []LeaderEntry {
	leaders := make([]LeaderEntry, len(entries)) // Prepare response data
	// Map entries to response format
	for i, e := range entries {
		leaders[i] = LeaderEntry{
			Username:     e.Username,     // Display name
			TotalWagered: e.TotalWagered, // Lifetime amount wagered
			TotalWon:     e.TotalWon,     // Lifetime amount won
			BiggestWin:   e.BiggestWin,   // Largest single payout
			GamesPlayed:  e.GamesPlayed,  // Round count
			WinRate:      e.WinRate,      // Winning percentage
		}
	}
	return leaders
}

// LeaderboardHandler returns the ranked leaderboard, cached for 60 seconds.
// An unrecognized sort key silently falls back to total_won.
func LeaderboardHandler(engine *ledger.Engine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		sortBy := c.DefaultQuery("sort_by", "total_won") // Requested sort key
		limit := ledger.DefaultRankLimit                 // Default limit
		// If limit exists in query
		if l := c.Query("limit"); l != "" {
			// Convert limit to integer
			if v, err := strconv.Atoi(l); err == nil && v > 0 {
				limit = v // Set limit if valid
			}
		}
		ctx := context.Background() // Context for Redis operations
		// Cache key per sort key and limit
		cacheKey := "leaderboard:" + sortBy + ":limit:" + strconv.Itoa(limit)
		var cached struct {
			Leaders []LeaderEntry `json:"leaders"` // Cached ranking
		}
		// Try to get from cache
		if rdb != nil {
			found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
			// If found in cache, return it
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{"leaders": cached.Leaders, "cached": true})
				return
			}
		}
		// Fetch the ordered, truncated ranking
		entries, err := engine.Rank(c.Request.Context(), sortBy, limit)
		if err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
			return
		}
		cached.Leaders = toLeaderEntries(entries) // Map to response rows
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, cached, 60*time.Second) // Cache the ranking for 60 seconds
		}
		c.JSON(http.StatusOK, gin.H{"leaders": cached.Leaders, "cached": false}) // Return the ranking
	}
}
