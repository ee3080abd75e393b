package domain

import (
	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
)

// LeaderboardEntry Model: derived per-user ranking statistics, created zeroed at registration
type LeaderboardEntry struct {
	ID           uint            `gorm:"primaryKey"`                  // Primary key
	UserID       uint            `gorm:"uniqueIndex"`                 // Foreign key to User
	Username     string          `gorm:"not null"`                    // Display name, denormalized for ranking queries
	TotalWagered decimal.Decimal `gorm:"type:decimal(20,2);not null"` // Lifetime amount wagered
	TotalWon     decimal.Decimal `gorm:"type:decimal(20,2);not null"` // Lifetime amount won
	BiggestWin   decimal.Decimal `gorm:"type:decimal(20,2);not null"` // Largest single payout, monotonically non-decreasing
	GamesPlayed  int64           `gorm:"not null;default:0"`          // Equals the count of Round records for this user
	Wins         int64           `gorm:"not null;default:0"`          // Count of winning rounds, kept in step with Round inserts
	WinRate      decimal.Decimal `gorm:"type:decimal(5,2);not null"`  // 100 * wins / games_played, 0 when no games
	UpdatedAt    int64           `gorm:"autoUpdateTime:milli"`        // Timestamp of last update in milliseconds
}
