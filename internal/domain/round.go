package domain

import (
	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
)

// Round Model: immutable record of one finished game, never updated or deleted
type Round struct {
	ID         uint            `gorm:"primaryKey"`                  // Primary key
	UserID     uint            `gorm:"index;not null"`              // Foreign key to User
	WagerID    string          `gorm:"size:36;not null"`            // Wager settled by this round
	GameType   string          `gorm:"not null"`                    // Game tag: dice, crash, minefield, ...
	BetAmount  decimal.Decimal `gorm:"type:decimal(20,2);not null"` // Amount wagered
	Multiplier decimal.Decimal `gorm:"type:decimal(10,4);not null"` // Outcome multiplier
	Payout     decimal.Decimal `gorm:"type:decimal(20,2);not null"` // bet * multiplier on a win, 0 on a loss
	IsWin      bool            `gorm:"not null"`                    // Win flag
	CreatedAt  int64           `gorm:"autoCreateTime:milli"`        // Timestamp of creation in milliseconds
}
