package domain

import (
	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
)

// Wager statuses
const (
	WagerPending = "pending" // Debited, outcome not yet reported
	WagerSettled = "settled" // Outcome reported, payout credited
)

// Wager Model: an in-flight bet linking a debit to its future outcome
type Wager struct {
	ID        string          `gorm:"primaryKey;size:36"`          // UUID, returned by PlaceBet and required by FinishGame
	UserID    uint            `gorm:"index;not null"`              // Foreign key to User
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null"` // Escrowed bet amount
	Status    string          `gorm:"not null"`                    // pending or settled
	CreatedAt int64           `gorm:"autoCreateTime:milli"`        // Timestamp of creation in milliseconds
	SettledAt int64           // Timestamp of settlement in milliseconds, zero while pending
}
