package domain

import (
	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
)

// User Model
type User struct {
	ID           uint             `gorm:"primaryKey"`                   // Primary key
	Username     string           `gorm:"unique;not null"`              // Unique username
	Email        string           `gorm:"unique;not null"`              // Unique email
	Password     string           `gorm:"not null"`                     // Hashed password
	Role         string           `gorm:"default:user"`                 // Role: user or admin
	Balance      decimal.Decimal  `gorm:"type:decimal(20,2);not null"`  // Current balance, mutated only by the ledger engine
	TotalWagered decimal.Decimal  `gorm:"type:decimal(20,2);not null"`  // Lifetime amount wagered
	TotalWon     decimal.Decimal  `gorm:"type:decimal(20,2);not null"`  // Lifetime amount won
	CreatedAt    int64            `gorm:"autoCreateTime:milli"`         // Timestamp of creation in milliseconds
	Leaderboard  LeaderboardEntry `gorm:"constraint:OnUpdate:CASCADE;"` // One-to-one relationship with LeaderboardEntry
}
