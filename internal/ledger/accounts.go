package ledger

import (
	"casino_ledger/internal/domain" // Importing domain models
	"context"                       // Cancellation propagated into transactions
	"errors"                        // Error inspection

	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
	"gorm.io/gorm"                  // GORM ORM library
)

// CreateAccount registers a new account at the given starting balance together
// with its zeroed leaderboard entry, in one transaction. The password must
// already be hashed by the caller.
func (e *Engine) CreateAccount(ctx context.Context, username, email, passwordHash string, startingBalance decimal.Decimal) (*domain.User, error) {
	var user domain.User // Created inside the transaction
	// Account row and leaderboard row succeed or fail together
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64 // Existing rows with the same identity
		// Check for a username or email collision
		if err := tx.Model(&domain.User{}).Where("username = ? OR email = ?", username, email).Count(&count).Error; err != nil {
			return storageErr(err) // Unexpected storage fault
		}
		if count > 0 {
			return ErrDuplicateIdentity // Identity already taken
		}
		// Create the account at the configured starting balance
		user = domain.User{
			Username:     username,        // Unique display name
			Email:        email,           // Unique email
			Password:     passwordHash,    // Hashed password
			Balance:      startingBalance, // Configured starting value
			TotalWagered: decimal.Zero,    // Nothing wagered yet
			TotalWon:     decimal.Zero,    // Nothing won yet
		}
		// Save the account
		if err := tx.Create(&user).Error; err != nil {
			return storageErr(err) // Roll back on failure
		}
		// Create the zeroed leaderboard entry sharing the account's identity
		entry := domain.LeaderboardEntry{
			UserID:       user.ID,      // Owning account
			Username:     user.Username, // Denormalized display name
			TotalWagered: decimal.Zero, // Zeroed counters
			TotalWon:     decimal.Zero,
			BiggestWin:   decimal.Zero,
			WinRate:      decimal.Zero,
		}
		// Save the entry
		if err := tx.Create(&entry).Error; err != nil {
			return storageErr(err) // Roll back on failure
		}
		return nil // Commit transaction
	})
	if err != nil {
		return nil, err // Surface the distinct error kind
	}
	return &user, nil
}

// Account returns one account by id
func (e *Engine) Account(ctx context.Context, userID uint) (*domain.User, error) {
	var user domain.User // Account row
	// Read the account
	if err := e.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound // No such account
		}
		return nil, storageErr(err) // Unexpected storage fault
	}
	return &user, nil
}
