package ledger

import (
	"casino_ledger/internal/domain" // Importing domain models
	"context"                       // Cancellation propagated into transactions
	"errors"                        // Error inspection
	"time"                          // Settlement timestamps

	"github.com/google/uuid"        // Wager identifiers
	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
	"gorm.io/gorm"                  // GORM ORM library
)

// Engine owns all balance mutation logic. Every mutating operation runs under
// the account's lock and inside a single database transaction, so a bet debit,
// an outcome credit and the leaderboard update succeed or fail together.
type Engine struct {
	db    *gorm.DB      // Durable store
	locks *accountLocks // Per-account serialization
}

// NewEngine creates a ledger engine on top of a database handle
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db, locks: newAccountLocks()} // Fresh lock table
}

// PlaceBet debits the bet amount from the account and opens a pending wager.
// The funds leave the balance the instant the bet is placed; FinishGame must
// follow with the wager id to settle it. Returns the wager and the post-debit
// balance.
func (e *Engine) PlaceBet(ctx context.Context, userID uint, amount decimal.Decimal) (*domain.Wager, decimal.Decimal, error) {
	// Reject non-positive bets before touching storage
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, decimal.Zero, ErrInvalidAmount
	}
	unlock := e.locks.lock(userID) // Serialize on the account
	defer unlock()                 // Release after commit or rollback
	var wager domain.Wager         // Created inside the transaction
	var newBalance decimal.Decimal // Post-debit balance
	// Debit and wager creation are one atomic unit
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User // Account row
		// Read the current balance
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound // No such account
			}
			return storageErr(err) // Unexpected storage fault
		}
		// A bet that would overdraw is rejected before any mutation
		if user.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		newBalance = user.Balance.Sub(amount) // Exact decimal subtraction
		// Persist the debit
		if err := tx.Model(&user).Update("balance", newBalance).Error; err != nil {
			return storageErr(err) // Roll back on failure
		}
		// Open the pending wager linking this debit to its future outcome
		wager = domain.Wager{
			ID:     uuid.NewString(),    // Wager identifier returned to the caller
			UserID: userID,              // Owning account
			Amount: amount,              // Escrowed amount
			Status: domain.WagerPending, // Awaiting outcome
		}
		// Save the wager
		if err := tx.Create(&wager).Error; err != nil {
			return storageErr(err) // Roll back on failure
		}
		return nil // Commit transaction
	})
	if err != nil {
		return nil, decimal.Zero, err // Surface the distinct error kind
	}
	return &wager, newBalance, nil
}

// FinishGame settles a pending wager with the reported outcome. It appends the
// Round record, credits the payout, updates lifetime totals and refreshes the
// leaderboard entry as one atomic unit. Returns the post-credit balance and
// the computed payout.
func (e *Engine) FinishGame(ctx context.Context, userID uint, wagerID, gameType string, betAmount, multiplier decimal.Decimal, isWin bool) (decimal.Decimal, decimal.Decimal, error) {
	// A zero bet is allowed, a negative bet or multiplier is not
	if betAmount.IsNegative() || multiplier.IsNegative() {
		return decimal.Zero, decimal.Zero, ErrInvalidAmount
	}
	// Payout uses exact decimal arithmetic, zero on a loss
	payout := decimal.Zero
	if isWin {
		payout = betAmount.Mul(multiplier)
	}
	unlock := e.locks.lock(userID) // Serialize on the account
	defer unlock()                 // Release after commit or rollback
	var newBalance decimal.Decimal // Post-credit balance
	// Round append, wager settlement, balance credit and leaderboard update
	// are one atomic unit; partial application is a correctness violation
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User // Account row
		// Read the current balance and lifetime totals
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound // No such account
			}
			return storageErr(err) // Unexpected storage fault
		}
		var wager domain.Wager // Pending wager for this outcome
		// The wager must exist and belong to this account
		if err := tx.Where("id = ? AND user_id = ?", wagerID, userID).First(&wager).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWagerNotFound // Unknown or foreign wager id
			}
			return storageErr(err) // Unexpected storage fault
		}
		// An outcome can be reported exactly once per wager
		if wager.Status != domain.WagerPending {
			return ErrWagerSettled
		}
		// The reported bet must match the escrowed amount
		if !wager.Amount.Equal(betAmount) {
			return ErrWagerMismatch
		}
		// Append the immutable round record
		round := domain.Round{
			UserID:     userID,     // Owning account
			WagerID:    wager.ID,   // Settled wager
			GameType:   gameType,   // Opaque game tag
			BetAmount:  betAmount,  // Amount wagered
			Multiplier: multiplier, // Outcome multiplier
			Payout:     payout,     // Derived payout
			IsWin:      isWin,      // Win flag
		}
		// Save the round
		if err := tx.Create(&round).Error; err != nil {
			return storageErr(err) // Roll back on failure
		}
		// Mark the wager settled
		if err := tx.Model(&wager).Updates(map[string]any{
			"status":     domain.WagerSettled,     // Outcome recorded
			"settled_at": time.Now().UnixMilli(),  // Settlement timestamp
		}).Error; err != nil {
			return storageErr(err) // Roll back on failure
		}
		newBalance = user.Balance.Add(payout) // Exact decimal addition
		// Credit the payout and advance lifetime totals
		if err := tx.Model(&user).Updates(map[string]any{
			"balance":       newBalance,                     // Post-credit balance
			"total_wagered": user.TotalWagered.Add(betAmount), // Lifetime wagered
			"total_won":     user.TotalWon.Add(payout),        // Lifetime won
		}).Error; err != nil {
			return storageErr(err) // Roll back on failure
		}
		// Refresh the leaderboard entry in the same transaction
		if err := e.applyRoundToLeaderboard(tx, userID, betAmount, payout, isWin); err != nil {
			return err // Roll back on failure
		}
		return nil // Commit transaction
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, err // Surface the distinct error kind
	}
	return newBalance, payout, nil
}

// applyRoundToLeaderboard advances the derived leaderboard counters for one
// settled round. Runs inside the FinishGame transaction so games_played and
// win_rate stay exactly consistent with the round history.
func (e *Engine) applyRoundToLeaderboard(tx *gorm.DB, userID uint, betAmount, payout decimal.Decimal, isWin bool) error {
	var entry domain.LeaderboardEntry // Derived stats row
	// Read the current counters
	if err := tx.Where("user_id = ?", userID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // No entry registered for this account, nothing to update
		}
		return storageErr(err) // Unexpected storage fault
	}
	games := entry.GamesPlayed + 1 // One more round on the books
	wins := entry.Wins
	if isWin {
		wins++ // Incremental win counter, committed with the round
	}
	// win_rate = 100 * wins / games_played, exact to two places
	winRate := decimal.NewFromInt(wins * 100).DivRound(decimal.NewFromInt(games), 2)
	biggest := entry.BiggestWin // Monotonically non-decreasing
	if payout.GreaterThan(biggest) {
		biggest = payout // New biggest single win
	}
	// Persist the advanced counters
	if err := tx.Model(&entry).Updates(map[string]any{
		"total_wagered": entry.TotalWagered.Add(betAmount), // Lifetime wagered
		"total_won":     entry.TotalWon.Add(payout),        // Lifetime won
		"biggest_win":   biggest,                           // Largest single payout
		"games_played":  games,                             // Round count
		"wins":          wins,                              // Winning round count
		"win_rate":      winRate,                           // Derived percentage
	}).Error; err != nil {
		return storageErr(err) // Roll back on failure
	}
	return nil
}

// Balance returns the current balance for one account
func (e *Engine) Balance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	var user domain.User // Account row
	// Read the balance
	if err := e.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrAccountNotFound // No such account
		}
		return decimal.Zero, storageErr(err) // Unexpected storage fault
	}
	return user.Balance, nil
}
