package ledger

import (
	"casino_ledger/internal/domain" // Importing domain models
	"context"                       // Cancellation propagated into queries
	"errors"                        // Error inspection

	"gorm.io/gorm" // GORM ORM library
)

// Ranking defaults and limits
const (
	DefaultRankLimit = 10  // Entries returned when no limit is given
	MaxRankLimit     = 100 // Hard cap on a single ranking query
)

// rankKeys is the fixed set of recognized sort keys; anything else silently
// falls back to total_won
var rankKeys = map[string]bool{
	"total_won":     true, // Lifetime amount won
	"total_wagered": true, // Lifetime amount wagered
	"biggest_win":   true, // Largest single payout
	"win_rate":      true, // Winning percentage
	"games_played":  true, // Round count
}

// Rank returns leaderboard entries ordered descending by the given sort key,
// truncated to limit. Read-only; consistency is as of the last committed
// FinishGame.
func (e *Engine) Rank(ctx context.Context, sortBy string, limit int) ([]domain.LeaderboardEntry, error) {
	// Unrecognized keys fall back to total_won, never an error
	if !rankKeys[sortBy] {
		sortBy = "total_won"
	}
	// Non-positive or missing limits default, oversized limits are capped
	if limit <= 0 {
		limit = DefaultRankLimit
	}
	if limit > MaxRankLimit {
		limit = MaxRankLimit
	}
	var entries []domain.LeaderboardEntry // Ranked rows
	// Fetch the ordered, truncated ranking
	if err := e.db.WithContext(ctx).Order(sortBy + " desc").Limit(limit).Find(&entries).Error; err != nil {
		return nil, storageErr(err) // Unexpected storage fault
	}
	return entries, nil
}

// History returns one page of an account's round history, newest first,
// together with the total round count
func (e *Engine) History(ctx context.Context, userID uint, page, pageSize int) ([]domain.Round, int64, error) {
	// The account must exist
	if err := e.db.WithContext(ctx).First(&domain.User{}, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrAccountNotFound // No such account
		}
		return nil, 0, storageErr(err) // Unexpected storage fault
	}
	var total int64 // Total round count for pagination
	// Count rounds for this account
	if err := e.db.WithContext(ctx).Model(&domain.Round{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, storageErr(err) // Unexpected storage fault
	}
	offset := (page - 1) * pageSize // Calculate offset
	var rounds []domain.Round       // One page of history
	// Fetch the page, newest first
	if err := e.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(pageSize).
		Find(&rounds).Error; err != nil {
		return nil, 0, storageErr(err) // Unexpected storage fault
	}
	return rounds, total, nil
}
