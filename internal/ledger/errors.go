package ledger

import (
	"errors" // Sentinel error values
	"fmt"    // Error wrapping
)

// Error kinds surfaced by the ledger engine. Callers must be able to tell
// "not enough money" from "account does not exist" from "storage error",
// so every failure is one of these, inspectable with errors.Is.
var (
	ErrAccountNotFound    = errors.New("account not found")                // Account id has no record
	ErrInsufficientFunds  = errors.New("insufficient funds")               // Debit would drive balance negative
	ErrInvalidAmount      = errors.New("invalid amount")                   // Non-positive bet or negative multiplier
	ErrDuplicateIdentity  = errors.New("username or email already in use") // Registration collision
	ErrWagerNotFound      = errors.New("wager not found")                  // Wager id has no record for this account
	ErrWagerSettled       = errors.New("wager already settled")            // Outcome reported twice for one wager
	ErrWagerMismatch      = errors.New("wager amount mismatch")            // Reported bet differs from the escrowed amount
	ErrStorageUnavailable = errors.New("storage unavailable")              // Durable store could not complete the transaction
)

// storageErr wraps an unexpected database error so it surfaces as
// ErrStorageUnavailable while keeping the cause in the message
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err) // Wrap for errors.Is
}
