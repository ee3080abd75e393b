package ledger

import (
	"sync" // Mutexes for per-account serialization
)

// accountLocks serializes mutating operations per account id. Requests for
// different accounts proceed in parallel; two operations on the same account
// never interleave their read and write halves (lost-update hazard).
type accountLocks struct {
	mu sync.Mutex            // Guards the map itself
	m  map[uint]*sync.Mutex  // One mutex per account id, never removed
}

// newAccountLocks creates an empty lock table
func newAccountLocks() *accountLocks {
	return &accountLocks{m: make(map[uint]*sync.Mutex)} // Initialize the map
}

// lock acquires the mutex for one account id and returns its unlock function
func (l *accountLocks) lock(id uint) func() {
	l.mu.Lock() // Guard map access
	m, ok := l.m[id]
	if !ok {
		m = &sync.Mutex{} // First operation for this account
		l.m[id] = m       // Register the mutex
	}
	l.mu.Unlock() // Release map guard before blocking
	m.Lock()      // Serialize on the account
	return m.Unlock
}
