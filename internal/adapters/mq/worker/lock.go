package worker

import "sync"

// AccountLocks serializes merges per account. Two reports for the same
// account never interleave their load-merge-save cycles; reports for
// different accounts proceed in parallel.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[string]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

// NewAccountLocks creates an empty lock set.
func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[string]*accountLock)}
}

// Lock acquires the lock for the given account and returns the matching
// unlock function. Lock entries are reference counted and removed once
// the last holder releases them, so the set stays proportional to the
// number of in-flight merges.
func (a *AccountLocks) Lock(account string) func() {
	a.mu.Lock()
	l, ok := a.locks[account]
	if !ok {
		l = &accountLock{}
		a.locks[account] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, account)
		}
		a.mu.Unlock()
	}
}

// Len returns the number of accounts with an in-flight merge.
func (a *AccountLocks) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.locks)
}
