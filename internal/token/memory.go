package token

import (
	"context"
	"sync"

	apperrors "github.com/louisbranch/claimledger/internal/errors"
)

// MemoryLedger is an in-process Ledger and Directory implementation backed by
// balance maps. It serves tests, examples, and the seed tool; production
// deployments adapt the host ledger instead.
type MemoryLedger struct {
	mu        sync.Mutex
	balances  map[Medium]map[string]uint64
	contracts map[string]bool
}

// NewMemoryLedger creates an empty in-process ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances:  make(map[Medium]map[string]uint64),
		contracts: make(map[string]bool),
	}
}

// RegisterContract marks a handle as a known token contract.
func (l *MemoryLedger) RegisterContract(handle string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.contracts[handle] = true
}

// Mint credits an account with funds in the given medium.
func (l *MemoryLedger) Mint(medium Medium, account string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts := l.balances[medium]
	if accounts == nil {
		accounts = make(map[string]uint64)
		l.balances[medium] = accounts
	}
	accounts[account] += amount
}

// BalanceOf returns the balance an account holds in the given medium.
func (l *MemoryLedger) BalanceOf(ctx context.Context, medium Medium, account string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[medium][account], nil
}

// Transfer moves amount between accounts, failing without mutation when the
// sender's balance is insufficient.
func (l *MemoryLedger) Transfer(ctx context.Context, medium Medium, from, to string, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts := l.balances[medium]
	if accounts == nil || accounts[from] < amount {
		return apperrors.WithMetadata(apperrors.CodeInsufficientBalance,
			"transfer exceeds sender balance",
			map[string]string{"From": from, "Medium": medium.Label()})
	}
	accounts[from] -= amount
	accounts[to] += amount
	return nil
}

// IsContract reports whether the handle was registered as a token contract.
func (l *MemoryLedger) IsContract(ctx context.Context, handle string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.contracts[handle], nil
}
