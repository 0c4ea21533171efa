package wallet

import (
	"errors"
)

// CentralID is the id of the central/treasury wallet. It always exists and
// is pre-funded on first run; top-ups draw from it.
const CentralID int64 = 0

// Common errors
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// Wallet represents a points balance keyed by an integer id
type Wallet struct {
	ID      int64
	Balance int64
}

// New creates an empty wallet with the given id
func New(id int64) *Wallet {
	return &Wallet{ID: id}
}

// Credit adds the specified amount to the wallet balance
func (w *Wallet) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	w.Balance += amount
	return nil
}

// Debit subtracts the specified amount from the wallet balance
func (w *Wallet) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if w.Balance < amount {
		return ErrInsufficientFunds
	}
	w.Balance -= amount
	return nil
}

// CanDebit checks if the wallet has sufficient funds for a debit
func (w *Wallet) CanDebit(amount int64) bool {
	return w.Balance >= amount
}
