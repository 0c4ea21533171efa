package wallet

import (
	"context"
	"strconv"
)

// Store is the single writer for the wallet table. Implementations hold the
// table in memory behind one mutex and persist it as a whole snapshot;
// mutating callers are expected to Save promptly so memory and disk do not
// diverge.
type Store interface {
	// Load reconstructs the in-memory table from durable storage,
	// discarding any unsaved in-memory mutation. On first run the central
	// wallet is created with the configured seed balance.
	Load(ctx context.Context) error
	// Save writes the full wallet table to durable storage, truncating
	// prior content.
	Save(ctx context.Context) error

	// Get returns a copy of the wallet with the given id.
	Get(ctx context.Context, id int64) (*Wallet, error)
	// Create allocates the next free wallet id and registers an empty
	// wallet under it.
	Create(ctx context.Context) (*Wallet, error)
	// Credit adds amount to a single wallet.
	Credit(ctx context.Context, id int64, amount int64) error
	// Move debits amount from one wallet and credits it to another as one
	// step under the store lock. On any validation failure neither side
	// is touched.
	Move(ctx context.Context, from, to int64, amount int64) error
	// All returns copies of every wallet in ascending id order.
	All(ctx context.Context) ([]*Wallet, error)
}

// ErrWalletNotFound indicates a missing wallet
type ErrWalletNotFound struct {
	WalletID int64
}

func (e ErrWalletNotFound) Error() string {
	return "wallet not found: " + strconv.FormatInt(e.WalletID, 10)
}
