package ledger

import (
	"context"
)

// Log manages the shared transaction log. Append is durable on every call,
// independent of the wallet table's snapshot writes.
type Log interface {
	Append(ctx context.Context, walletID int64, text string) error
	// ListByWallet returns the entries tagged with the given wallet id,
	// oldest first.
	ListByWallet(ctx context.Context, walletID int64) ([]Entry, error)
}
