package ledger

import (
	"time"
)

// Entry represents one event in the shared transaction log. The log is
// append-only; entries are never mutated or removed, and their order is
// append order.
type Entry struct {
	Time     time.Time
	WalletID int64
	Text     string
}
