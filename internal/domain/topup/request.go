package topup

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidAmount rejects non-positive top-up amounts at submission time
var ErrInvalidAmount = errors.New("top-up amount must be positive")

// Request is an outstanding ask to move points from the central wallet into
// a user wallet. It stays pending until an approval pass applies it or
// defers it.
type Request struct {
	ID          string
	WalletID    int64
	Amount      int64
	RequestedAt time.Time
}

// Queue is the durable, ordered list of outstanding requests.
type Queue interface {
	Append(ctx context.Context, req Request) error
	// List parses every stored request, oldest first. Malformed lines are
	// skipped, not reported.
	List(ctx context.Context) ([]Request, error)
	// Replace rewrites the queue to contain exactly the given requests in
	// the given order.
	Replace(ctx context.Context, reqs []Request) error
}

// Selector picks the queue entries an approval pass operates on, either all
// requests for one wallet or a single request by id. A wallet selector can
// match several outstanding requests in one pass.
type Selector struct {
	requestID string
	walletID  int64
	byWallet  bool
}

// ByRequestID selects the request with the given id.
func ByRequestID(id string) Selector {
	return Selector{requestID: id}
}

// ByWalletID selects every request targeting the given wallet.
func ByWalletID(id int64) Selector {
	return Selector{walletID: id, byWallet: true}
}

// Matches reports whether the request satisfies the selector.
func (s Selector) Matches(req Request) bool {
	if s.byWallet {
		return req.WalletID == s.walletID
	}
	return req.ID == s.requestID
}

// String describes the selector for logging.
func (s Selector) String() string {
	if s.byWallet {
		return "wallet"
	}
	return "request"
}
