package flatfile

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/points-wallet-ledger/internal/domain/topup"
)

// TopUpQueue implements topup.Queue on a flat text file with one
// "requestId walletId amount timestampEpoch" line per outstanding request.
type TopUpQueue struct {
	mu   sync.Mutex
	path string
}

// NewTopUpQueue creates a top-up request queue over the file at path.
func NewTopUpQueue(path string) *TopUpQueue {
	return &TopUpQueue{path: path}
}

// Append adds one request to the end of the queue.
func (q *TopUpQueue) Append(ctx context.Context, req topup.Request) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	line := fmt.Sprintf("%s %d %d %d", req.ID, req.WalletID, req.Amount, req.RequestedAt.Unix())
	if err := appendLine(q.path, line); err != nil {
		return fmt.Errorf("append top-up queue: %w", err)
	}
	return nil
}

// List parses every stored request, oldest first. Malformed lines are
// skipped; the file is hand-editable text and a bad line must not wedge the
// whole queue.
func (q *TopUpQueue) List(ctx context.Context) ([]topup.Request, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	lines, err := readLines(q.path)
	if err != nil {
		return nil, fmt.Errorf("read top-up queue: %w", err)
	}

	var reqs []topup.Request
	for _, line := range lines {
		req, ok := parseTopUpLine(line)
		if !ok {
			continue
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Replace rewrites the queue to contain exactly the given requests in order.
func (q *TopUpQueue) Replace(ctx context.Context, reqs []topup.Request) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	lines := make([]string, 0, len(reqs))
	for _, req := range reqs {
		lines = append(lines, fmt.Sprintf("%s %d %d %d", req.ID, req.WalletID, req.Amount, req.RequestedAt.Unix()))
	}
	if err := writeSnapshot(q.path, lines); err != nil {
		return fmt.Errorf("rewrite top-up queue: %w", err)
	}
	return nil
}

func parseTopUpLine(line string) (topup.Request, bool) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return topup.Request{}, false
	}
	walletID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return topup.Request{}, false
	}
	amount, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || amount <= 0 {
		return topup.Request{}, false
	}
	epoch, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return topup.Request{}, false
	}
	return topup.Request{
		ID:          fields[0],
		WalletID:    walletID,
		Amount:      amount,
		RequestedAt: time.Unix(epoch, 0),
	}, true
}
