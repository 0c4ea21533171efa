package flatfile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/points-wallet-ledger/internal/domain/update"
)

// ErrDelimiterInField rejects proposals whose fields would corrupt the
// pipe-delimited queue file.
var ErrDelimiterInField = errors.New("proposal fields must not contain '|'")

// UpdateQueue implements update.Queue on a flat text file with one
// "id|code|targetUsername|proposedFullName" line per pending proposal.
type UpdateQueue struct {
	mu   sync.Mutex
	path string
}

// NewUpdateQueue creates a pending-update queue over the file at path.
func NewUpdateQueue(path string) *UpdateQueue {
	return &UpdateQueue{path: path}
}

// Append adds one proposal to the end of the queue.
func (q *UpdateQueue) Append(ctx context.Context, p update.Proposal) error {
	line, err := formatUpdateLine(p)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err := appendLine(q.path, line); err != nil {
		return fmt.Errorf("append update queue: %w", err)
	}
	return nil
}

// List parses every stored proposal, oldest first. Malformed lines are
// skipped.
func (q *UpdateQueue) List(ctx context.Context) ([]update.Proposal, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	lines, err := readLines(q.path)
	if err != nil {
		return nil, fmt.Errorf("read update queue: %w", err)
	}

	var ps []update.Proposal
	for _, line := range lines {
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			continue
		}
		ps = append(ps, update.Proposal{
			ID:       parts[0],
			Code:     parts[1],
			Username: parts[2],
			FullName: parts[3],
		})
	}
	return ps, nil
}

// Replace rewrites the queue to contain exactly the given proposals in order.
func (q *UpdateQueue) Replace(ctx context.Context, ps []update.Proposal) error {
	lines := make([]string, 0, len(ps))
	for _, p := range ps {
		line, err := formatUpdateLine(p)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err := writeSnapshot(q.path, lines); err != nil {
		return fmt.Errorf("rewrite update queue: %w", err)
	}
	return nil
}

func formatUpdateLine(p update.Proposal) (string, error) {
	for _, field := range []string{p.ID, p.Code, p.Username} {
		if strings.Contains(field, "|") {
			return "", ErrDelimiterInField
		}
	}
	// FullName is the last field, so embedded pipes would still round-trip,
	// but reject them anyway to keep the file unambiguous.
	if strings.Contains(p.FullName, "|") {
		return "", ErrDelimiterInField
	}
	return fmt.Sprintf("%s|%s|%s|%s", p.ID, p.Code, p.Username, p.FullName), nil
}
