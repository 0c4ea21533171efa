package flatfile

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/points-wallet-ledger/internal/domain/ledger"
)

const logTimeLayout = "2006-01-02 15:04:05"

// TransactionLog implements ledger.Log on a single append-only text file
// shared by all wallets. Each line carries a "Wallet <id>:" tag so a
// per-wallet history is a filtered read.
type TransactionLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewTransactionLog creates a transaction log over the file at path.
func NewTransactionLog(path string) *TransactionLog {
	return &TransactionLog{path: path, now: time.Now}
}

// Append durably writes one log line for the given wallet.
func (l *TransactionLog) Append(ctx context.Context, walletID int64, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("[%s] Wallet %d: %s", l.now().Format(logTimeLayout), walletID, text)
	if err := appendLine(l.path, line); err != nil {
		return fmt.Errorf("append transaction log: %w", err)
	}
	return nil
}

// ListByWallet returns the entries tagged with the given wallet id, oldest
// first. Lines that do not carry the tag or do not parse are skipped.
func (l *TransactionLog) ListByWallet(ctx context.Context, walletID int64) ([]ledger.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines, err := readLines(l.path)
	if err != nil {
		return nil, fmt.Errorf("read transaction log: %w", err)
	}

	tag := fmt.Sprintf("Wallet %d:", walletID)
	var entries []ledger.Entry
	for _, line := range lines {
		if !strings.Contains(line, tag) {
			continue
		}
		entry, ok := parseLogLine(line, walletID, tag)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseLogLine(line string, walletID int64, tag string) (ledger.Entry, bool) {
	if !strings.HasPrefix(line, "[") {
		return ledger.Entry{}, false
	}
	end := strings.Index(line, "] ")
	if end < 0 {
		return ledger.Entry{}, false
	}
	ts, err := time.ParseInLocation(logTimeLayout, line[1:end], time.Local)
	if err != nil {
		return ledger.Entry{}, false
	}

	rest := line[end+2:]
	if !strings.HasPrefix(rest, tag) {
		return ledger.Entry{}, false
	}
	text := strings.TrimPrefix(strings.TrimPrefix(rest, tag), " ")

	return ledger.Entry{Time: ts, WalletID: walletID, Text: text}, true
}
