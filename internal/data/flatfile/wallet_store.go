package flatfile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/points-wallet-ledger/internal/domain/wallet"
)

// WalletStore implements wallet.Store on a flat text file with one
// "id balance" line per wallet. The table lives in memory behind one mutex;
// Save writes the whole snapshot back.
type WalletStore struct {
	mu          sync.Mutex
	path        string
	seedBalance int64
	logger      *slog.Logger
	wallets     map[int64]*wallet.Wallet
}

// NewWalletStore creates a wallet store over the file at path. The central
// wallet is seeded with seedBalance when the file holds no entry for it.
func NewWalletStore(logger *slog.Logger, path string, seedBalance int64) *WalletStore {
	return &WalletStore{
		path:        path,
		seedBalance: seedBalance,
		logger:      logger,
		wallets:     make(map[int64]*wallet.Wallet),
	}
}

// Load reads the wallet table from disk, replacing the in-memory table.
// Lines that do not parse as two integers are skipped.
func (s *WalletStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := readLines(s.path)
	if err != nil {
		return fmt.Errorf("load wallet table: %w", err)
	}

	table := make(map[int64]*wallet.Wallet, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}
		balance, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || balance < 0 {
			continue
		}
		table[id] = &wallet.Wallet{ID: id, Balance: balance}
	}

	if _, ok := table[wallet.CentralID]; !ok {
		table[wallet.CentralID] = &wallet.Wallet{ID: wallet.CentralID, Balance: s.seedBalance}
		s.logger.Info("central wallet seeded", "balance", s.seedBalance)
	}

	s.wallets = table
	return nil
}

// Save writes the full wallet table back to disk, truncating prior content.
func (s *WalletStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *WalletStore) saveLocked() error {
	ids := make([]int64, 0, len(s.wallets))
	for id := range s.wallets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		w := s.wallets[id]
		lines = append(lines, fmt.Sprintf("%d %d", w.ID, w.Balance))
	}
	if err := writeSnapshot(s.path, lines); err != nil {
		return fmt.Errorf("save wallet table: %w", err)
	}
	return nil
}

// Get returns a copy of the wallet with the given id
func (s *WalletStore) Get(ctx context.Context, id int64) (*wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[id]
	if !ok {
		return nil, wallet.ErrWalletNotFound{WalletID: id}
	}
	copied := *w
	return &copied, nil
}

// Create allocates the next free wallet id and registers an empty wallet
func (s *WalletStore) Create(ctx context.Context) (*wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := wallet.CentralID + 1
	for id := range s.wallets {
		if id >= next {
			next = id + 1
		}
	}
	w := wallet.New(next)
	s.wallets[next] = w

	copied := *w
	return &copied, nil
}

// Credit adds amount to a single wallet
func (s *WalletStore) Credit(ctx context.Context, id int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[id]
	if !ok {
		return wallet.ErrWalletNotFound{WalletID: id}
	}
	return w.Credit(amount)
}

// Move debits amount from one wallet and credits it to another under the
// store lock. Validation strictly precedes mutation: on any failure neither
// balance changes.
func (s *WalletStore) Move(ctx context.Context, from, to int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.wallets[from]
	if !ok {
		return wallet.ErrWalletNotFound{WalletID: from}
	}
	dst, ok := s.wallets[to]
	if !ok {
		return wallet.ErrWalletNotFound{WalletID: to}
	}

	if err := src.Debit(amount); err != nil {
		return err
	}
	// Credit cannot fail here: Debit already rejected non-positive amounts
	return dst.Credit(amount)
}

// All returns copies of every wallet in ascending id order
func (s *WalletStore) All(ctx context.Context) ([]*wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*wallet.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		copied := *w
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
