package flatfile

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/points-wallet-ledger/internal/domain/directory"
)

// AccountStore implements directory.Repository on a flat text file with one
// "username|passwordHash|fullName|isAdmin|walletId|mustChangePassword" line
// per account. Pipes delimit because bcrypt hashes and full names both
// contain characters whitespace splitting would mangle.
type AccountStore struct {
	mu       sync.Mutex
	path     string
	accounts map[string]*directory.Account
}

// NewAccountStore creates an account directory over the file at path.
func NewAccountStore(path string) *AccountStore {
	return &AccountStore{
		path:     path,
		accounts: make(map[string]*directory.Account),
	}
}

// Load reads the directory from disk, replacing the in-memory table.
// Malformed lines are skipped.
func (s *AccountStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := readLines(s.path)
	if err != nil {
		return fmt.Errorf("load account directory: %w", err)
	}

	table := make(map[string]*directory.Account, len(lines))
	for _, line := range lines {
		acc, ok := parseAccountLine(line)
		if !ok {
			continue
		}
		table[acc.Username] = acc
	}
	s.accounts = table
	return nil
}

// Save writes the full directory back to disk, truncating prior content.
func (s *AccountStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.accounts))
	for name := range s.accounts {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		a := s.accounts[name]
		lines = append(lines, fmt.Sprintf("%s|%s|%s|%t|%d|%t",
			a.Username, a.PasswordHash, a.FullName, a.IsAdmin, a.WalletID, a.MustChangePassword))
	}
	if err := writeSnapshot(s.path, lines); err != nil {
		return fmt.Errorf("save account directory: %w", err)
	}
	return nil
}

// Create registers a new account
func (s *AccountStore) Create(ctx context.Context, acc *directory.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[acc.Username]; exists {
		return directory.ErrDuplicateUsername{Username: acc.Username}
	}
	copied := *acc
	s.accounts[acc.Username] = &copied
	return nil
}

// Get returns a copy of the account with the given username
func (s *AccountStore) Get(ctx context.Context, username string) (*directory.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return nil, directory.ErrAccountNotFound{Username: username}
	}
	copied := *acc
	return &copied, nil
}

// Update replaces the stored account with the same username
func (s *AccountStore) Update(ctx context.Context, acc *directory.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[acc.Username]; !ok {
		return directory.ErrAccountNotFound{Username: acc.Username}
	}
	copied := *acc
	s.accounts[acc.Username] = &copied
	return nil
}

// All returns copies of every account in username order
func (s *AccountStore) All(ctx context.Context) ([]*directory.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.accounts))
	for name := range s.accounts {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*directory.Account, 0, len(names))
	for _, name := range names {
		copied := *s.accounts[name]
		out = append(out, &copied)
	}
	return out, nil
}

func parseAccountLine(line string) (*directory.Account, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 6 || parts[0] == "" {
		return nil, false
	}
	isAdmin, err := strconv.ParseBool(parts[3])
	if err != nil {
		return nil, false
	}
	walletID, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return nil, false
	}
	mustChange, err := strconv.ParseBool(parts[5])
	if err != nil {
		return nil, false
	}
	return &directory.Account{
		Username:           parts[0],
		PasswordHash:       parts[1],
		FullName:           parts[2],
		IsAdmin:            isAdmin,
		WalletID:           walletID,
		MustChangePassword: mustChange,
	}, true
}
