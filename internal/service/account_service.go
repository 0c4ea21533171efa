package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/points-wallet-ledger/internal/domain/directory"
	"github.com/points-wallet-ledger/internal/domain/wallet"
	"github.com/points-wallet-ledger/internal/otp"
)

// ErrInvalidName rejects full names that would corrupt the pipe-delimited
// stores.
var ErrInvalidName = errors.New("full name must not contain '|'")

// AccountService manages the account directory: registration, login,
// password rotation, and code-gated self-service profile edits. Non-admin
// accounts get a wallet of their own; admins operate the central wallet.
type AccountService struct {
	accounts directory.Repository
	wallets  wallet.Store
	codes    *otp.Service
	logger   *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accounts directory.Repository, wallets wallet.Store, codes *otp.Service, logger *slog.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		wallets:  wallets,
		codes:    codes,
		logger:   logger,
	}
}

// Register creates an account and, for non-admins, a fresh wallet. When the
// password is blank a temporary one is generated and returned; the account
// is then forced to change it on first login.
func (s *AccountService) Register(ctx context.Context, username, password, fullName string, isAdmin bool) (*directory.Account, string, error) {
	if strings.Contains(fullName, "|") {
		return nil, "", ErrInvalidName
	}
	if _, err := s.accounts.Get(ctx, username); err == nil {
		return nil, "", directory.ErrDuplicateUsername{Username: username}
	} else if !errors.As(err, &directory.ErrAccountNotFound{}) {
		return nil, "", err
	}

	generated := ""
	if password == "" {
		generated = s.codes.Issue()
		password = generated
	}

	// Build and validate the account before any store mutates; a rejected
	// registration must leave no wallet behind.
	acc, err := directory.NewAccount(username, password, fullName, isAdmin, wallet.CentralID)
	if err != nil {
		return nil, "", err
	}
	acc.MustChangePassword = generated != ""

	if !isAdmin {
		w, err := s.wallets.Create(ctx)
		if err != nil {
			return nil, "", err
		}
		acc.WalletID = w.ID
	}

	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, "", err
	}
	if !isAdmin {
		if err := s.wallets.Save(ctx); err != nil {
			return nil, "", err
		}
	}
	if err := s.accounts.Save(ctx); err != nil {
		return nil, "", err
	}

	s.logger.Info("account registered", "username", username, "wallet_id", acc.WalletID, "admin", isAdmin)
	return acc, generated, nil
}

// Login verifies credentials and returns the account. Callers must honor
// MustChangePassword before letting the session proceed.
func (s *AccountService) Login(ctx context.Context, username, password string) (*directory.Account, error) {
	acc, err := s.accounts.Get(ctx, username)
	if err != nil {
		if errors.As(err, &directory.ErrAccountNotFound{}) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !acc.CheckPassword(password) {
		s.logger.Warn("login rejected", "username", username)
		return nil, ErrInvalidCredentials
	}
	return acc, nil
}

// ChangePassword rotates the password after verifying the current one.
func (s *AccountService) ChangePassword(ctx context.Context, username, current, next string) error {
	acc, err := s.accounts.Get(ctx, username)
	if err != nil {
		return err
	}
	if !acc.CheckPassword(current) {
		return ErrInvalidCredentials
	}
	return s.setPassword(ctx, acc, next)
}

// CompleteForcedChange replaces a temporary password without asking for it
// again; the caller has already authenticated with it.
func (s *AccountService) CompleteForcedChange(ctx context.Context, username, next string) error {
	acc, err := s.accounts.Get(ctx, username)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, acc, next)
}

// UpdateOwnName applies a self-service full-name change gated by a one-time
// code issued immediately before the call.
func (s *AccountService) UpdateOwnName(ctx context.Context, username, fullName, issued, supplied string) error {
	if strings.Contains(fullName, "|") {
		return ErrInvalidName
	}
	if !s.codes.Verify(issued, supplied) {
		return ErrCodeMismatch
	}

	acc, err := s.accounts.Get(ctx, username)
	if err != nil {
		return err
	}
	acc.FullName = fullName
	if err := s.accounts.Update(ctx, acc); err != nil {
		return err
	}
	if err := s.accounts.Save(ctx); err != nil {
		return err
	}
	s.logger.Info("profile updated", "username", username)
	return nil
}

// Get returns the account with the given username.
func (s *AccountService) Get(ctx context.Context, username string) (*directory.Account, error) {
	return s.accounts.Get(ctx, username)
}

// Lookup resolves a username to its wallet id and admin flag.
func (s *AccountService) Lookup(ctx context.Context, username string) (int64, bool, error) {
	acc, err := s.accounts.Get(ctx, username)
	if err != nil {
		return 0, false, err
	}
	return acc.WalletID, acc.IsAdmin, nil
}

// List returns every account in username order.
func (s *AccountService) List(ctx context.Context) ([]*directory.Account, error) {
	return s.accounts.All(ctx)
}

func (s *AccountService) setPassword(ctx context.Context, acc *directory.Account, next string) error {
	if err := acc.SetPassword(next); err != nil {
		return err
	}
	acc.MustChangePassword = false
	if err := s.accounts.Update(ctx, acc); err != nil {
		return err
	}
	if err := s.accounts.Save(ctx); err != nil {
		return err
	}
	s.logger.Info("password changed", "username", acc.Username)
	return nil
}
