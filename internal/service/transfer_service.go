package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/points-wallet-ledger/internal/domain/ledger"
	"github.com/points-wallet-ledger/internal/domain/wallet"
	"github.com/points-wallet-ledger/internal/otp"
)

// TransferService moves points between two existing wallets, gated by a
// one-time code issued immediately before the call.
type TransferService struct {
	wallets wallet.Store
	log     ledger.Log
	codes   *otp.Service
	logger  *slog.Logger
}

// NewTransferService creates a new transfer service
func NewTransferService(wallets wallet.Store, log ledger.Log, codes *otp.Service, logger *slog.Logger) *TransferService {
	return &TransferService{
		wallets: wallets,
		log:     log,
		codes:   codes,
		logger:  logger,
	}
}

// Transfer debits amount from one wallet and credits it to another. The
// supplied code must match the issued one; on any failed check nothing is
// mutated and nothing is logged. One log line is appended per side and the
// wallet table is persisted once.
func (s *TransferService) Transfer(ctx context.Context, from, to int64, amount int64, issued, supplied string) error {
	if !s.codes.Verify(issued, supplied) {
		s.logger.Warn("transfer rejected, code mismatch", "from", from, "to", to)
		return ErrCodeMismatch
	}

	if err := s.wallets.Move(ctx, from, to, amount); err != nil {
		s.logger.Warn("transfer rejected", "from", from, "to", to, "amount", amount, "error", err)
		return err
	}
	s.logger.Info("transfer applied", "from", from, "to", to, "amount", amount)

	// Log-append and save failures are surfaced, but the in-memory balances
	// already moved; the table is still saved so memory and disk converge.
	var appendErr error
	if err := s.log.Append(ctx, from, fmt.Sprintf("Sent %d to %d", amount, to)); err != nil {
		appendErr = err
	}
	if err := s.log.Append(ctx, to, fmt.Sprintf("Received %d from %d", amount, from)); err != nil && appendErr == nil {
		appendErr = err
	}

	if err := s.wallets.Save(ctx); err != nil {
		return err
	}
	return appendErr
}
