package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/points-wallet-ledger/internal/domain/ledger"
	"github.com/points-wallet-ledger/internal/domain/topup"
	"github.com/points-wallet-ledger/internal/domain/wallet"
)

// TopUpService owns the top-up request queue and the approval pass that
// settles requests against the central wallet.
type TopUpService struct {
	wallets wallet.Store
	queue   topup.Queue
	log     ledger.Log
	logger  *slog.Logger
}

// NewTopUpService creates a new top-up service
func NewTopUpService(wallets wallet.Store, queue topup.Queue, log ledger.Log, logger *slog.Logger) *TopUpService {
	return &TopUpService{
		wallets: wallets,
		queue:   queue,
		log:     log,
		logger:  logger,
	}
}

// ApprovalResult reports the outcome of one approval pass.
type ApprovalResult struct {
	Applied  []topup.Request
	Deferred []topup.Request
}

// Submit queues a top-up request for the given wallet. No balance moves
// until an admin approval pass applies it. The target wallet's existence is
// not checked here; a request naming a missing wallet is deferred at
// approval time. The central wallet is never a valid target: approving such
// a request would move points from the central wallet to itself.
func (s *TopUpService) Submit(ctx context.Context, walletID int64, amount int64) (topup.Request, error) {
	if amount <= 0 {
		return topup.Request{}, topup.ErrInvalidAmount
	}
	if walletID == wallet.CentralID {
		return topup.Request{}, ErrCentralTarget
	}

	req := topup.Request{
		ID:          uuid.NewString(),
		WalletID:    walletID,
		Amount:      amount,
		RequestedAt: time.Now(),
	}
	if err := s.queue.Append(ctx, req); err != nil {
		return topup.Request{}, err
	}
	s.logger.Info("top-up request submitted", "request_id", req.ID, "wallet_id", walletID, "amount", amount)
	return req, nil
}

// ListPending returns every outstanding request in queue order.
func (s *TopUpService) ListPending(ctx context.Context) ([]topup.Request, error) {
	return s.queue.List(ctx)
}

// ApproveMatching runs one approval pass over the queue. Every request the
// selector matches is applied against the central wallet if the target
// wallet exists and the central balance covers the amount; otherwise it is
// deferred and stays pending. Non-matching requests always stay pending.
// The queue is rewritten with exactly the still-pending requests in their
// original relative order, and the wallet table is persisted once after the
// whole pass. A request leaves the queue if and only if it was applied.
func (s *TopUpService) ApproveMatching(ctx context.Context, sel topup.Selector) (ApprovalResult, error) {
	reqs, err := s.queue.List(ctx)
	if err != nil {
		return ApprovalResult{}, err
	}

	var result ApprovalResult
	remaining := make([]topup.Request, 0, len(reqs))
	for _, req := range reqs {
		if !sel.Matches(req) {
			remaining = append(remaining, req)
			continue
		}

		if err := s.wallets.Move(ctx, wallet.CentralID, req.WalletID, req.Amount); err != nil {
			s.logger.Warn("top-up deferred", "request_id", req.ID, "wallet_id", req.WalletID, "amount", req.Amount, "error", err)
			result.Deferred = append(result.Deferred, req)
			remaining = append(remaining, req)
			continue
		}

		s.logApproval(ctx, req.WalletID, req.Amount)
		s.logger.Info("top-up applied", "request_id", req.ID, "wallet_id", req.WalletID, "amount", req.Amount)
		result.Applied = append(result.Applied, req)
	}

	if err := s.queue.Replace(ctx, remaining); err != nil {
		return result, err
	}
	if len(result.Applied) > 0 {
		if err := s.wallets.Save(ctx); err != nil {
			return result, err
		}
	}
	return result, nil
}

// DirectTopUp moves points from the central wallet into a user wallet
// immediately, without going through the request queue.
func (s *TopUpService) DirectTopUp(ctx context.Context, walletID int64, amount int64) error {
	if walletID == wallet.CentralID {
		return ErrCentralTarget
	}
	if err := s.wallets.Move(ctx, wallet.CentralID, walletID, amount); err != nil {
		return err
	}
	s.logApproval(ctx, walletID, amount)
	s.logger.Info("direct top-up applied", "wallet_id", walletID, "amount", amount)
	return s.wallets.Save(ctx)
}

func (s *TopUpService) logApproval(ctx context.Context, walletID int64, amount int64) {
	if err := s.log.Append(ctx, wallet.CentralID, fmt.Sprintf("Debited %d to wallet %d", amount, walletID)); err != nil {
		s.logger.Error("failed to log central debit", "wallet_id", walletID, "error", err)
	}
	if err := s.log.Append(ctx, walletID, fmt.Sprintf("Received %d from central", amount)); err != nil {
		s.logger.Error("failed to log wallet credit", "wallet_id", walletID, "error", err)
	}
}
