package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/points-wallet-ledger/internal/domain/directory"
	"github.com/points-wallet-ledger/internal/domain/update"
	"github.com/points-wallet-ledger/internal/otp"
)

// UpdateService owns the pending-update queue: admin-proposed profile
// changes held until the target user confirms with the matching one-time
// code. Whether the change applies at proposal or at confirmation is a
// policy decision fixed at construction; applying on confirmation is the
// default.
type UpdateService struct {
	accounts       directory.Repository
	queue          update.Queue
	codes          *otp.Service
	applyOnConfirm bool
	logger         *slog.Logger
}

// NewUpdateService creates a new pending-update service
func NewUpdateService(accounts directory.Repository, queue update.Queue, codes *otp.Service, applyOnConfirm bool, logger *slog.Logger) *UpdateService {
	return &UpdateService{
		accounts:       accounts,
		queue:          queue,
		codes:          codes,
		applyOnConfirm: applyOnConfirm,
		logger:         logger,
	}
}

// Propose queues a full-name change for the named account and returns the
// proposal carrying its one-time code, to be relayed to the user.
func (s *UpdateService) Propose(ctx context.Context, username, fullName string) (update.Proposal, error) {
	if _, err := s.accounts.Get(ctx, username); err != nil {
		return update.Proposal{}, err
	}

	p := update.Proposal{
		ID:       uuid.NewString(),
		Code:     s.codes.Issue(),
		Username: username,
		FullName: fullName,
	}
	if err := s.queue.Append(ctx, p); err != nil {
		return update.Proposal{}, err
	}

	if !s.applyOnConfirm {
		// Legacy policy: the change takes effect immediately and the queue
		// entry only tracks the outstanding acknowledgement.
		if err := s.applyFullName(ctx, username, fullName); err != nil {
			return update.Proposal{}, err
		}
	}

	s.logger.Info("profile update proposed", "proposal_id", p.ID, "username", username)
	return p, nil
}

// ListAll returns every pending proposal in queue order.
func (s *UpdateService) ListAll(ctx context.Context) ([]update.Proposal, error) {
	return s.queue.List(ctx)
}

// ListFor returns the pending proposals targeting the given account, in
// queue order.
func (s *UpdateService) ListFor(ctx context.Context, username string) ([]update.Proposal, error) {
	ps, err := s.queue.List(ctx)
	if err != nil {
		return nil, err
	}
	var mine []update.Proposal
	for _, p := range ps {
		if p.Username == username {
			mine = append(mine, p)
		}
	}
	return mine, nil
}

// Confirm scans the queue for a proposal targeting the named account whose
// code matches. The first match is applied and dropped; every other entry,
// including later duplicates of the same code, is rewritten back unchanged.
// It returns whether a proposal was applied; a wrong code leaves the queue
// and the profile untouched.
func (s *UpdateService) Confirm(ctx context.Context, username, suppliedCode string) (bool, error) {
	ps, err := s.queue.List(ctx)
	if err != nil {
		return false, err
	}

	applied := false
	remaining := make([]update.Proposal, 0, len(ps))
	for _, p := range ps {
		if applied || p.Username != username || !s.codes.Verify(p.Code, suppliedCode) {
			remaining = append(remaining, p)
			continue
		}

		if s.applyOnConfirm {
			if err := s.applyFullName(ctx, p.Username, p.FullName); err != nil {
				if errors.As(err, &directory.ErrAccountNotFound{}) {
					// The target account vanished since the proposal was
					// made; the entry is spent either way.
					s.logger.Warn("confirmed proposal targets missing account", "proposal_id", p.ID, "username", p.Username)
					continue
				}
				return false, err
			}
		}
		s.logger.Info("profile update confirmed", "proposal_id", p.ID, "username", p.Username)
		applied = true
	}

	if err := s.queue.Replace(ctx, remaining); err != nil {
		return applied, err
	}
	return applied, nil
}

// Discard removes the proposal with the given id without applying it. It
// returns whether an entry was removed.
func (s *UpdateService) Discard(ctx context.Context, id string) (bool, error) {
	ps, err := s.queue.List(ctx)
	if err != nil {
		return false, err
	}

	removed := false
	remaining := make([]update.Proposal, 0, len(ps))
	for _, p := range ps {
		if p.ID == id {
			removed = true
			continue
		}
		remaining = append(remaining, p)
	}
	if !removed {
		return false, nil
	}

	if err := s.queue.Replace(ctx, remaining); err != nil {
		return false, err
	}
	s.logger.Info("profile update discarded", "proposal_id", id)
	return true, nil
}

func (s *UpdateService) applyFullName(ctx context.Context, username, fullName string) error {
	acc, err := s.accounts.Get(ctx, username)
	if err != nil {
		return err
	}
	acc.FullName = fullName
	if err := s.accounts.Update(ctx, acc); err != nil {
		return err
	}
	return s.accounts.Save(ctx)
}
