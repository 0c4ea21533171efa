package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/points-wallet-ledger/internal/domain/directory"
	"github.com/points-wallet-ledger/internal/domain/update"
)

func (f *fixture) registerUser(t *testing.T, username, fullName string) {
	t.Helper()
	_, _, err := f.accountsSvc.Register(context.Background(), username, "password", fullName, false)
	require.NoError(t, err)
}

func TestUpdateService_Propose(t *testing.T) {
	ctx := context.Background()

	t.Run("QueuesProposalWithCode", func(t *testing.T) {
		f := newFixture(t, 0)
		f.registerUser(t, "alice", "Alice")

		p, err := f.updates.Propose(ctx, "alice", "Alice B")
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Len(t, p.Code, 6)

		pending, err := f.updates.ListFor(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "Alice B", pending[0].FullName)

		// Apply-on-confirm policy: the profile is untouched until confirmed
		acc, err := f.accountsSvc.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice", acc.FullName)
	})

	t.Run("RejectsUnknownAccount", func(t *testing.T) {
		f := newFixture(t, 0)
		_, err := f.updates.Propose(ctx, "ghost", "Ghost")
		assert.Equal(t, directory.ErrAccountNotFound{Username: "ghost"}, err)
	})

	t.Run("LegacyPolicyAppliesImmediately", func(t *testing.T) {
		f := newFixture(t, 0)
		f.registerUser(t, "alice", "Alice")
		legacy := NewUpdateService(f.accounts, f.updateQueue, f.codes, false, testLogger())

		_, err := legacy.Propose(ctx, "alice", "Alice B")
		require.NoError(t, err)

		acc, err := f.accountsSvc.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice B", acc.FullName)
	})
}

func TestUpdateService_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("AppliesAndRemovesOnMatchingCode", func(t *testing.T) {
		f := newFixture(t, 0)
		f.registerUser(t, "alice", "Alice")
		p, err := f.updates.Propose(ctx, "alice", "Alice B")
		require.NoError(t, err)

		applied, err := f.updates.Confirm(ctx, "alice", p.Code)
		require.NoError(t, err)
		assert.True(t, applied)

		acc, err := f.accountsSvc.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice B", acc.FullName)

		pending, err := f.updates.ListFor(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("SecondConfirmReportsExpired", func(t *testing.T) {
		f := newFixture(t, 0)
		f.registerUser(t, "alice", "Alice")
		p, err := f.updates.Propose(ctx, "alice", "Alice B")
		require.NoError(t, err)

		applied, err := f.updates.Confirm(ctx, "alice", p.Code)
		require.NoError(t, err)
		require.True(t, applied)

		applied, err = f.updates.Confirm(ctx, "alice", p.Code)
		require.NoError(t, err)
		assert.False(t, applied)
	})

	t.Run("WrongCodeLeavesQueueAndProfileUnchanged", func(t *testing.T) {
		f := newFixture(t, 0)
		f.registerUser(t, "alice", "Alice")
		_, err := f.updates.Propose(ctx, "alice", "Alice B")
		require.NoError(t, err)

		applied, err := f.updates.Confirm(ctx, "alice", "WRONG1")
		require.NoError(t, err)
		assert.False(t, applied)

		acc, err := f.accountsSvc.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice", acc.FullName)

		pending, err := f.updates.ListFor(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, pending, 1)
	})

	t.Run("OtherAccountsEntriesSurviveTheScan", func(t *testing.T) {
		f := newFixture(t, 0)
		f.registerUser(t, "alice", "Alice")
		f.registerUser(t, "bob", "Bob")

		pAlice, err := f.updates.Propose(ctx, "alice", "Alice B")
		require.NoError(t, err)
		_, err = f.updates.Propose(ctx, "bob", "Bob B")
		require.NoError(t, err)

		applied, err := f.updates.Confirm(ctx, "alice", pAlice.Code)
		require.NoError(t, err)
		require.True(t, applied)

		bobPending, err := f.updates.ListFor(ctx, "bob")
		require.NoError(t, err)
		assert.Len(t, bobPending, 1)

		bob, err := f.accountsSvc.Get(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "Bob", bob.FullName)
	})

	t.Run("DuplicateCodesResolveOneAtATime", func(t *testing.T) {
		f := newFixture(t, 0)
		f.registerUser(t, "alice", "Alice")

		// Two proposals sharing a code, queued behind the repository
		// directly since the service always issues fresh codes
		require.NoError(t, f.updateQueue.Append(ctx, update.Proposal{ID: "id-1", Code: "SAME12", Username: "alice", FullName: "First"}))
		require.NoError(t, f.updateQueue.Append(ctx, update.Proposal{ID: "id-2", Code: "SAME12", Username: "alice", FullName: "Second"}))

		applied, err := f.updates.Confirm(ctx, "alice", "SAME12")
		require.NoError(t, err)
		require.True(t, applied)

		acc, err := f.accountsSvc.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "First", acc.FullName, "only the first match in queue order applies")

		pending, err := f.updates.ListFor(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "id-2", pending[0].ID)
	})
}

func TestUpdateService_Discard(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesWithoutApplying", func(t *testing.T) {
		f := newFixture(t, 0)
		f.registerUser(t, "alice", "Alice")
		p, err := f.updates.Propose(ctx, "alice", "Alice B")
		require.NoError(t, err)

		removed, err := f.updates.Discard(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		acc, err := f.accountsSvc.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "Alice", acc.FullName)

		pending, err := f.updates.ListFor(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("UnknownIDIsReported", func(t *testing.T) {
		f := newFixture(t, 0)
		removed, err := f.updates.Discard(ctx, "no-such-id")
		require.NoError(t, err)
		assert.False(t, removed)
	})
}
