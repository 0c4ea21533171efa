package flatfile

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/points-wallet-ledger/internal/domain/wallet"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestWalletStore(t *testing.T, seed int64) (*WalletStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallets.db")
	return NewWalletStore(testLogger(), path, seed), path
}

func TestWalletStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("SeedsCentralWalletOnFirstRun", func(t *testing.T) {
		store, _ := newTestWalletStore(t, 1000000)
		require.NoError(t, store.Load(ctx))

		central, err := store.Get(ctx, wallet.CentralID)
		require.NoError(t, err)
		assert.Equal(t, int64(1000000), central.Balance)
	})

	t.Run("ReadsExistingTable", func(t *testing.T) {
		store, path := newTestWalletStore(t, 1000000)
		require.NoError(t, os.WriteFile(path, []byte("0 500\n1 100\n2 0\n"), 0o644))
		require.NoError(t, store.Load(ctx))

		central, err := store.Get(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(500), central.Balance, "existing central wallet must not be re-seeded")

		w1, err := store.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(100), w1.Balance)
	})

	t.Run("SkipsMalformedLines", func(t *testing.T) {
		store, path := newTestWalletStore(t, 10)
		require.NoError(t, os.WriteFile(path, []byte("0 500\nnot a wallet\n3 abc\n4 -9\n5 25\n"), 0o644))
		require.NoError(t, store.Load(ctx))

		all, err := store.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, int64(0), all[0].ID)
		assert.Equal(t, int64(5), all[1].ID)
	})

	t.Run("DiscardsUnsavedMutationOnReload", func(t *testing.T) {
		store, _ := newTestWalletStore(t, 100)
		require.NoError(t, store.Load(ctx))
		require.NoError(t, store.Save(ctx))
		require.NoError(t, store.Credit(ctx, wallet.CentralID, 50))

		require.NoError(t, store.Load(ctx))
		central, err := store.Get(ctx, wallet.CentralID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), central.Balance)
	})
}

func TestWalletStore_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, path := newTestWalletStore(t, 777)
	require.NoError(t, store.Load(ctx))

	w, err := store.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), w.ID)
	require.NoError(t, store.Credit(ctx, w.ID, 42))
	require.NoError(t, store.Save(ctx))

	reloaded := NewWalletStore(testLogger(), path, 0)
	require.NoError(t, reloaded.Load(ctx))

	got, err := reloaded.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Balance)

	central, err := reloaded.Get(ctx, wallet.CentralID)
	require.NoError(t, err)
	assert.Equal(t, int64(777), central.Balance)
}

func TestWalletStore_SaveKeepsPreviousGeneration(t *testing.T) {
	ctx := context.Background()
	store, path := newTestWalletStore(t, 100)
	require.NoError(t, store.Load(ctx))
	require.NoError(t, store.Save(ctx))

	require.NoError(t, store.Credit(ctx, wallet.CentralID, 50))
	require.NoError(t, store.Save(ctx))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0 150\n", string(current))

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "0 100\n", string(backup))
}

func TestWalletStore_Create(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestWalletStore(t, 0)
	require.NoError(t, store.Load(ctx))

	first, err := store.Create(ctx)
	require.NoError(t, err)
	second, err := store.Create(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, int64(0), first.Balance)
}

func TestWalletStore_Move(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *WalletStore {
		store, _ := newTestWalletStore(t, 100)
		require.NoError(t, store.Load(ctx))
		w, err := store.Create(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(1), w.ID)
		return store
	}

	t.Run("MovesBetweenWallets", func(t *testing.T) {
		store := setup(t)
		require.NoError(t, store.Move(ctx, 0, 1, 40))

		central, _ := store.Get(ctx, 0)
		target, _ := store.Get(ctx, 1)
		assert.Equal(t, int64(60), central.Balance)
		assert.Equal(t, int64(40), target.Balance)
	})

	t.Run("RejectsMissingSource", func(t *testing.T) {
		store := setup(t)
		err := store.Move(ctx, 9, 1, 10)
		assert.Equal(t, wallet.ErrWalletNotFound{WalletID: 9}, err)
	})

	t.Run("RejectsMissingDestinationWithoutDebit", func(t *testing.T) {
		store := setup(t)
		err := store.Move(ctx, 0, 9, 10)
		assert.Equal(t, wallet.ErrWalletNotFound{WalletID: 9}, err)

		central, _ := store.Get(ctx, 0)
		assert.Equal(t, int64(100), central.Balance)
	})

	t.Run("RejectsInsufficientFunds", func(t *testing.T) {
		store := setup(t)
		err := store.Move(ctx, 0, 1, 101)
		assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)

		central, _ := store.Get(ctx, 0)
		target, _ := store.Get(ctx, 1)
		assert.Equal(t, int64(100), central.Balance)
		assert.Equal(t, int64(0), target.Balance)
	})

	t.Run("PreservesTotalBalance", func(t *testing.T) {
		store := setup(t)
		require.NoError(t, store.Move(ctx, 0, 1, 33))
		require.NoError(t, store.Move(ctx, 1, 0, 5))

		all, err := store.All(ctx)
		require.NoError(t, err)
		var sum int64
		for _, w := range all {
			sum += w.Balance
		}
		assert.Equal(t, int64(100), sum)
	})
}
