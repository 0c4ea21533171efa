package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/points-wallet-ledger/internal/data/flatfile"
	"github.com/points-wallet-ledger/internal/otp"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fixture wires every service over real flat-file stores in a temp
// directory, the same shape the binary assembles at startup.
type fixture struct {
	wallets     *flatfile.WalletStore
	accounts    *flatfile.AccountStore
	txlog       *flatfile.TransactionLog
	topupQueue  *flatfile.TopUpQueue
	updateQueue *flatfile.UpdateQueue
	codes       *otp.Service

	accountsSvc *AccountService
	transfers   *TransferService
	topups      *TopUpService
	updates     *UpdateService
}

func newFixture(t *testing.T, centralSeed int64) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	logger := testLogger()

	f := &fixture{
		wallets:     flatfile.NewWalletStore(logger, filepath.Join(dir, "wallets.db"), centralSeed),
		accounts:    flatfile.NewAccountStore(filepath.Join(dir, "users.db")),
		txlog:       flatfile.NewTransactionLog(filepath.Join(dir, "transaction.db")),
		topupQueue:  flatfile.NewTopUpQueue(filepath.Join(dir, "topup_requests.db")),
		updateQueue: flatfile.NewUpdateQueue(filepath.Join(dir, "admin_update_requests.db")),
		codes:       otp.NewService(6),
	}
	require.NoError(t, f.wallets.Load(ctx))
	require.NoError(t, f.accounts.Load(ctx))

	f.accountsSvc = NewAccountService(f.accounts, f.wallets, f.codes, logger)
	f.transfers = NewTransferService(f.wallets, f.txlog, f.codes, logger)
	f.topups = NewTopUpService(f.wallets, f.topupQueue, f.txlog, logger)
	f.updates = NewUpdateService(f.accounts, f.updateQueue, f.codes, true, logger)
	return f
}

// newWallet creates a wallet and credits it with the given balance.
func (f *fixture) newWallet(t *testing.T, balance int64) int64 {
	t.Helper()
	ctx := context.Background()
	w, err := f.wallets.Create(ctx)
	require.NoError(t, err)
	if balance > 0 {
		require.NoError(t, f.wallets.Credit(ctx, w.ID, balance))
	}
	require.NoError(t, f.wallets.Save(ctx))
	return w.ID
}

func (f *fixture) balance(t *testing.T, id int64) int64 {
	t.Helper()
	w, err := f.wallets.Get(context.Background(), id)
	require.NoError(t, err)
	return w.Balance
}

func (f *fixture) totalBalance(t *testing.T) int64 {
	t.Helper()
	all, err := f.wallets.All(context.Background())
	require.NoError(t, err)
	var sum int64
	for _, w := range all {
		sum += w.Balance
	}
	return sum
}
