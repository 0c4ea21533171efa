// Package main provides the walletd binary entry point: an interactive
// points-wallet console plus a non-interactive top-up reconciliation
// command.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/points-wallet-ledger/internal/config"
	"github.com/points-wallet-ledger/internal/console"
	"github.com/points-wallet-ledger/internal/data/flatfile"
	"github.com/points-wallet-ledger/internal/domain/topup"
	"github.com/points-wallet-ledger/internal/logger"
	"github.com/points-wallet-ledger/internal/otp"
	"github.com/points-wallet-ledger/internal/service"
)

type app struct {
	cfg       *config.Config
	log       *slog.Logger
	wallets   *flatfile.WalletStore
	accounts  *flatfile.AccountStore
	txlog     *flatfile.TransactionLog
	codes     *otp.Service
	accountsS *service.AccountService
	transfers *service.TransferService
	topups    *service.TopUpService
	updates   *service.UpdateService
}

// newApp loads configuration and wires every store and service. The stores
// are loaded once here; they stay the single writers for their files for
// the life of the process.
func newApp(ctx context.Context, configName string) (*app, error) {
	cfg, err := config.LoadConfig(configName)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log := logger.NewLogger(cfg)

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	wallets := flatfile.NewWalletStore(log, cfg.Storage.WalletPath(), cfg.Ledger.SeedBalance)
	if err := wallets.Load(ctx); err != nil {
		return nil, err
	}
	accounts := flatfile.NewAccountStore(cfg.Storage.AccountPath())
	if err := accounts.Load(ctx); err != nil {
		return nil, err
	}

	txlog := flatfile.NewTransactionLog(cfg.Storage.LogPath())
	topupQueue := flatfile.NewTopUpQueue(cfg.Storage.TopUpQueuePath())
	updateQueue := flatfile.NewUpdateQueue(cfg.Storage.UpdateQueuePath())
	codes := otp.NewService(cfg.Codes.Length)

	return &app{
		cfg:       cfg,
		log:       log,
		wallets:   wallets,
		accounts:  accounts,
		txlog:     txlog,
		codes:     codes,
		accountsS: service.NewAccountService(accounts, wallets, codes, log),
		transfers: service.NewTransferService(wallets, txlog, codes, log),
		topups:    service.NewTopUpService(wallets, topupQueue, txlog, log),
		updates:   service.NewUpdateService(accounts, updateQueue, codes, cfg.Updates.ApplyOnConfirm, log),
	}, nil
}

// flush writes the in-memory tables back to disk on shutdown. Mutating
// operations already save as they go; this covers the final state.
func (a *app) flush(ctx context.Context) {
	if err := a.wallets.Save(ctx); err != nil {
		a.log.Error("final wallet table flush failed", "error", err)
	}
	if err := a.accounts.Save(ctx); err != nil {
		a.log.Error("final account directory flush failed", "error", err)
	}
}

func main() {
	var configName string

	rootCmd := &cobra.Command{
		Use:   "walletd",
		Short: "Points wallet ledger console",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, configName)
			if err != nil {
				return err
			}
			defer a.flush(ctx)

			ui := console.New(os.Stdin, os.Stdout, a.accountsS, a.transfers, a.topups, a.updates, a.wallets, a.txlog, a.codes, a.log)
			return ui.Run(ctx)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configName, "config", "walletd", "configuration name (loads <name>.env)")

	approveCmd := &cobra.Command{
		Use:   "approve",
		Short: "Run one top-up approval pass without the console",
		RunE: func(cmd *cobra.Command, args []string) error {
			walletID, err := cmd.Flags().GetInt64("wallet")
			if err != nil {
				return err
			}
			requestID, err := cmd.Flags().GetString("request")
			if err != nil {
				return err
			}

			var sel topup.Selector
			switch {
			case requestID != "":
				sel = topup.ByRequestID(requestID)
			case cmd.Flags().Changed("wallet"):
				sel = topup.ByWalletID(walletID)
			default:
				return fmt.Errorf("one of --wallet or --request is required")
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, configName)
			if err != nil {
				return err
			}
			defer a.flush(ctx)

			result, err := a.topups.ApproveMatching(ctx, sel)
			if err != nil {
				return err
			}
			for _, r := range result.Applied {
				fmt.Printf("applied %s: wallet %d amount %d\n", r.ID, r.WalletID, r.Amount)
			}
			for _, r := range result.Deferred {
				fmt.Printf("deferred %s: wallet %d amount %d\n", r.ID, r.WalletID, r.Amount)
			}
			return nil
		},
	}
	approveCmd.Flags().Int64("wallet", 0, "approve every request for this wallet id")
	approveCmd.Flags().String("request", "", "approve the request with this id")
	rootCmd.AddCommand(approveCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
