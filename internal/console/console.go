// Package console implements the interactive menu loop. It renders prompts,
// reads operator input, and dispatches to the services; every mutation goes
// through exactly one service call.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/points-wallet-ledger/internal/domain/directory"
	"github.com/points-wallet-ledger/internal/domain/ledger"
	"github.com/points-wallet-ledger/internal/domain/topup"
	"github.com/points-wallet-ledger/internal/domain/wallet"
	"github.com/points-wallet-ledger/internal/otp"
	"github.com/points-wallet-ledger/internal/service"
)

// Console drives the interactive session over an input/output pair.
type Console struct {
	in        *bufio.Reader
	out       io.Writer
	accounts  *service.AccountService
	transfers *service.TransferService
	topups    *service.TopUpService
	updates   *service.UpdateService
	wallets   wallet.Store
	log       ledger.Log
	codes     *otp.Service
	logger    *slog.Logger
}

// New creates a console bound to the given streams and services.
func New(
	in io.Reader,
	out io.Writer,
	accounts *service.AccountService,
	transfers *service.TransferService,
	topups *service.TopUpService,
	updates *service.UpdateService,
	wallets wallet.Store,
	log ledger.Log,
	codes *otp.Service,
	logger *slog.Logger,
) *Console {
	return &Console{
		in:        bufio.NewReader(in),
		out:       out,
		accounts:  accounts,
		transfers: transfers,
		topups:    topups,
		updates:   updates,
		wallets:   wallets,
		log:       log,
		codes:     codes,
		logger:    logger,
	}
}

// Run loops on the main menu until the operator exits or input ends.
func (c *Console) Run(ctx context.Context) error {
	for {
		c.printf("\nMain Menu:\n 1. Register User\n 2. Register Admin\n 3. Login\n 4. Exit\nChoice: ")
		choice, err := c.readLine()
		if err != nil {
			return nil
		}
		switch choice {
		case "1":
			c.register(ctx, false)
		case "2":
			c.register(ctx, true)
		case "3":
			acc, err := c.login(ctx)
			if err != nil || acc == nil {
				continue
			}
			if acc.IsAdmin {
				c.adminMenu(ctx, acc)
			} else {
				c.userMenu(ctx, acc)
			}
		case "4":
			return nil
		default:
			c.printf("Invalid selection.\n")
		}
	}
}

func (c *Console) register(ctx context.Context, asAdmin bool) {
	username := c.prompt("Username: ")
	password := c.prompt("Password (leave blank for auto-generation): ")
	fullName := c.prompt("Full name: ")

	acc, generated, err := c.accounts.Register(ctx, username, password, fullName, asAdmin)
	if err != nil {
		c.printf("Registration failed: %v\n", err)
		return
	}
	if generated != "" {
		c.printf("Generated password: %s (must be changed on first login)\n", generated)
	}
	if acc.IsAdmin {
		c.printf("Admin '%s' created.\n", acc.Username)
	} else {
		c.printf("User '%s' created with wallet ID %d.\n", acc.Username, acc.WalletID)
	}
}

func (c *Console) login(ctx context.Context) (*directory.Account, error) {
	username := c.prompt("Username: ")
	password := c.prompt("Password: ")

	acc, err := c.accounts.Login(ctx, username, password)
	if err != nil {
		c.printf("Invalid credentials.\n")
		return nil, nil
	}
	if acc.MustChangePassword {
		c.printf("Temporary password detected. Please set a new password.\n")
		next := c.prompt("New password: ")
		if err := c.accounts.CompleteForcedChange(ctx, acc.Username, next); err != nil {
			c.printf("Password change failed: %v\n", err)
			return nil, nil
		}
		c.printf("Password updated. Please log in again.\n")
		return nil, nil
	}
	return acc, nil
}

func (c *Console) userMenu(ctx context.Context, acc *directory.Account) {
	for {
		c.printf("\nUser Menu (%s):\n 1. View Info\n 2. Change Password\n 3. Update Info\n 4. View Wallet\n 5. Transfer Points\n 6. Request Top-up\n 7. Review Pending Updates\n 8. Logout\nChoice: ", acc.Username)
		choice, err := c.readLine()
		if err != nil {
			return
		}
		switch choice {
		case "1":
			c.viewInfo(ctx, acc.Username)
		case "2":
			c.changePassword(ctx, acc.Username)
		case "3":
			c.updateOwnInfo(ctx, acc.Username)
		case "4":
			c.viewWallet(ctx, acc.WalletID)
		case "5":
			c.transfer(ctx, acc.WalletID)
		case "6":
			c.requestTopUp(ctx, acc.WalletID)
		case "7":
			c.reviewPendingUpdates(ctx, acc.Username)
		case "8":
			return
		default:
			c.printf("Invalid selection.\n")
		}
	}
}

func (c *Console) adminMenu(ctx context.Context, acc *directory.Account) {
	for {
		c.printf("\nAdmin Menu (%s):\n 1. List Accounts\n 2. Create User\n 3. Propose Profile Update\n 4. Review Proposed Updates\n 5. View Central Wallet\n 6. Top-up User Wallet\n 7. List Top-up Requests\n 8. Approve Top-ups\n 9. Logout\nChoice: ", acc.Username)
		choice, err := c.readLine()
		if err != nil {
			return
		}
		switch choice {
		case "1":
			c.listAccounts(ctx)
		case "2":
			c.register(ctx, false)
		case "3":
			c.proposeUpdate(ctx)
		case "4":
			c.reviewProposals(ctx)
		case "5":
			c.viewWallet(ctx, wallet.CentralID)
		case "6":
			c.directTopUp(ctx)
		case "7":
			c.listTopUps(ctx)
		case "8":
			c.approveTopUps(ctx)
		case "9":
			return
		default:
			c.printf("Invalid selection.\n")
		}
	}
}

func (c *Console) viewInfo(ctx context.Context, username string) {
	acc, err := c.accounts.Get(ctx, username)
	if err != nil {
		c.printf("Failed to read account: %v\n", err)
		return
	}
	c.printf("Username: %s | Name: %s | Wallet: %d\n", acc.Username, acc.FullName, acc.WalletID)
}

func (c *Console) changePassword(ctx context.Context, username string) {
	current := c.prompt("Current password: ")
	next := c.prompt("New password: ")
	if err := c.accounts.ChangePassword(ctx, username, current, next); err != nil {
		c.printf("Password change failed: %v\n", err)
		return
	}
	c.printf("Password successfully changed.\n")
}

func (c *Console) updateOwnInfo(ctx context.Context, username string) {
	code := c.codes.Issue()
	c.printf("One-time code: %s\n", code)
	supplied := c.prompt("Enter code: ")
	fullName := c.prompt("New full name: ")
	if err := c.accounts.UpdateOwnName(ctx, username, fullName, code, supplied); err != nil {
		c.printf("Update failed: %v\n", err)
		return
	}
	c.printf("Personal information updated.\n")
}

func (c *Console) viewWallet(ctx context.Context, walletID int64) {
	w, err := c.wallets.Get(ctx, walletID)
	if err != nil {
		c.printf("Wallet unavailable: %v\n", err)
		return
	}
	c.printf("Wallet ID: %d | Balance: %d\nHistory:\n", w.ID, w.Balance)
	entries, err := c.log.ListByWallet(ctx, walletID)
	if err != nil {
		c.printf("Failed to read history: %v\n", err)
		return
	}
	for _, e := range entries {
		c.printf(" - [%s] %s\n", e.Time.Format("2006-01-02 15:04:05"), e.Text)
	}
}

func (c *Console) transfer(ctx context.Context, fromID int64) {
	dest, ok := c.promptInt64("Destination wallet ID: ")
	if !ok {
		return
	}
	amount, ok := c.promptInt64("Amount: ")
	if !ok {
		return
	}

	code := c.codes.Issue()
	c.printf("One-time code: %s\n", code)
	supplied := c.prompt("Enter code: ")

	if err := c.transfers.Transfer(ctx, fromID, dest, amount, code, supplied); err != nil {
		c.printf("Transfer failed: %v\n", err)
		return
	}
	c.printf("Transfer completed.\n")
}

func (c *Console) requestTopUp(ctx context.Context, walletID int64) {
	amount, ok := c.promptInt64("Amount to request: ")
	if !ok {
		return
	}
	req, err := c.topups.Submit(ctx, walletID, amount)
	if err != nil {
		c.printf("Request failed: %v\n", err)
		return
	}
	c.printf("Top-up request %s submitted. Please wait for admin approval.\n", req.ID)
}

func (c *Console) reviewPendingUpdates(ctx context.Context, username string) {
	ps, err := c.updates.ListFor(ctx, username)
	if err != nil {
		c.printf("Failed to read pending updates: %v\n", err)
		return
	}
	if len(ps) == 0 {
		c.printf("No pending updates.\n")
		return
	}
	for _, p := range ps {
		c.printf(" - Proposed name: %s\n", p.FullName)
	}
	supplied := c.prompt("Enter code to confirm: ")
	applied, err := c.updates.Confirm(ctx, username, supplied)
	if err != nil {
		c.printf("Confirmation failed: %v\n", err)
		return
	}
	if !applied {
		c.printf("Invalid or expired code.\n")
		return
	}
	c.printf("Personal information updated.\n")
}

func (c *Console) listAccounts(ctx context.Context) {
	accs, err := c.accounts.List(ctx)
	if err != nil {
		c.printf("Failed to read accounts: %v\n", err)
		return
	}
	for _, a := range accs {
		role := "User"
		if a.IsAdmin {
			role = "Admin"
		}
		c.printf(" - %s (%s) wallet %d\n", a.Username, role, a.WalletID)
	}
}

func (c *Console) proposeUpdate(ctx context.Context) {
	username := c.prompt("Username to modify: ")
	fullName := c.prompt("New full name: ")
	p, err := c.updates.Propose(ctx, username, fullName)
	if err != nil {
		c.printf("Proposal failed: %v\n", err)
		return
	}
	c.printf("Code %s has been generated and sent to the user.\n", p.Code)
}

func (c *Console) reviewProposals(ctx context.Context) {
	ps, err := c.updates.ListAll(ctx)
	if err != nil {
		c.printf("Failed to read proposals: %v\n", err)
		return
	}
	if len(ps) == 0 {
		c.printf("No pending proposals.\n")
		return
	}
	for _, p := range ps {
		c.printf(" - %s: %s -> %s\n", p.ID, p.Username, p.FullName)
	}
	id := c.prompt("Proposal ID to discard (blank to keep all): ")
	if id == "" {
		return
	}
	removed, err := c.updates.Discard(ctx, id)
	if err != nil {
		c.printf("Discard failed: %v\n", err)
		return
	}
	if !removed {
		c.printf("No such proposal.\n")
		return
	}
	c.printf("Proposal discarded.\n")
}

func (c *Console) directTopUp(ctx context.Context) {
	walletID, ok := c.promptInt64("User wallet ID: ")
	if !ok {
		return
	}
	amount, ok := c.promptInt64("Amount to top-up: ")
	if !ok {
		return
	}
	if err := c.topups.DirectTopUp(ctx, walletID, amount); err != nil {
		c.printf("Top-up failed: %v\n", err)
		return
	}
	central, err := c.wallets.Get(ctx, wallet.CentralID)
	if err == nil {
		c.printf("Top-up successful. Remaining central balance: %d\n", central.Balance)
	}
}

func (c *Console) listTopUps(ctx context.Context) {
	reqs, err := c.topups.ListPending(ctx)
	if err != nil {
		c.printf("Failed to read requests: %v\n", err)
		return
	}
	if len(reqs) == 0 {
		c.printf("No pending requests.\n")
		return
	}
	for _, r := range reqs {
		c.printf(" - %s: wallet %d amount %d requested %s\n", r.ID, r.WalletID, r.Amount, r.RequestedAt.Format("2006-01-02 15:04:05"))
	}
}

func (c *Console) approveTopUps(ctx context.Context) {
	mode := c.prompt("Approve by (w)allet id or (r)equest id: ")
	var sel topup.Selector
	switch strings.ToLower(mode) {
	case "w":
		walletID, ok := c.promptInt64("Wallet ID: ")
		if !ok {
			return
		}
		sel = topup.ByWalletID(walletID)
	case "r":
		sel = topup.ByRequestID(c.prompt("Request ID: "))
	default:
		c.printf("Invalid selection.\n")
		return
	}

	result, err := c.topups.ApproveMatching(ctx, sel)
	if err != nil {
		c.printf("Approval pass failed: %v\n", err)
		return
	}
	for _, r := range result.Applied {
		c.printf("Approved top-up of %d to wallet %d.\n", r.Amount, r.WalletID)
	}
	for _, r := range result.Deferred {
		c.printf("Request %s for wallet %d kept pending.\n", r.ID, r.WalletID)
	}
	if len(result.Applied)+len(result.Deferred) == 0 {
		c.printf("No matching requests.\n")
	}
}

func (c *Console) prompt(label string) string {
	c.printf("%s", label)
	line, err := c.readLine()
	if err != nil {
		return ""
	}
	return line
}

func (c *Console) promptInt64(label string) (int64, bool) {
	raw := c.prompt(label)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.printf("Invalid number.\n")
		return 0, false
	}
	return n, true
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
