package directory

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Common errors
var (
	ErrEmptyUsername   = errors.New("username cannot be empty")
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrInvalidUsername = errors.New("username must not contain '|'")
)

// Account binds a login identity to a wallet. Admin accounts operate the
// central wallet instead of owning one of their own.
type Account struct {
	Username           string
	PasswordHash       string
	FullName           string
	IsAdmin            bool
	WalletID           int64
	MustChangePassword bool
}

// NewAccount creates an account with the given credentials. The password is
// stored as a bcrypt hash only.
func NewAccount(username, password, fullName string, isAdmin bool, walletID int64) (*Account, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	// The directory file is pipe-delimited; a '|' in the username would make
	// the line unparseable and the account unreadable.
	if strings.Contains(username, "|") {
		return nil, ErrInvalidUsername
	}
	acc := &Account{
		Username: username,
		FullName: fullName,
		IsAdmin:  isAdmin,
		WalletID: walletID,
	}
	if err := acc.SetPassword(password); err != nil {
		return nil, err
	}
	return acc, nil
}

// SetPassword replaces the stored password hash
func (a *Account) SetPassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the password matches the stored hash
func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
