// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for the flat-file stores, the central
// wallet seed, the one-time-code service, and logging.
package config

import (
	"errors"
	"path/filepath"
	"strings"
)

// Config holds the complete application configuration. Each field represents a
// major subsystem's configuration and is validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Storage     StorageConfig
	Ledger      LedgerConfig
	Codes       CodesConfig
	Updates     UpdatesConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// StorageConfig names the flat-file stores. All files live under DataDir.
type StorageConfig struct {
	DataDir        string
	WalletFile     string // one line per wallet: "id balance"
	LogFile        string // append-only transaction log
	TopUpQueueFile string // one line per outstanding top-up request
	UpdateQueue    string // one line per pending profile update
	AccountFile    string // account directory
}

// LedgerConfig contains ledger store configuration
type LedgerConfig struct {
	SeedBalance int64 // balance granted to the central wallet on first run
}

// CodesConfig contains one-time-code service configuration
type CodesConfig struct {
	Length int // characters per issued code
}

// UpdatesConfig contains pending-update queue configuration.
// ApplyOnConfirm selects when a proposed profile change takes effect; the
// shipped default applies it only once the target user confirms with the
// matching code. The flag exists so the alternate apply-at-proposal behavior
// is a deliberate choice rather than an accident of history.
type UpdatesConfig struct {
	ApplyOnConfirm bool
}

// WalletPath returns the absolute location of the wallet table file.
func (c *StorageConfig) WalletPath() string { return filepath.Join(c.DataDir, c.WalletFile) }

// LogPath returns the absolute location of the transaction log file.
func (c *StorageConfig) LogPath() string { return filepath.Join(c.DataDir, c.LogFile) }

// TopUpQueuePath returns the absolute location of the top-up request queue file.
func (c *StorageConfig) TopUpQueuePath() string { return filepath.Join(c.DataDir, c.TopUpQueueFile) }

// UpdateQueuePath returns the absolute location of the pending-update queue file.
func (c *StorageConfig) UpdateQueuePath() string { return filepath.Join(c.DataDir, c.UpdateQueue) }

// AccountPath returns the absolute location of the account directory file.
func (c *StorageConfig) AccountPath() string { return filepath.Join(c.DataDir, c.AccountFile) }

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	if c.Storage.DataDir == "" {
		validationErrors = append(validationErrors, "DATA_DIR is required")
	}
	if c.Storage.WalletFile == "" {
		validationErrors = append(validationErrors, "WALLET_FILE is required")
	}
	if c.Storage.LogFile == "" {
		validationErrors = append(validationErrors, "TRANSACTION_LOG_FILE is required")
	}
	if c.Storage.TopUpQueueFile == "" {
		validationErrors = append(validationErrors, "TOPUP_QUEUE_FILE is required")
	}
	if c.Storage.UpdateQueue == "" {
		validationErrors = append(validationErrors, "UPDATE_QUEUE_FILE is required")
	}
	if c.Storage.AccountFile == "" {
		validationErrors = append(validationErrors, "ACCOUNT_FILE is required")
	}

	if c.Ledger.SeedBalance < 0 {
		validationErrors = append(validationErrors, "CENTRAL_SEED_BALANCE must not be negative")
	}

	if c.Codes.Length <= 0 {
		validationErrors = append(validationErrors, "CODE_LENGTH must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
