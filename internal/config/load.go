package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadConfigWithName loads configuration using the specified name, auto-detecting the file type
// This is useful when the configuration file extension is unknown or variable
func LoadConfigWithName(configName string) (*Config, error) {
	return loadConfig(configName, "")
}

// LoadConfigWithNameAndType loads configuration with explicit name and type specification
// Use this when you need to force a specific configuration format (e.g., "yaml", "json")
func LoadConfigWithNameAndType(configName, configType string) (*Config, error) {
	return loadConfig(configName, configType)
}

// LoadConfig loads configuration from a .env file using the provided base name
// This is the preferred method for loading environment-specific configurations
func LoadConfig(configName string) (*Config, error) {
	configFileName := fmt.Sprintf("%s.env", configName)
	return loadConfig(configFileName, "env")
}

// loadConfig handles configuration loading from files and environment variables.
// It implements a layered approach to configuration:
// 1. Load defaults
// 2. Override with config file values (if found)
// 3. Override with environment variables
// 4. Validate the final configuration
func loadConfig(configName, configType string) (*Config, error) {
	// Initialize viper with default values
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	if configType != "" {
		v.SetConfigType(configType)
	}

	// Add config paths in order of priority
	v.AddConfigPath("./configs") // First check in configs directory
	v.AddConfigPath(".")         // Then check in root directory

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Printf("INFO: No config file '%s' found, relying on environment variables and defaults.\n", configName)
		} else {
			fmt.Printf("WARNING: Error reading config file (%s): %v\n", v.ConfigFileUsed(), err)
		}
	} else {
		fmt.Printf("INFO: Config loaded from file: %s\n", v.ConfigFileUsed())
	}

	v.AutomaticEnv() // Automatically read matching environment variables

	// Build the config struct
	config := &Config{
		Application: ApplicationConfig{
			Env:  v.GetString("APP_ENV"),
			Name: v.GetString("APP_NAME"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Storage: StorageConfig{
			DataDir:        v.GetString("DATA_DIR"),
			WalletFile:     v.GetString("WALLET_FILE"),
			LogFile:        v.GetString("TRANSACTION_LOG_FILE"),
			TopUpQueueFile: v.GetString("TOPUP_QUEUE_FILE"),
			UpdateQueue:    v.GetString("UPDATE_QUEUE_FILE"),
			AccountFile:    v.GetString("ACCOUNT_FILE"),
		},
		Ledger: LedgerConfig{
			SeedBalance: v.GetInt64("CENTRAL_SEED_BALANCE"),
		},
		Codes: CodesConfig{
			Length: v.GetInt("CODE_LENGTH"),
		},
		Updates: UpdatesConfig{
			ApplyOnConfirm: v.GetBool("UPDATES_APPLY_ON_CONFIRM"),
		},
	}

	// Validate the configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults initializes configuration with sensible default values.
// These values are used when no configuration file or environment variables are present.
func setDefaults(v *viper.Viper) {
	// Flat-file store defaults - everything lives in one data directory
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("WALLET_FILE", "wallets.db")
	v.SetDefault("TRANSACTION_LOG_FILE", "transaction.db")
	v.SetDefault("TOPUP_QUEUE_FILE", "topup_requests.db")
	v.SetDefault("UPDATE_QUEUE_FILE", "admin_update_requests.db")
	v.SetDefault("ACCOUNT_FILE", "users.db")

	// Central wallet is pre-funded on first run
	v.SetDefault("CENTRAL_SEED_BALANCE", int64(1000000))

	// One-time codes are short and alphanumeric; they gate a single
	// confirmation step and carry no cryptographic weight
	v.SetDefault("CODE_LENGTH", 6)

	// Profile changes take effect only once the target user confirms
	v.SetDefault("UPDATES_APPLY_ON_CONFIRM", true)

	// Logging defaults - 'info' provides good balance of information vs noise
	v.SetDefault("LOG_LEVEL", "info")

	// Application defaults - development-friendly baseline configuration
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "points-wallet-ledger")
}
