// config.go - Configuration management for the genesis generator
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"zerochain/internal/elgamal"
	"zerochain/internal/genesis"
	"zerochain/internal/keys"
	"zerochain/internal/vk"
)

// Config represents the application configuration
type Config struct {
	// Chain settings
	Chain            string            `json:"chain"`
	Scheme           string            `json:"scheme"`
	RandomnessPolicy string            `json:"randomness_policy"`
	Accounts         []genesis.Account `json:"accounts,omitempty"`

	// File paths
	VerifyingKeyPath string `json:"verifying_key_path"`
	ProvingKeyPath   string `json:"proving_key_path"`
	OutputPath       string `json:"output_path"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Performance
	Workers        int `json:"workers"`
	TimeoutSeconds int `json:"timeout_seconds"`

	// Security
	EnableAudit  bool   `json:"enable_audit"`
	AuditLogPath string `json:"audit_log_path"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Chain:            "local",
		Scheme:           keys.SchemeExpanded.String(),
		RandomnessPolicy: elgamal.RandomnessSecure.String(),
		VerifyingKeyPath: "",
		ProvingKeyPath:   "balance.pk",
		OutputPath:       "chain_spec.json",
		LogLevel:         "info",
		LogFile:          "",
		Workers:          4,
		TimeoutSeconds:   60,
		EnableAudit:      false,
		AuditLogPath:     "audit.log",
	}
}

// LoadConfig loads configuration from file or creates default.
// An empty path returns the defaults without touching disk.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// Try to load from file
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		config := DefaultConfig()
		if err := json.NewDecoder(file).Decode(config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}

		return config, nil
	}

	// Create default config and save it
	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := genesis.LookupPreset(c.Chain); err != nil {
		return err
	}
	if _, err := keys.ParseScheme(c.Scheme); err != nil {
		return err
	}
	if _, err := elgamal.ParseRandomnessPolicy(c.RandomnessPolicy); err != nil {
		return err
	}
	for i, acc := range c.Accounts {
		if acc.Name == "" {
			return fmt.Errorf("accounts[%d]: name must not be empty", i)
		}
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output_path must not be empty")
	}
	if c.EnableAudit && c.AuditLogPath == "" {
		return fmt.Errorf("audit_log_path is required when enable_audit is set")
	}
	return nil
}

// Timeout returns the genesis build deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Preset returns the chain preset, with the explicit account list applied
// when one is configured.
func (c *Config) Preset() (genesis.Preset, error) {
	p, err := genesis.LookupPreset(c.Chain)
	if err != nil {
		return genesis.Preset{}, err
	}
	if len(c.Accounts) > 0 {
		p.Accounts = append([]genesis.Account(nil), c.Accounts...)
	}
	return p, nil
}

// KeyScheme parses the configured key scheme.
func (c *Config) KeyScheme() (keys.Scheme, error) {
	return keys.ParseScheme(c.Scheme)
}

// AssemblerOptions translates the configuration into genesis options.
func (c *Config) AssemblerOptions() ([]genesis.Option, error) {
	scheme, err := c.KeyScheme()
	if err != nil {
		return nil, err
	}
	policy, err := elgamal.ParseRandomnessPolicy(c.RandomnessPolicy)
	if err != nil {
		return nil, err
	}
	return []genesis.Option{
		genesis.WithScheme(scheme),
		genesis.WithRandomnessPolicy(policy),
		genesis.WithWorkers(c.Workers),
		genesis.WithVerifyingKey(vk.SourceFor(c.VerifyingKeyPath)),
	}, nil
}
