// Package config holds the runtime configuration for the goseal tool.
package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"

	"github.com/idelchi/goseal/internal/container"
)

// Config captures all flags and positional arguments.
type Config struct {
	// Common flags
	Algorithm          string `mapstructure:"algorithm"  validate:"oneof=x25519 mlkem768"`
	ChunkSize          string `mapstructure:"chunk-size" validate:"required"`
	TempDir            string `mapstructure:"temp-dir"`
	Parallel           int    `validate:"min=1"`
	Quiet              bool
	Stats              bool
	Dry                bool
	Delete             bool
	PreserveTimestamps bool   `mapstructure:"preserve-timestamps"`
	EncryptSuffix      string `mapstructure:"encrypt-ext"`
	DecryptSuffix      string `mapstructure:"decrypt-ext"`
	SignatureSuffix    string `mapstructure:"sig-ext"`

	// Key material locations
	KeyFile    string   `mapstructure:"key"`       // private key file (decrypt, sign)
	Recipients []string `mapstructure:"recipient"` // public key files (encrypt)
	PublicKey  string   `mapstructure:"pub"`       // public key file (verify)

	// File selection
	Include     []string
	Exclude     []string
	IncludeFrom string `mapstructure:"include-from"`
	ExcludeFrom string `mapstructure:"exclude-from"`

	// Command-specific flags
	Decrypt bool

	// Positional arguments
	Files []string `validate:"min=1"`
}

// ChunkBytes parses the configured chunk size, accepting human units
// such as "1 MiB" or "512KB".
func (c Config) ChunkBytes() (int, error) {
	size, err := humanize.ParseBytes(c.ChunkSize)
	if err != nil {
		return 0, fmt.Errorf("parsing chunk size %q: %w", c.ChunkSize, err)
	}

	if size == 0 {
		return 0, fmt.Errorf("chunk size must be at least 1 byte")
	}

	if size > container.MaxChunkSize {
		return 0, fmt.Errorf("chunk size %q exceeds the maximum of %s",
			c.ChunkSize, humanize.IBytes(uint64(container.MaxChunkSize)))
	}

	return int(size), nil
}

// Validate validates the configuration against the struct tags.
func (c Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	if _, err := c.ChunkBytes(); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	return nil
}
