package goseal

import (
	"fmt"

	"github.com/idelchi/goseal/internal/container"
	"github.com/idelchi/goseal/internal/provider"
)

// Option configures a Sealer.
type Option func(*Sealer) error

// WithAlgorithm selects the key algorithm for GenerateKeyPair.
func WithAlgorithm(alg Algorithm) Option {
	return func(s *Sealer) error {
		if _, err := s.registry.Lookup(alg); err != nil {
			return err
		}

		s.algorithm = alg

		return nil
	}
}

// WithChunkSize sets the plaintext chunk size for file operations.
// Larger chunks trade memory for fewer provider calls.
func WithChunkSize(size int) Option {
	return func(s *Sealer) error {
		if size < 1 {
			return fmt.Errorf("%w: chunk size must be at least 1 byte", provider.ErrInvalidInput)
		}

		if size > container.MaxChunkSize {
			return fmt.Errorf("%w: chunk size exceeds the %d byte bound",
				provider.ErrInvalidInput, container.MaxChunkSize)
		}

		s.chunkSize = size

		return nil
	}
}

// WithTempDir sets the directory for auto-generated output files.
func WithTempDir(dir string) Option {
	return func(s *Sealer) error {
		s.tempDir = dir

		return nil
	}
}
