package goseal

import (
	"github.com/idelchi/goseal/internal/container"
	"github.com/idelchi/goseal/internal/pipeline"
	"github.com/idelchi/goseal/internal/provider"
)

// Sentinel errors for errors.Is classification. Every error returned by
// this package wraps exactly one of them.
var (
	// ErrInvalidInput marks malformed parameters: bad keys, mixed
	// recipient algorithms, oversized chunks, missing files.
	ErrInvalidInput = provider.ErrInvalidInput

	// ErrProviderFailure marks a failure inside a cryptographic backend,
	// including authentication failures on decryption.
	ErrProviderFailure = provider.ErrFailure

	// ErrCorruptContainer marks structural damage to a sealed file:
	// bad magic, truncated frames, trailing data.
	ErrCorruptContainer = container.ErrCorrupt

	// ErrIOFailure marks filesystem errors during file operations.
	ErrIOFailure = pipeline.ErrIO
)
