package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/idelchi/goseal/internal/provider"
)

// SignatureEngine signs and verifies file contents by streaming them
// through a running provider context, chunk by chunk. The resulting
// signature is identical to signing the whole file in one buffer.
type SignatureEngine struct {
	registry  *provider.Registry
	chunkSize int
	buffers   *bufferPool
}

// NewSignatureEngine creates a streaming signature engine.
func NewSignatureEngine(registry *provider.Registry, chunkSize int) *SignatureEngine {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &SignatureEngine{
		registry:  registry,
		chunkSize: chunkSize,
		buffers:   newBufferPool(chunkSize),
	}
}

// GenerateFileSignature signs the contents of the file at inputPath.
func (se *SignatureEngine) GenerateFileSignature(
	ctx context.Context,
	inputPath string,
	key *provider.PrivateKey,
) ([]byte, error) {
	prov, err := se.registry.ForPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("sign %q: %w", inputPath, err)
	}

	signer, err := prov.NewSigner(key)
	if err != nil {
		return nil, fmt.Errorf("sign %q: %w", inputPath, err)
	}

	if err := se.stream(ctx, inputPath, signer); err != nil {
		return nil, fmt.Errorf("sign %q: %w", inputPath, err)
	}

	signature, err := signer.Finalize()
	if err != nil {
		return nil, fmt.Errorf("sign %q: %w", inputPath, err)
	}

	return signature, nil
}

// VerifyFileSignature checks signature against the contents of the file
// at inputPath. A mismatch is a normal false result; errors are reserved
// for I/O failures and malformed key material.
func (se *SignatureEngine) VerifyFileSignature(
	ctx context.Context,
	inputPath string,
	signature []byte,
	key *provider.PublicKey,
) (bool, error) {
	prov, err := se.registry.ForPublicKey(key)
	if err != nil {
		return false, fmt.Errorf("verify %q: %w", inputPath, err)
	}

	verifier, err := prov.NewVerifier(key)
	if err != nil {
		return false, fmt.Errorf("verify %q: %w", inputPath, err)
	}

	if err := se.stream(ctx, inputPath, verifier); err != nil {
		return false, fmt.Errorf("verify %q: %w", inputPath, err)
	}

	ok, err := verifier.Finalize(signature)
	if err != nil {
		return false, fmt.Errorf("verify %q: %w", inputPath, err)
	}

	return ok, nil
}

// stream feeds the file's bytes into the running context in chunk-sized
// pieces.
func (se *SignatureEngine) stream(ctx context.Context, inputPath string, dst io.Writer) error {
	in, err := os.Open(filepath.Clean(inputPath))
	if err != nil {
		return fmt.Errorf("%w: opening %q: %w", provider.ErrInvalidInput, inputPath, err)
	}
	defer in.Close()

	buf := se.buffers.Get()
	defer se.buffers.Put(buf)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := in.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return err
			}
		}

		if errors.Is(readErr, io.EOF) {
			return nil
		}

		if readErr != nil {
			return fmt.Errorf("%w: reading %q: %w", ErrIO, inputPath, readErr)
		}
	}
}
