// Package pipeline drives whole-file cryptography over bounded chunks:
// sequential read, per-chunk provider calls, and incremental output with
// atomic commit. Peak memory is O(chunk size) regardless of file size.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/idelchi/goseal/internal/container"
	"github.com/idelchi/goseal/internal/fileutil"
	"github.com/idelchi/goseal/internal/provider"
)

// DefaultChunkSize is the plaintext chunk size used when none is
// configured.
const DefaultChunkSize = 1 << 20

// outputPattern names auto-generated output files.
const outputPattern = "goseal-*.gsl"

// FileCipher encrypts and decrypts files chunk by chunk. It is safe for
// concurrent use; each call owns its files for the call's duration.
type FileCipher struct {
	registry  *provider.Registry
	chunkSize int
	tempDir   string
	buffers   *bufferPool
}

// NewFileCipher creates a pipeline over the resolved providers.
// chunkSize bounds plaintext chunk size; tempDir receives auto-generated
// outputs (empty means the system temp directory).
func NewFileCipher(registry *provider.Registry, chunkSize int, tempDir string) *FileCipher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &FileCipher{
		registry:  registry,
		chunkSize: chunkSize,
		tempDir:   tempDir,
		buffers:   newBufferPool(chunkSize),
	}
}

// EncryptFile seals inputPath into an encrypted container for the given
// recipients. If outputPath is empty a fresh file is created in the
// configured temp directory. Returns the output path.
//
// On any failure the partially written output is removed; a
// caller-supplied outputPath is never touched, since output reaches it
// only through an atomic rename after the final chunk.
func (fc *FileCipher) EncryptFile(
	ctx context.Context,
	inputPath, outputPath string,
	recipients []*provider.PublicKey,
) (path string, err error) {
	prov, err := fc.registry.ForPublicKeys(recipients)
	if err != nil {
		return "", fmt.Errorf("encrypt %q: %w", inputPath, err)
	}

	algID, err := prov.Algorithm().ID()
	if err != nil {
		return "", fmt.Errorf("encrypt %q: %w", inputPath, err)
	}

	tc, err := fc.newOutput(inputPath, outputPath)
	if err != nil {
		return "", fmt.Errorf("%w: encrypt %q: %w", provider.ErrInvalidInput, inputPath, err)
	}

	defer tc.CleanupOnError(&err)

	in, err := os.Open(filepath.Clean(inputPath))
	if err != nil {
		return "", fmt.Errorf("%w: encrypt: opening %q: %w", provider.ErrInvalidInput, inputPath, err)
	}
	defer in.Close()

	header, err := container.WriteHeader(tc.TmpFile, algID)
	if err != nil {
		return "", fmt.Errorf("%w: encrypt %q: %w", ErrIO, inputPath, err)
	}

	writer := container.NewWriter(tc.TmpFile)

	buf := fc.buffers.Get()
	defer fc.buffers.Put(buf)

	for index := uint64(0); ; index++ {
		if err = ctx.Err(); err != nil {
			return "", fmt.Errorf("encrypt %q: %w", inputPath, err)
		}

		var (
			data  []byte
			final bool
		)

		n, readErr := io.ReadFull(in, buf)

		switch {
		case readErr == nil:
			data = buf[:n]
		case errors.Is(readErr, io.EOF), errors.Is(readErr, io.ErrUnexpectedEOF):
			// Short read means end of input: this chunk is final. A read
			// of zero bytes still produces one empty final chunk so that
			// zero-byte files round-trip.
			data, final = buf[:n], true
		default:
			return "", fmt.Errorf("%w: encrypt: reading %q: %w", ErrIO, inputPath, readErr)
		}

		aad := container.ChunkAAD(header, index, final)

		encrypted, err := prov.Encrypt(data, aad, recipients)
		if err != nil {
			return "", fmt.Errorf("encrypt %q: chunk %d: %w", inputPath, index, err)
		}

		frame := container.Chunk{Index: index, Final: final, Data: encrypted}
		if err = writer.WriteFrame(frame); err != nil {
			return "", fmt.Errorf("%w: encrypt %q: %w", ErrIO, inputPath, err)
		}

		if final {
			break
		}
	}

	path, err = tc.Commit()
	if err != nil {
		return "", fmt.Errorf("%w: encrypt %q: %w", ErrIO, inputPath, err)
	}

	return path, nil
}

// DecryptFile opens the container at inputPath with the private key and
// writes the reassembled plaintext. If outputPath is empty a fresh file
// is created in the configured temp directory. Returns the output path.
func (fc *FileCipher) DecryptFile(
	ctx context.Context,
	inputPath, outputPath string,
	key *provider.PrivateKey,
) (path string, err error) {
	prov, err := fc.registry.ForPrivateKey(key)
	if err != nil {
		return "", fmt.Errorf("decrypt %q: %w", inputPath, err)
	}

	in, err := os.Open(filepath.Clean(inputPath))
	if err != nil {
		return "", fmt.Errorf("%w: decrypt: opening %q: %w", provider.ErrInvalidInput, inputPath, err)
	}
	defer in.Close()

	algID, header, err := container.ReadHeader(in)
	if err != nil {
		return "", fmt.Errorf("decrypt %q: %w", inputPath, err)
	}

	alg, err := provider.AlgorithmByID(algID)
	if err != nil {
		return "", fmt.Errorf("decrypt %q: %w", inputPath, err)
	}

	if alg != key.Algorithm() {
		return "", fmt.Errorf("%w: decrypt %q: container algorithm %q does not match key algorithm %q",
			provider.ErrInvalidInput, inputPath, alg, key.Algorithm())
	}

	tc, err := fc.newOutput(inputPath, outputPath)
	if err != nil {
		return "", fmt.Errorf("%w: decrypt %q: %w", provider.ErrInvalidInput, inputPath, err)
	}

	defer tc.CleanupOnError(&err)

	reader := container.NewReader(in)

	for {
		if err = ctx.Err(); err != nil {
			return "", fmt.Errorf("decrypt %q: %w", inputPath, err)
		}

		chunk, nextErr := reader.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}

		if nextErr != nil {
			if errors.Is(nextErr, container.ErrCorrupt) {
				return "", fmt.Errorf("decrypt %q: %w", inputPath, nextErr)
			}

			return "", fmt.Errorf("%w: decrypt %q: %w", ErrIO, inputPath, nextErr)
		}

		aad := container.ChunkAAD(header, chunk.Index, chunk.Final)

		plaintext, err := prov.Decrypt(chunk.Data, aad, key)
		if err != nil {
			return "", fmt.Errorf("decrypt %q: chunk %d: %w", inputPath, chunk.Index, err)
		}

		if _, err = tc.TmpFile.Write(plaintext); err != nil {
			return "", fmt.Errorf("%w: decrypt: writing plaintext: %w", ErrIO, err)
		}
	}

	path, err = tc.Commit()
	if err != nil {
		return "", fmt.Errorf("%w: decrypt %q: %w", ErrIO, inputPath, err)
	}

	return path, nil
}

// newOutput prepares the output destination: a sibling temp file for an
// explicit outputPath, or a fresh file in the temp directory otherwise.
func (fc *FileCipher) newOutput(inputPath, outputPath string) (*fileutil.TempContext, error) {
	if outputPath != "" {
		return fileutil.NewTempContext(inputPath, outputPath)
	}

	return fileutil.NewTempOutput(inputPath, fc.tempDir, outputPattern)
}
