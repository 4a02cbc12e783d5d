package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/idelchi/goseal/internal/container"
	"github.com/idelchi/goseal/internal/pipeline"
	"github.com/idelchi/goseal/internal/provider"
)

func newKeyPair(t *testing.T, alg provider.Algorithm) *provider.KeyPair {
	t.Helper()

	prov, err := provider.NewRegistry().Lookup(alg)
	if err != nil {
		t.Fatalf("Lookup(%q) error: %v", alg, err)
	}

	pair, err := prov.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair error: %v", err)
	}

	return pair
}

func writeInput(t *testing.T, dir string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, "input.bin")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	return path
}

// countFrames opens a sealed file and counts its frames.
func countFrames(t *testing.T, path string) int {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening sealed file: %v", err)
	}
	defer f.Close()

	if _, _, err := container.ReadHeader(f); err != nil {
		t.Fatalf("ReadHeader error: %v", err)
	}

	reader := container.NewReader(f)
	frames := 0

	for {
		if _, err := reader.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				return frames
			}

			t.Fatalf("Next() error: %v", err)
		}

		frames++
	}
}

// listDir returns the names in dir, for asserting nothing was left behind.
func listDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	for _, alg := range []provider.Algorithm{provider.X25519, provider.MLKEM768} {
		t.Run(string(alg), func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			pair := newKeyPair(t, alg)
			content := bytes.Repeat([]byte("chunked content "), 512)

			fc := pipeline.NewFileCipher(provider.NewRegistry(), 1024, dir)

			input := writeInput(t, dir, content)
			sealed := filepath.Join(dir, "out.gsl")

			if _, err := fc.EncryptFile(t.Context(), input, sealed, []*provider.PublicKey{pair.Public}); err != nil {
				t.Fatalf("EncryptFile error: %v", err)
			}

			opened := filepath.Join(dir, "out.bin")

			if _, err := fc.DecryptFile(t.Context(), sealed, opened, pair.Private); err != nil {
				t.Fatalf("DecryptFile error: %v", err)
			}

			got, err := os.ReadFile(opened) //nolint:gosec // test-owned path
			if err != nil {
				t.Fatalf("reading output: %v", err)
			}

			if !bytes.Equal(got, content) {
				t.Error("round trip does not reproduce the input")
			}
		})
	}
}

func TestEmptyFileRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pair := newKeyPair(t, provider.X25519)

	fc := pipeline.NewFileCipher(provider.NewRegistry(), 1024, dir)

	input := writeInput(t, dir, nil)
	sealed := filepath.Join(dir, "out.gsl")

	if _, err := fc.EncryptFile(t.Context(), input, sealed, []*provider.PublicKey{pair.Public}); err != nil {
		t.Fatalf("EncryptFile error: %v", err)
	}

	if frames := countFrames(t, sealed); frames != 1 {
		t.Errorf("empty file produced %d frames, want 1", frames)
	}

	opened := filepath.Join(dir, "out.bin")

	if _, err := fc.DecryptFile(t.Context(), sealed, opened, pair.Private); err != nil {
		t.Fatalf("DecryptFile error: %v", err)
	}

	info, err := os.Stat(opened)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}

	if info.Size() != 0 {
		t.Errorf("output size = %d, want 0", info.Size())
	}
}

func TestChunkBoundaries(t *testing.T) {
	t.Parallel()

	const chunkSize = 64

	for _, tc := range []struct {
		name       string
		inputSize  int
		wantFrames int
	}{
		{name: "half chunk", inputSize: chunkSize / 2, wantFrames: 1},
		{name: "two and a half chunks", inputSize: chunkSize*2 + chunkSize/2, wantFrames: 3},
		{name: "exact multiple", inputSize: chunkSize * 3, wantFrames: 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			pair := newKeyPair(t, provider.X25519)

			fc := pipeline.NewFileCipher(provider.NewRegistry(), chunkSize, dir)

			content := bytes.Repeat([]byte{0xAB}, tc.inputSize)
			input := writeInput(t, dir, content)
			sealed := filepath.Join(dir, "out.gsl")

			if _, err := fc.EncryptFile(t.Context(), input, sealed, []*provider.PublicKey{pair.Public}); err != nil {
				t.Fatalf("EncryptFile error: %v", err)
			}

			if frames := countFrames(t, sealed); frames != tc.wantFrames {
				t.Errorf("%d byte input produced %d frames, want %d", tc.inputSize, frames, tc.wantFrames)
			}

			opened := filepath.Join(dir, "out.bin")

			if _, err := fc.DecryptFile(t.Context(), sealed, opened, pair.Private); err != nil {
				t.Fatalf("DecryptFile error: %v", err)
			}

			got, err := os.ReadFile(opened) //nolint:gosec // test-owned path
			if err != nil {
				t.Fatalf("reading output: %v", err)
			}

			if !bytes.Equal(got, content) {
				t.Error("round trip does not reproduce the input")
			}
		})
	}
}

func TestAutoGeneratedOutputPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pair := newKeyPair(t, provider.X25519)

	fc := pipeline.NewFileCipher(provider.NewRegistry(), 1024, dir)

	input := writeInput(t, dir, []byte("auto output"))

	sealed, err := fc.EncryptFile(t.Context(), input, "", []*provider.PublicKey{pair.Public})
	if err != nil {
		t.Fatalf("EncryptFile error: %v", err)
	}

	if filepath.Dir(sealed) != dir {
		t.Errorf("auto output %q not in configured temp dir %q", sealed, dir)
	}

	opened, err := fc.DecryptFile(t.Context(), sealed, "", pair.Private)
	if err != nil {
		t.Fatalf("DecryptFile error: %v", err)
	}

	got, err := os.ReadFile(opened) //nolint:gosec // test-owned path
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	if !bytes.Equal(got, []byte("auto output")) {
		t.Error("round trip does not reproduce the input")
	}
}

func TestTamperedContainerFailsDecryption(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pair := newKeyPair(t, provider.X25519)

	fc := pipeline.NewFileCipher(provider.NewRegistry(), 64, dir)

	input := writeInput(t, dir, bytes.Repeat([]byte("tamper me "), 40))
	sealed := filepath.Join(dir, "out.gsl")

	if _, err := fc.EncryptFile(t.Context(), input, sealed, []*provider.PublicKey{pair.Public}); err != nil {
		t.Fatalf("EncryptFile error: %v", err)
	}

	data, err := os.ReadFile(sealed) //nolint:gosec // test-owned path
	if err != nil {
		t.Fatalf("reading sealed file: %v", err)
	}

	// Flip a byte well inside a ciphertext payload.
	data[len(data)/2] ^= 0x01

	if err := os.WriteFile(sealed, data, 0o600); err != nil {
		t.Fatalf("writing tampered file: %v", err)
	}

	opened := filepath.Join(dir, "out.bin")

	_, err = fc.DecryptFile(t.Context(), sealed, opened, pair.Private)
	if err == nil {
		t.Fatal("DecryptFile accepted a tampered container")
	}

	if !errors.Is(err, provider.ErrFailure) && !errors.Is(err, container.ErrCorrupt) {
		t.Errorf("DecryptFile = %v, want ErrFailure or ErrCorrupt", err)
	}

	if _, statErr := os.Stat(opened); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("failed decryption left output behind")
	}
}

func TestTruncatedContainerLeavesNoOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pair := newKeyPair(t, provider.X25519)

	fc := pipeline.NewFileCipher(provider.NewRegistry(), 64, dir)

	input := writeInput(t, dir, bytes.Repeat([]byte("x"), 300))
	sealed := filepath.Join(dir, "out.gsl")

	if _, err := fc.EncryptFile(t.Context(), input, sealed, []*provider.PublicKey{pair.Public}); err != nil {
		t.Fatalf("EncryptFile error: %v", err)
	}

	data, err := os.ReadFile(sealed) //nolint:gosec // test-owned path
	if err != nil {
		t.Fatalf("reading sealed file: %v", err)
	}

	// Drop the final frame's tail so the stream ends mid-frame.
	if err := os.WriteFile(sealed, data[:len(data)-10], 0o600); err != nil {
		t.Fatalf("writing truncated file: %v", err)
	}

	outDir := t.TempDir()
	opened := filepath.Join(outDir, "out.bin")

	if _, err := fc.DecryptFile(t.Context(), sealed, opened, pair.Private); !errors.Is(err, container.ErrCorrupt) {
		t.Errorf("DecryptFile of truncated container = %v, want ErrCorrupt", err)
	}

	// Neither the output nor any temp file may remain.
	if names := listDir(t, outDir); len(names) != 0 {
		t.Errorf("failed decryption left %v behind", names)
	}
}

func TestDecryptRejectsMismatchedKeyAlgorithm(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xPair := newKeyPair(t, provider.X25519)
	mPair := newKeyPair(t, provider.MLKEM768)

	fc := pipeline.NewFileCipher(provider.NewRegistry(), 1024, dir)

	input := writeInput(t, dir, []byte("algorithm binding"))
	sealed := filepath.Join(dir, "out.gsl")

	if _, err := fc.EncryptFile(t.Context(), input, sealed, []*provider.PublicKey{xPair.Public}); err != nil {
		t.Fatalf("EncryptFile error: %v", err)
	}

	opened := filepath.Join(dir, "out.bin")

	_, err := fc.DecryptFile(t.Context(), sealed, opened, mPair.Private)
	if !errors.Is(err, provider.ErrInvalidInput) {
		t.Errorf("DecryptFile with mismatched key = %v, want ErrInvalidInput", err)
	}
}

func TestEncryptMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pair := newKeyPair(t, provider.X25519)

	fc := pipeline.NewFileCipher(provider.NewRegistry(), 1024, dir)

	_, err := fc.EncryptFile(
		t.Context(), filepath.Join(dir, "missing.bin"), filepath.Join(dir, "out.gsl"),
		[]*provider.PublicKey{pair.Public},
	)
	if !errors.Is(err, provider.ErrInvalidInput) {
		t.Errorf("EncryptFile of missing input = %v, want ErrInvalidInput", err)
	}
}

func TestWorkingSetBoundedByChunkSize(t *testing.T) {
	t.Parallel()

	const chunkSize = 4096

	dir := t.TempDir()
	registry := provider.NewRegistry()

	prov, err := registry.Lookup(provider.X25519)
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}

	var (
		recipients []*provider.PublicKey
		private    *provider.PrivateKey
	)

	for range 3 {
		pair, err := prov.GenerateKeyPair()
		if err != nil {
			t.Fatalf("GenerateKeyPair error: %v", err)
		}

		recipients = append(recipients, pair.Public)
		private = pair.Private
	}

	// Envelope size for an empty payload gives the fixed per-frame
	// overhead for this recipient set.
	empty, err := prov.Encrypt(nil, nil, recipients)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	overhead := len(empty)

	content := bytes.Repeat([]byte{0xC7}, chunkSize*20+chunkSize/2)
	input := writeInput(t, dir, content)
	sealed := filepath.Join(dir, "out.gsl")

	fc := pipeline.NewFileCipher(registry, chunkSize, dir)

	if _, err := fc.EncryptFile(t.Context(), input, sealed, recipients); err != nil {
		t.Fatalf("EncryptFile error: %v", err)
	}

	// Frame sizes are the high watermark of what each provider call
	// handled. Regardless of the input size, no frame may carry more
	// than one chunk plus the fixed envelope overhead.
	f, err := os.Open(sealed)
	if err != nil {
		t.Fatalf("opening sealed file: %v", err)
	}
	defer f.Close()

	if _, _, err := container.ReadHeader(f); err != nil {
		t.Fatalf("ReadHeader error: %v", err)
	}

	reader := container.NewReader(f)

	var frames, watermark int

	for {
		chunk, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			t.Fatalf("Next() error: %v", err)
		}

		frames++

		watermark = max(watermark, len(chunk.Data))
	}

	if frames != 21 {
		t.Errorf("input of 20.5 chunks produced %d frames, want 21", frames)
	}

	if watermark > chunkSize+overhead {
		t.Errorf("largest frame carries %d bytes, want at most %d", watermark, chunkSize+overhead)
	}

	if watermark < chunkSize {
		t.Errorf("largest frame carries %d bytes, want at least a full chunk of %d", watermark, chunkSize)
	}

	opened := filepath.Join(dir, "out.bin")

	if _, err := fc.DecryptFile(t.Context(), sealed, opened, private); err != nil {
		t.Fatalf("DecryptFile error: %v", err)
	}

	got, err := os.ReadFile(opened) //nolint:gosec // test-owned path
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	if !bytes.Equal(got, content) {
		t.Error("round trip does not reproduce the input")
	}
}

func TestMaxChunkSizeRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping maximal chunk round trip in short mode")
	}

	t.Parallel()

	dir := t.TempDir()
	pair := newKeyPair(t, provider.X25519)

	fc := pipeline.NewFileCipher(provider.NewRegistry(), container.MaxChunkSize, dir)

	// One full chunk at the maximum size must frame within the
	// container's bound despite the envelope overhead.
	content := make([]byte, container.MaxChunkSize)
	for i := range content {
		content[i] = byte(i)
	}

	input := writeInput(t, dir, content)
	sealed := filepath.Join(dir, "out.gsl")

	if _, err := fc.EncryptFile(t.Context(), input, sealed, []*provider.PublicKey{pair.Public}); err != nil {
		t.Fatalf("EncryptFile error: %v", err)
	}

	if frames := countFrames(t, sealed); frames != 2 {
		t.Errorf("maximal chunk produced %d frames, want 2", frames)
	}

	opened := filepath.Join(dir, "out.bin")

	if _, err := fc.DecryptFile(t.Context(), sealed, opened, pair.Private); err != nil {
		t.Fatalf("DecryptFile error: %v", err)
	}

	got, err := os.ReadFile(opened) //nolint:gosec // test-owned path
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	if !bytes.Equal(got, content) {
		t.Error("round trip does not reproduce the input")
	}
}

func TestEncryptCancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pair := newKeyPair(t, provider.X25519)

	fc := pipeline.NewFileCipher(provider.NewRegistry(), 64, dir)

	input := writeInput(t, dir, bytes.Repeat([]byte("y"), 1024))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	outDir := t.TempDir()
	sealed := filepath.Join(outDir, "out.gsl")

	if _, err := fc.EncryptFile(ctx, input, sealed, []*provider.PublicKey{pair.Public}); !errors.Is(err, context.Canceled) {
		t.Errorf("EncryptFile with cancelled context = %v, want context.Canceled", err)
	}

	if names := listDir(t, outDir); len(names) != 0 {
		t.Errorf("cancelled encryption left %v behind", names)
	}
}
