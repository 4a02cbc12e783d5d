package goseal

import (
	"context"
	"fmt"
	"os"

	"github.com/idelchi/goseal/internal/pipeline"
	"github.com/idelchi/goseal/internal/provider"
	"github.com/idelchi/goseal/pkg/binenc"
)

// Algorithm selects the cryptographic suite a key pair belongs to.
type Algorithm = provider.Algorithm

// Supported algorithm suites.
const (
	// X25519 combines X25519 key encapsulation with Ed25519 signatures.
	X25519 = provider.X25519
	// MLKEM768 combines ML-KEM-768 key encapsulation with ML-DSA-65 signatures.
	MLKEM768 = provider.MLKEM768
)

// Key material types. Keys are opaque; use Bytes and the Parse functions
// for persistence.
type (
	// KeyPair bundles a private key with its public counterpart.
	KeyPair = provider.KeyPair
	// PublicKey identifies a recipient and verifies signatures.
	PublicKey = provider.PublicKey
	// PrivateKey decrypts and signs.
	PrivateKey = provider.PrivateKey
)

// ParsePublicKey reconstructs a public key from its Bytes form.
func ParsePublicKey(alg Algorithm, data []byte) (*PublicKey, error) {
	return provider.ParsePublicKey(alg, data)
}

// ParsePrivateKey reconstructs a private key from its Bytes form.
func ParsePrivateKey(alg Algorithm, data []byte) (*PrivateKey, error) {
	return provider.ParsePrivateKey(alg, data)
}

// Sealer is the high-level entry point. It resolves the available
// cryptographic backends once and is safe for concurrent use.
type Sealer struct {
	registry  *provider.Registry
	algorithm Algorithm
	chunkSize int
	tempDir   string
}

// New creates a Sealer with the given options applied over the defaults:
// X25519 keys, 1 MiB chunks, and the system temporary directory.
func New(opts ...Option) (*Sealer, error) {
	s := &Sealer{
		registry:  provider.NewRegistry(),
		algorithm: X25519,
		chunkSize: pipeline.DefaultChunkSize,
		tempDir:   os.TempDir(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// GenerateKeyPair creates a fresh key pair for the configured algorithm.
func (s *Sealer) GenerateKeyPair() (*KeyPair, error) {
	prov, err := s.registry.Lookup(s.algorithm)
	if err != nil {
		return nil, err
	}

	return prov.GenerateKeyPair()
}

// Encrypt seals data for the given recipients. Data may be a string or a
// byte slice. All recipients must share one algorithm; any of them can
// decrypt the result.
func (s *Sealer) Encrypt(data any, recipients ...*PublicKey) ([]byte, error) {
	plaintext, err := binenc.Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrInvalidInput, err)
	}

	prov, err := s.registry.ForPublicKeys(recipients)
	if err != nil {
		return nil, err
	}

	return prov.Encrypt(plaintext, nil, recipients)
}

// Decrypt opens a sealed buffer with the recipient's private key.
func (s *Sealer) Decrypt(data any, key *PrivateKey) ([]byte, error) {
	ciphertext, err := binenc.Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrInvalidInput, err)
	}

	prov, err := s.registry.ForPrivateKey(key)
	if err != nil {
		return nil, err
	}

	return prov.Decrypt(ciphertext, nil, key)
}

// CalculateSignature signs data with the private key. Data may be a
// string or a byte slice.
func (s *Sealer) CalculateSignature(data any, key *PrivateKey) ([]byte, error) {
	buf, err := binenc.Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrInvalidInput, err)
	}

	prov, err := s.registry.ForPrivateKey(key)
	if err != nil {
		return nil, err
	}

	return prov.Sign(buf, key)
}

// VerifySignature reports whether signature matches data under the
// public key. A mismatch is a false result, not an error.
func (s *Sealer) VerifySignature(data any, signature []byte, key *PublicKey) (bool, error) {
	buf, err := binenc.Bytes(data)
	if err != nil {
		return false, fmt.Errorf("%w: %w", provider.ErrInvalidInput, err)
	}

	prov, err := s.registry.ForPublicKey(key)
	if err != nil {
		return false, err
	}

	return prov.Verify(buf, signature, key)
}

// EncryptFile seals inputPath into a chunked container at outputPath.
// If outputPath is empty a fresh file is created in the configured
// temporary directory and its path returned. On any failure no partial
// output remains.
func (s *Sealer) EncryptFile(ctx context.Context, inputPath, outputPath string, recipients ...*PublicKey) (string, error) {
	return s.cipher().EncryptFile(ctx, inputPath, outputPath, recipients)
}

// DecryptFile opens a chunked container at inputPath into outputPath.
// If outputPath is empty a fresh file is created in the configured
// temporary directory and its path returned. On any failure no partial
// output remains.
func (s *Sealer) DecryptFile(ctx context.Context, inputPath, outputPath string, key *PrivateKey) (string, error) {
	return s.cipher().DecryptFile(ctx, inputPath, outputPath, key)
}

// GenerateFileSignature signs the file contents, streaming them in
// chunks. The result equals signing the whole file in one buffer.
func (s *Sealer) GenerateFileSignature(ctx context.Context, inputPath string, key *PrivateKey) ([]byte, error) {
	return s.engine().GenerateFileSignature(ctx, inputPath, key)
}

// VerifyFileSignature checks the file contents against a detached
// signature. A mismatch is a false result, not an error.
func (s *Sealer) VerifyFileSignature(
	ctx context.Context, inputPath string, signature []byte, key *PublicKey,
) (bool, error) {
	return s.engine().VerifyFileSignature(ctx, inputPath, signature, key)
}

func (s *Sealer) cipher() *pipeline.FileCipher {
	return pipeline.NewFileCipher(s.registry, s.chunkSize, s.tempDir)
}

func (s *Sealer) engine() *pipeline.SignatureEngine {
	return pipeline.NewSignatureEngine(s.registry, s.chunkSize)
}
