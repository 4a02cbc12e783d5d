// Package provider abstracts the cryptographic backends behind one
// capability interface: key pair generation, multi-recipient buffer
// encryption, and buffer signing with incremental contexts.
//
// Two concrete backends exist: an X25519/Ed25519 backend and a
// post-quantum ML-KEM-768/ML-DSA-65 backend. A Registry resolves both
// once at startup and is read-only afterwards.
package provider

import (
	"fmt"
	"io"
)

// Algorithm tags a key pair and selects the backend that produced it.
type Algorithm string

const (
	// X25519 combines X25519 key encapsulation with Ed25519 signatures.
	X25519 Algorithm = "x25519"
	// MLKEM768 combines ML-KEM-768 key encapsulation with ML-DSA-65 signatures.
	MLKEM768 Algorithm = "mlkem768"
)

// Wire identifiers for the algorithm tags, used in container and envelope
// headers. Values are part of the on-disk format and must not be reused.
const (
	idX25519   byte = 0x01
	idMLKEM768 byte = 0x02
)

// ID returns the wire identifier for the algorithm.
func (a Algorithm) ID() (byte, error) {
	switch a {
	case X25519:
		return idX25519, nil
	case MLKEM768:
		return idMLKEM768, nil
	default:
		return 0, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidInput, a)
	}
}

// AlgorithmByID maps a wire identifier back to its algorithm tag.
func AlgorithmByID(id byte) (Algorithm, error) {
	switch id {
	case idX25519:
		return X25519, nil
	case idMLKEM768:
		return MLKEM768, nil
	default:
		return "", fmt.Errorf("%w: unknown algorithm id %#x", ErrInvalidInput, id)
	}
}

// Provider is the capability contract every backend satisfies.
type Provider interface {
	// Algorithm reports the tag of keys this backend produces and accepts.
	Algorithm() Algorithm

	// GenerateKeyPair creates a fresh key pair.
	GenerateKeyPair() (*KeyPair, error)

	// Encrypt seals plaintext for one or more recipients. The associated
	// data is authenticated but not encrypted and must be presented again
	// on decryption.
	Encrypt(plaintext, associatedData []byte, recipients []*PublicKey) ([]byte, error)

	// Decrypt opens a sealed buffer with the recipient's private key.
	Decrypt(ciphertext, associatedData []byte, key *PrivateKey) ([]byte, error)

	// Sign produces a signature over data.
	Sign(data []byte, key *PrivateKey) ([]byte, error)

	// Verify reports whether signature is valid for data. A mismatch is a
	// false result, not an error; errors indicate malformed key material.
	Verify(data, signature []byte, key *PublicKey) (bool, error)

	// NewSigner opens an incremental signing context. Feeding it the same
	// bytes in any split yields the same signature as Sign over the
	// concatenation.
	NewSigner(key *PrivateKey) (Signer, error)

	// NewVerifier opens an incremental verification context.
	NewVerifier(key *PublicKey) (Verifier, error)
}

// Signer accumulates data and finalizes into a signature.
type Signer interface {
	io.Writer

	// Finalize closes the context and returns the signature.
	Finalize() ([]byte, error)
}

// Verifier accumulates data and finalizes against a signature.
type Verifier interface {
	io.Writer

	// Finalize reports whether signature matches the accumulated data.
	Finalize(signature []byte) (bool, error)
}

// Registry holds the resolved backends. It is populated once by
// NewRegistry and never mutated afterwards.
type Registry struct {
	backends map[Algorithm]Provider
}

// NewRegistry resolves all available backends.
func NewRegistry() *Registry {
	return &Registry{
		backends: map[Algorithm]Provider{
			X25519:   newX25519Provider(),
			MLKEM768: newMLKEMProvider(),
		},
	}
}

// Lookup returns the backend for the given algorithm tag.
func (r *Registry) Lookup(alg Algorithm) (Provider, error) {
	p, ok := r.backends[alg]
	if !ok {
		return nil, fmt.Errorf("%w: no provider for algorithm %q", ErrInvalidInput, alg)
	}

	return p, nil
}

// ForPublicKeys returns the backend matching all given public keys.
// Mixing algorithms across recipients is invalid.
func (r *Registry) ForPublicKeys(keys []*PublicKey) (Provider, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no recipient keys given", ErrInvalidInput)
	}

	for _, key := range keys {
		if key == nil {
			return nil, fmt.Errorf("%w: nil recipient key", ErrInvalidInput)
		}
	}

	alg := keys[0].Algorithm()

	for _, key := range keys[1:] {
		if key.Algorithm() != alg {
			return nil, fmt.Errorf("%w: mixed recipient algorithms %q and %q",
				ErrInvalidInput, alg, key.Algorithm())
		}
	}

	return r.Lookup(alg)
}

// ForPublicKey returns the backend matching the public key.
func (r *Registry) ForPublicKey(key *PublicKey) (Provider, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: nil public key", ErrInvalidInput)
	}

	return r.Lookup(key.Algorithm())
}

// ForPrivateKey returns the backend matching the private key.
func (r *Registry) ForPrivateKey(key *PrivateKey) (Provider, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: nil private key", ErrInvalidInput)
	}

	return r.Lookup(key.Algorithm())
}
