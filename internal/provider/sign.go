package provider

import (
	"crypto/sha512"
	"fmt"
	"hash"
)

// Both backends sign a SHA-512 prehash of the message. The incremental
// contexts accumulate the running hash, so streaming a file through a
// Signer yields the same signature as Sign over the whole buffer.
type signScheme interface {
	signDigest(privateKey, digest []byte) ([]byte, error)
	verifyDigest(publicKey, digest, signature []byte) (bool, error)
}

func signBuffer(scheme signScheme, data []byte, key *PrivateKey) ([]byte, error) {
	digest := sha512.Sum512(data)

	return scheme.signDigest(key.sig, digest[:])
}

func verifyBuffer(scheme signScheme, data, signature []byte, key *PublicKey) (bool, error) {
	digest := sha512.Sum512(data)

	return scheme.verifyDigest(key.sig, digest[:], signature)
}

// hashSigner is the incremental signing context.
type hashSigner struct {
	hash   hash.Hash
	key    *PrivateKey
	scheme signScheme
	done   bool
}

func newHashSigner(scheme signScheme, key *PrivateKey) *hashSigner {
	return &hashSigner{hash: sha512.New(), key: key, scheme: scheme}
}

// Write feeds more data into the running context.
func (s *hashSigner) Write(p []byte) (int, error) {
	if s.done {
		return 0, fmt.Errorf("%w: signing context already finalized", ErrInvalidInput)
	}

	return s.hash.Write(p)
}

// Finalize closes the context and signs the accumulated digest.
func (s *hashSigner) Finalize() ([]byte, error) {
	if s.done {
		return nil, fmt.Errorf("%w: signing context already finalized", ErrInvalidInput)
	}

	s.done = true

	return s.scheme.signDigest(s.key.sig, s.hash.Sum(nil))
}

// hashVerifier is the incremental verification context.
type hashVerifier struct {
	hash   hash.Hash
	key    *PublicKey
	scheme signScheme
	done   bool
}

func newHashVerifier(scheme signScheme, key *PublicKey) *hashVerifier {
	return &hashVerifier{hash: sha512.New(), key: key, scheme: scheme}
}

// Write feeds more data into the running context.
func (v *hashVerifier) Write(p []byte) (int, error) {
	if v.done {
		return 0, fmt.Errorf("%w: verification context already finalized", ErrInvalidInput)
	}

	return v.hash.Write(p)
}

// Finalize closes the context and checks the signature against the
// accumulated digest.
func (v *hashVerifier) Finalize(signature []byte) (bool, error) {
	if v.done {
		return false, fmt.Errorf("%w: verification context already finalized", ErrInvalidInput)
	}

	v.done = true

	return v.scheme.verifyDigest(v.key.sig, v.hash.Sum(nil), signature)
}
