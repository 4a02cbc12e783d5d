package provider

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

// Key part sizes for the x25519 backend.
const (
	x25519PublicKeySize   = 32
	x25519PrivateKeySize  = 32
	ed25519PublicKeySize  = ed25519.PublicKeySize
	ed25519PrivateKeySize = ed25519.PrivateKeySize
)

// x25519Provider combines X25519 key encapsulation (ephemeral ECDH) with
// Ed25519 signatures.
type x25519Provider struct{}

func newX25519Provider() *x25519Provider { return &x25519Provider{} }

func (p *x25519Provider) Algorithm() Algorithm { return X25519 }

func (p *x25519Provider) GenerateKeyPair() (*KeyPair, error) {
	kemPriv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: generating X25519 key: %w", ErrFailure, err)
	}

	sigPub, sigPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: generating Ed25519 key: %w", ErrFailure, err)
	}

	return &KeyPair{
		Private: newPrivateKey(X25519, kemPriv.Bytes(), sigPriv),
		Public:  newPublicKey(X25519, kemPriv.PublicKey().Bytes(), sigPub),
	}, nil
}

func (p *x25519Provider) Encrypt(plaintext, associatedData []byte, recipients []*PublicKey) ([]byte, error) {
	return sealEnvelope(X25519, p, plaintext, associatedData, recipients)
}

func (p *x25519Provider) Decrypt(ciphertext, associatedData []byte, key *PrivateKey) ([]byte, error) {
	return openEnvelope(X25519, p, ciphertext, associatedData, key)
}

func (p *x25519Provider) Sign(data []byte, key *PrivateKey) ([]byte, error) {
	return signBuffer(p, data, key)
}

func (p *x25519Provider) Verify(data, signature []byte, key *PublicKey) (bool, error) {
	return verifyBuffer(p, data, signature, key)
}

func (p *x25519Provider) NewSigner(key *PrivateKey) (Signer, error) {
	if len(key.sig) != ed25519PrivateKeySize {
		return nil, fmt.Errorf("%w: Ed25519 signing key is %d bytes, want %d",
			ErrInvalidInput, len(key.sig), ed25519PrivateKeySize)
	}

	return newHashSigner(p, key), nil
}

func (p *x25519Provider) NewVerifier(key *PublicKey) (Verifier, error) {
	if len(key.sig) != ed25519PublicKeySize {
		return nil, fmt.Errorf("%w: Ed25519 public key is %d bytes, want %d",
			ErrInvalidInput, len(key.sig), ed25519PublicKeySize)
	}

	return newHashVerifier(p, key), nil
}

// encapsulate generates an ephemeral X25519 key, performs ECDH with the
// recipient, and transmits the ephemeral public key as KEM ciphertext.
func (p *x25519Provider) encapsulate(publicKey []byte) (ciphertext, shared []byte, err error) {
	peer, err := ecdh.X25519().NewPublicKey(publicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing recipient key: %w", err)
	}

	ephemeral, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generating ephemeral key: %w", err)
	}

	shared, err = ephemeral.ECDH(peer)
	if err != nil {
		return nil, nil, fmt.Errorf("computing shared secret: %w", err)
	}

	return ephemeral.PublicKey().Bytes(), shared, nil
}

func (p *x25519Provider) decapsulate(privateKey, ciphertext []byte) ([]byte, error) {
	priv, err := ecdh.X25519().NewPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	ephemeral, err := ecdh.X25519().NewPublicKey(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("parsing ephemeral key: %w", err)
	}

	shared, err := priv.ECDH(ephemeral)
	if err != nil {
		return nil, fmt.Errorf("computing shared secret: %w", err)
	}

	return shared, nil
}

func (p *x25519Provider) signDigest(privateKey, digest []byte) ([]byte, error) {
	if len(privateKey) != ed25519PrivateKeySize {
		return nil, fmt.Errorf("%w: Ed25519 signing key is %d bytes, want %d",
			ErrInvalidInput, len(privateKey), ed25519PrivateKeySize)
	}

	return ed25519.Sign(ed25519.PrivateKey(privateKey), digest), nil
}

func (p *x25519Provider) verifyDigest(publicKey, digest, signature []byte) (bool, error) {
	if len(publicKey) != ed25519PublicKeySize {
		return false, fmt.Errorf("%w: Ed25519 public key is %d bytes, want %d",
			ErrInvalidInput, len(publicKey), ed25519PublicKeySize)
	}

	return ed25519.Verify(ed25519.PublicKey(publicKey), digest, signature), nil
}
