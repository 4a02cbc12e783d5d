package provider

import (
	"encoding/binary"
	"fmt"
)

// Key material is stored as two length-framed parts: the encapsulation
// key and the signing key.
//
//	part := length:uint16(BE) | bytes
//	key  := kem_part | sig_part
const keyPartHeaderSize = 2

// PublicKey is an opaque handle over raw public key bytes and an
// algorithm tag. Immutable once created.
type PublicKey struct {
	alg Algorithm
	kem []byte
	sig []byte
}

// PrivateKey is an opaque handle over raw private key bytes and an
// algorithm tag. Immutable once created.
type PrivateKey struct {
	alg Algorithm
	kem []byte
	sig []byte
}

// KeyPair holds a matching private and public key.
type KeyPair struct {
	Private *PrivateKey
	Public  *PublicKey
}

// Algorithm reports the tag of the backend that produced the key.
func (k *PublicKey) Algorithm() Algorithm { return k.alg }

// Bytes marshals the key to its binary representation.
func (k *PublicKey) Bytes() []byte { return marshalKeyParts(k.kem, k.sig) }

// Algorithm reports the tag of the backend that produced the key.
func (k *PrivateKey) Algorithm() Algorithm { return k.alg }

// Bytes marshals the key to its binary representation.
func (k *PrivateKey) Bytes() []byte { return marshalKeyParts(k.kem, k.sig) }

func newPublicKey(alg Algorithm, kem, sig []byte) *PublicKey {
	return &PublicKey{alg: alg, kem: clone(kem), sig: clone(sig)}
}

func newPrivateKey(alg Algorithm, kem, sig []byte) *PrivateKey {
	return &PrivateKey{alg: alg, kem: clone(kem), sig: clone(sig)}
}

// ParsePublicKey reconstructs a public key from its binary representation.
func ParsePublicKey(alg Algorithm, data []byte) (*PublicKey, error) {
	kem, sig, err := unmarshalKeyParts(data)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}

	if err := validateKeySizes(alg, kem, sig, true); err != nil {
		return nil, err
	}

	return &PublicKey{alg: alg, kem: kem, sig: sig}, nil
}

// ParsePrivateKey reconstructs a private key from its binary representation.
func ParsePrivateKey(alg Algorithm, data []byte) (*PrivateKey, error) {
	kem, sig, err := unmarshalKeyParts(data)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	if err := validateKeySizes(alg, kem, sig, false); err != nil {
		return nil, err
	}

	return &PrivateKey{alg: alg, kem: kem, sig: sig}, nil
}

func marshalKeyParts(kem, sig []byte) []byte {
	out := make([]byte, 0, 2*keyPartHeaderSize+len(kem)+len(sig))

	out = binary.BigEndian.AppendUint16(out, uint16(len(kem))) //nolint:gosec // key sizes fit uint16
	out = append(out, kem...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(sig))) //nolint:gosec // key sizes fit uint16
	out = append(out, sig...)

	return out
}

func unmarshalKeyParts(data []byte) (kem, sig []byte, err error) {
	kem, rest, err := readKeyPart(data)
	if err != nil {
		return nil, nil, err
	}

	sig, rest, err = readKeyPart(rest)
	if err != nil {
		return nil, nil, err
	}

	if len(rest) != 0 {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes after key material", ErrInvalidInput, len(rest))
	}

	return kem, sig, nil
}

func readKeyPart(data []byte) (part, rest []byte, err error) {
	if len(data) < keyPartHeaderSize {
		return nil, nil, fmt.Errorf("%w: truncated key material", ErrInvalidInput)
	}

	length := int(binary.BigEndian.Uint16(data))
	data = data[keyPartHeaderSize:]

	if len(data) < length {
		return nil, nil, fmt.Errorf("%w: key part length %d exceeds input", ErrInvalidInput, length)
	}

	return clone(data[:length]), data[length:], nil
}

func validateKeySizes(alg Algorithm, kem, sig []byte, public bool) error {
	wantKem, wantSig, err := keySizes(alg, public)
	if err != nil {
		return err
	}

	if len(kem) != wantKem {
		return fmt.Errorf("%w: %s encapsulation key is %d bytes, want %d",
			ErrInvalidInput, alg, len(kem), wantKem)
	}

	if len(sig) != wantSig {
		return fmt.Errorf("%w: %s signing key is %d bytes, want %d",
			ErrInvalidInput, alg, len(sig), wantSig)
	}

	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)

	return out
}
