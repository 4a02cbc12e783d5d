package provider

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Envelope layout shared by both backends:
//
//	envelope  := version:uint8 | alg:uint8 | nrecip:uint16(BE) | recipient* | content
//	recipient := kemct_len:uint16(BE) | kem_ct | wrap_len:uint16(BE) | wrapped_cek
//	content   := AES-256-GCM(cek, plaintext, associatedData)
//
// The content is encrypted exactly once under an ephemeral content key;
// the content key is wrapped separately per recipient.
const (
	envelopeVersion    = byte(1)
	envelopeHeaderSize = 4
	envelopeContext    = "goseal/envelope/v1"

	// maxRecipients bounds the per-recipient key wraps so that a maximal
	// chunk plus its envelope still fits a container frame.
	maxRecipients = 512
)

// kemScheme is the per-backend key encapsulation capability the shared
// envelope code builds on.
type kemScheme interface {
	// encapsulate derives a fresh shared secret for the recipient public
	// key, returning the KEM ciphertext to transmit alongside it.
	encapsulate(publicKey []byte) (ciphertext, shared []byte, err error)

	// decapsulate recovers the shared secret from the KEM ciphertext.
	decapsulate(privateKey, ciphertext []byte) ([]byte, error)
}

// sealEnvelope encrypts plaintext for all recipients.
func sealEnvelope(alg Algorithm, kem kemScheme, plaintext, associatedData []byte, recipients []*PublicKey) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: no recipients", ErrInvalidInput)
	}

	if len(recipients) > maxRecipients {
		return nil, fmt.Errorf("%w: too many recipients (%d, maximum %d)", ErrInvalidInput, len(recipients), maxRecipients)
	}

	algID, err := alg.ID()
	if err != nil {
		return nil, err
	}

	cek := make([]byte, contentKeySize)
	if _, err := io.ReadFull(rand.Reader, cek); err != nil {
		return nil, fmt.Errorf("%w: generating content key: %w", ErrFailure, err)
	}

	out := make([]byte, 0, envelopeHeaderSize+len(plaintext)+len(recipients)*128)
	out = append(out, envelopeVersion, algID)
	out = binary.BigEndian.AppendUint16(out, uint16(len(recipients))) //nolint:gosec // bounded by the check above

	for idx, recipient := range recipients {
		if recipient == nil {
			return nil, fmt.Errorf("%w: nil recipient %d", ErrInvalidInput, idx)
		}

		kemCT, shared, err := kem.encapsulate(recipient.kem)
		if err != nil {
			return nil, fmt.Errorf("%w: encapsulating for recipient %d: %w", ErrFailure, idx, err)
		}

		wrapKey, err := deriveWrapKey(shared, kemCT, idx)
		if err != nil {
			return nil, err
		}

		wrapper, err := newAEAD(wrapKey)
		if err != nil {
			return nil, err
		}

		wrapped, err := wrapper.Encrypt(cek, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: wrapping content key: %w", ErrFailure, err)
		}

		out = appendPart(out, kemCT)
		out = appendPart(out, wrapped)
	}

	content, err := newAEAD(cek)
	if err != nil {
		return nil, err
	}

	ciphertext, err := content.Encrypt(plaintext, associatedData)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypting content: %w", ErrFailure, err)
	}

	return append(out, ciphertext...), nil
}

// openEnvelope decrypts an envelope with the recipient's private key. Each
// recipient block is tried in order; decryption succeeds as soon as one
// block unwraps the content key.
func openEnvelope(alg Algorithm, kem kemScheme, envelope, associatedData []byte, key *PrivateKey) ([]byte, error) {
	if len(envelope) < envelopeHeaderSize {
		return nil, fmt.Errorf("%w: envelope too short", ErrFailure)
	}

	if envelope[0] != envelopeVersion {
		return nil, fmt.Errorf("%w: unsupported envelope version %d", ErrFailure, envelope[0])
	}

	envAlg, err := AlgorithmByID(envelope[1])
	if err != nil || envAlg != alg {
		return nil, fmt.Errorf("%w: envelope algorithm does not match key algorithm %q", ErrInvalidInput, alg)
	}

	nrecip := int(binary.BigEndian.Uint16(envelope[2:4]))
	rest := envelope[envelopeHeaderSize:]

	var cek []byte

	for idx := range nrecip {
		var kemCT, wrapped []byte

		kemCT, rest, err = readPart(rest)
		if err != nil {
			return nil, err
		}

		wrapped, rest, err = readPart(rest)
		if err != nil {
			return nil, err
		}

		if cek != nil {
			continue // already unwrapped; keep consuming blocks to reach the content
		}

		shared, err := kem.decapsulate(key.kem, kemCT)
		if err != nil {
			continue // not our block
		}

		wrapKey, err := deriveWrapKey(shared, kemCT, idx)
		if err != nil {
			return nil, err
		}

		wrapper, err := newAEAD(wrapKey)
		if err != nil {
			return nil, err
		}

		if unwrapped, err := wrapper.Decrypt(wrapped, nil); err == nil {
			cek = unwrapped
		}
	}

	if cek == nil {
		return nil, fmt.Errorf("%w: no recipient block matches the private key", ErrFailure)
	}

	content, err := newAEAD(cek)
	if err != nil {
		return nil, err
	}

	plaintext, err := content.Decrypt(rest, associatedData)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypting content: %w", ErrFailure, err)
	}

	return plaintext, nil
}

// deriveWrapKey derives the per-recipient wrap key from the KEM shared
// secret. Salt is the hash of the KEM ciphertext; the info string binds
// the envelope context and the recipient index.
func deriveWrapKey(shared, kemCT []byte, index int) ([]byte, error) {
	salt := sha256.Sum256(kemCT)

	info := make([]byte, 0, len(envelopeContext)+2)
	info = append(info, envelopeContext...)
	info = binary.BigEndian.AppendUint16(info, uint16(index)) //nolint:gosec // index bounded by recipient count

	reader := hkdf.New(sha512.New, shared, salt[:], info)

	key := make([]byte, contentKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("%w: deriving wrap key: %w", ErrFailure, err)
	}

	return key, nil
}

func appendPart(out, part []byte) []byte {
	out = binary.BigEndian.AppendUint16(out, uint16(len(part))) //nolint:gosec // KEM sizes fit uint16
	return append(out, part...)
}

func readPart(data []byte) (part, rest []byte, err error) {
	if len(data) < 2 {
		return nil, nil, fmt.Errorf("%w: truncated envelope", ErrFailure)
	}

	length := int(binary.BigEndian.Uint16(data))
	data = data[2:]

	if len(data) < length {
		return nil, nil, fmt.Errorf("%w: envelope part length %d exceeds input", ErrFailure, length)
	}

	return data[:length], data[length:], nil
}
