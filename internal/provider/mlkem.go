package provider

import (
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

// mlkemProvider combines ML-KEM-768 key encapsulation (FIPS 203) with
// ML-DSA-65 signatures (FIPS 204).
type mlkemProvider struct{}

func newMLKEMProvider() *mlkemProvider { return &mlkemProvider{} }

func (p *mlkemProvider) Algorithm() Algorithm { return MLKEM768 }

func (p *mlkemProvider) GenerateKeyPair() (*KeyPair, error) {
	kemPub, kemPriv, err := mlkem768.Scheme().GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("%w: generating ML-KEM-768 key: %w", ErrFailure, err)
	}

	// MarshalBinary never fails for freshly generated keys.
	kemPubBytes, _ := kemPub.MarshalBinary()
	kemPrivBytes, _ := kemPriv.MarshalBinary()

	sigPub, sigPriv, err := mldsa65.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: generating ML-DSA-65 key: %w", ErrFailure, err)
	}

	sigPubBytes, _ := sigPub.MarshalBinary()
	sigPrivBytes, _ := sigPriv.MarshalBinary()

	return &KeyPair{
		Private: newPrivateKey(MLKEM768, kemPrivBytes, sigPrivBytes),
		Public:  newPublicKey(MLKEM768, kemPubBytes, sigPubBytes),
	}, nil
}

func (p *mlkemProvider) Encrypt(plaintext, associatedData []byte, recipients []*PublicKey) ([]byte, error) {
	return sealEnvelope(MLKEM768, p, plaintext, associatedData, recipients)
}

func (p *mlkemProvider) Decrypt(ciphertext, associatedData []byte, key *PrivateKey) ([]byte, error) {
	return openEnvelope(MLKEM768, p, ciphertext, associatedData, key)
}

func (p *mlkemProvider) Sign(data []byte, key *PrivateKey) ([]byte, error) {
	return signBuffer(p, data, key)
}

func (p *mlkemProvider) Verify(data, signature []byte, key *PublicKey) (bool, error) {
	return verifyBuffer(p, data, signature, key)
}

func (p *mlkemProvider) NewSigner(key *PrivateKey) (Signer, error) {
	if len(key.sig) != mldsa65.PrivateKeySize {
		return nil, fmt.Errorf("%w: ML-DSA-65 signing key is %d bytes, want %d",
			ErrInvalidInput, len(key.sig), mldsa65.PrivateKeySize)
	}

	return newHashSigner(p, key), nil
}

func (p *mlkemProvider) NewVerifier(key *PublicKey) (Verifier, error) {
	if len(key.sig) != mldsa65.PublicKeySize {
		return nil, fmt.Errorf("%w: ML-DSA-65 public key is %d bytes, want %d",
			ErrInvalidInput, len(key.sig), mldsa65.PublicKeySize)
	}

	return newHashVerifier(p, key), nil
}

func (p *mlkemProvider) encapsulate(publicKey []byte) (ciphertext, shared []byte, err error) {
	pub, err := mlkem768.Scheme().UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing recipient key: %w", err)
	}

	ciphertext, shared, err = mlkem768.Scheme().Encapsulate(pub)
	if err != nil {
		return nil, nil, fmt.Errorf("encapsulating: %w", err)
	}

	return ciphertext, shared, nil
}

func (p *mlkemProvider) decapsulate(privateKey, ciphertext []byte) ([]byte, error) {
	priv, err := mlkem768.Scheme().UnmarshalBinaryPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	shared, err := mlkem768.Scheme().Decapsulate(priv, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decapsulating: %w", err)
	}

	return shared, nil
}

func (p *mlkemProvider) signDigest(privateKey, digest []byte) ([]byte, error) {
	var priv mldsa65.PrivateKey
	if err := priv.UnmarshalBinary(privateKey); err != nil {
		return nil, fmt.Errorf("%w: parsing ML-DSA-65 signing key: %w", ErrInvalidInput, err)
	}

	signature := make([]byte, mldsa65.SignatureSize)
	if err := mldsa65.SignTo(&priv, digest, nil, false, signature); err != nil {
		return nil, fmt.Errorf("%w: signing: %w", ErrFailure, err)
	}

	return signature, nil
}

func (p *mlkemProvider) verifyDigest(publicKey, digest, signature []byte) (bool, error) {
	var pub mldsa65.PublicKey
	if err := pub.UnmarshalBinary(publicKey); err != nil {
		return false, fmt.Errorf("%w: parsing ML-DSA-65 public key: %w", ErrInvalidInput, err)
	}

	return mldsa65.Verify(&pub, digest, nil, signature), nil
}
