package provider

import (
	"fmt"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

// keySizes returns the expected encapsulation and signing key part sizes
// for an algorithm, used to validate parsed key material.
func keySizes(alg Algorithm, public bool) (kem, sig int, err error) {
	switch alg {
	case X25519:
		if public {
			return x25519PublicKeySize, ed25519PublicKeySize, nil
		}

		return x25519PrivateKeySize, ed25519PrivateKeySize, nil
	case MLKEM768:
		if public {
			return mlkem768.Scheme().PublicKeySize(), mldsa65.PublicKeySize, nil
		}

		return mlkem768.Scheme().PrivateKeySize(), mldsa65.PrivateKeySize, nil
	default:
		return 0, 0, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidInput, alg)
	}
}
