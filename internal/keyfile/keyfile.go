// Package keyfile reads and writes key material as hex-encoded files
// tagged with their algorithm, e.g. "x25519:ab12...".
package keyfile

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/idelchi/gogen/pkg/key"

	"github.com/idelchi/goseal/internal/provider"
)

// File permissions for written key material.
const (
	privatePerm = os.FileMode(0o600)
	publicPerm  = os.FileMode(0o644)
)

// SavePrivate writes a private key with owner-only permissions.
func SavePrivate(path string, k *provider.PrivateKey) error {
	return write(path, string(k.Algorithm()), k.Bytes(), privatePerm)
}

// SavePublic writes a public key.
func SavePublic(path string, k *provider.PublicKey) error {
	return write(path, string(k.Algorithm()), k.Bytes(), publicPerm)
}

// LoadPrivate reads and parses a private key file.
func LoadPrivate(path string) (*provider.PrivateKey, error) {
	alg, material, err := read(path)
	if err != nil {
		return nil, err
	}

	parsed, err := provider.ParsePrivateKey(alg, material)
	if err != nil {
		return nil, fmt.Errorf("key file %q: %w", path, err)
	}

	return parsed, nil
}

// LoadPublic reads and parses a public key file.
func LoadPublic(path string) (*provider.PublicKey, error) {
	alg, material, err := read(path)
	if err != nil {
		return nil, err
	}

	parsed, err := provider.ParsePublicKey(alg, material)
	if err != nil {
		return nil, fmt.Errorf("key file %q: %w", path, err)
	}

	return parsed, nil
}

// LoadRecipients reads one public key per path.
func LoadRecipients(paths []string) ([]*provider.PublicKey, error) {
	keys := make([]*provider.PublicKey, 0, len(paths))

	for _, path := range paths {
		k, err := LoadPublic(path)
		if err != nil {
			return nil, err
		}

		keys = append(keys, k)
	}

	return keys, nil
}

func write(path, tag string, material []byte, perm os.FileMode) error {
	line := tag + ":" + hex.EncodeToString(material) + "\n"

	if err := os.WriteFile(path, []byte(line), perm); err != nil {
		return fmt.Errorf("writing key file %q: %w", path, err)
	}

	return nil
}

func read(path string) (provider.Algorithm, []byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-supplied configuration
	if err != nil {
		return "", nil, fmt.Errorf("reading key file %q: %w", path, err)
	}

	tag, encoded, found := strings.Cut(strings.TrimSpace(string(data)), ":")
	if !found {
		return "", nil, fmt.Errorf("key file %q: missing algorithm tag", path)
	}

	material, err := key.FromHex(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("key file %q: %w", path, err)
	}

	return provider.Algorithm(tag), []byte(material), nil
}
