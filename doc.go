// Package goseal seals files and buffers for one or more recipients
// using hybrid public-key cryptography.
//
// Content is encrypted once under an ephemeral AES-256-GCM key, which is
// then wrapped for each recipient through key encapsulation. Two suites
// are available: X25519 with Ed25519 signatures, and the post-quantum
// ML-KEM-768 with ML-DSA-65 signatures. Files of any size are processed
// in fixed-size chunks, bounding memory use, and outputs are written
// atomically so failures never leave partial files behind.
//
// Basic usage:
//
//	sealer, err := goseal.New()
//	if err != nil {
//		return err
//	}
//
//	pair, err := sealer.GenerateKeyPair()
//	if err != nil {
//		return err
//	}
//
//	sealed, err := sealer.Encrypt("attack at dawn", pair.Public)
//	if err != nil {
//		return err
//	}
//
//	plaintext, err := sealer.Decrypt(sealed, pair.Private)
//
// Errors wrap one of the package sentinels (ErrInvalidInput,
// ErrProviderFailure, ErrCorruptContainer, ErrIOFailure) and are
// classified with errors.Is.
package goseal
