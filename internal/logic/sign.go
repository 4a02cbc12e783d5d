package logic

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/idelchi/goseal/internal/config"
	"github.com/idelchi/goseal/internal/keyfile"
	"github.com/idelchi/goseal/internal/pipeline"
	"github.com/idelchi/goseal/internal/provider"
)

// RunSign writes a detached base64 signature next to each resolved file.
func RunSign(cfg *config.Config) error {
	scanned, excluded, start, done, err := preamble(cfg)
	if done || err != nil {
		return err
	}

	if cfg.KeyFile == "" {
		return fmt.Errorf("sign: no private key given (--key)")
	}

	key, err := keyfile.LoadPrivate(cfg.KeyFile)
	if err != nil {
		return err
	}

	chunkSize, err := cfg.ChunkBytes()
	if err != nil {
		return err
	}

	engine := pipeline.NewSignatureEngine(provider.NewRegistry(), chunkSize)

	processed, errored, totalSize, err := forEachSignature(cfg, func(file string) error {
		signature, err := engine.GenerateFileSignature(context.Background(), file, key)
		if err != nil {
			return err
		}

		sigPath := file + cfg.SignatureSuffix

		encoded := base64.StdEncoding.EncodeToString(signature) + "\n"

		if err := os.WriteFile(sigPath, []byte(encoded), 0o644); err != nil { //nolint:gosec // signatures are public
			return fmt.Errorf("writing signature %q: %w", sigPath, err)
		}

		return nil
	})

	if cfg.Stats {
		printStats(scanned, excluded, processed, errored, totalSize, time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("signing files: %w", err)
	}

	return nil
}

// RunVerify checks each resolved file against its detached signature.
// A mismatch counts as a failure for the exit status.
func RunVerify(cfg *config.Config) error {
	scanned, excluded, start, done, err := preamble(cfg)
	if done || err != nil {
		return err
	}

	if cfg.PublicKey == "" {
		return fmt.Errorf("verify: no public key given (--pub)")
	}

	key, err := keyfile.LoadPublic(cfg.PublicKey)
	if err != nil {
		return err
	}

	chunkSize, err := cfg.ChunkBytes()
	if err != nil {
		return err
	}

	engine := pipeline.NewSignatureEngine(provider.NewRegistry(), chunkSize)

	processed, errored, totalSize, err := forEachSignature(cfg, func(file string) error {
		sigPath := file + cfg.SignatureSuffix

		encoded, err := os.ReadFile(sigPath) //nolint:gosec // path derives from the resolved file list
		if err != nil {
			return fmt.Errorf("reading signature %q: %w", sigPath, err)
		}

		signature, err := base64.StdEncoding.DecodeString(string(trimNewline(encoded)))
		if err != nil {
			return fmt.Errorf("decoding signature %q: %w", sigPath, err)
		}

		valid, err := engine.VerifyFileSignature(context.Background(), file, signature, key)
		if err != nil {
			return err
		}

		if !valid {
			return fmt.Errorf("signature mismatch for %q", file)
		}

		return nil
	})

	if cfg.Stats {
		printStats(scanned, excluded, processed, errored, totalSize, time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("verifying files: %w", err)
	}

	return nil
}

// forEachSignature runs forEachFile with the detached signature path as
// the reported output.
func forEachSignature(cfg *config.Config, process func(file string) error) (
	processed, errored int, totalSize int64, err error,
) {
	return forEachFile(cfg, func(file string) string {
		return file + cfg.SignatureSuffix
	}, func(file, _ string) (int64, error) {
		if err := process(file); err != nil {
			return 0, err
		}

		info, err := os.Stat(file)
		if err != nil {
			return 0, nil //nolint:nilerr // stats are best-effort
		}

		return info.Size(), nil
	})
}

func trimNewline(data []byte) []byte {
	for len(data) > 0 && (data[len(data)-1] == '\n' || data[len(data)-1] == '\r') {
		data = data[:len(data)-1]
	}

	return data
}
