// Package logic implements the command-level orchestration: file
// resolution, parallel processing, result printing, and stats.
package logic

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/goseal/internal/config"
	"github.com/idelchi/goseal/internal/fileutil"
	"github.com/idelchi/goseal/internal/filter"
	"github.com/idelchi/goseal/internal/keyfile"
	"github.com/idelchi/goseal/internal/pipeline"
	"github.com/idelchi/goseal/internal/provider"
)

// result is the outcome of processing a single file.
type result struct {
	input      string
	output     string
	outputSize int64
	err        error
}

// Run encrypts or decrypts the resolved files in parallel. Each file runs
// its own sequential pipeline; parallelism exists only across files.
func Run(cfg *config.Config) error {
	scanned, excluded, start, done, err := preamble(cfg)
	if done || err != nil {
		return err
	}

	chunkSize, err := cfg.ChunkBytes()
	if err != nil {
		return err
	}

	cipher := pipeline.NewFileCipher(provider.NewRegistry(), chunkSize, cfg.TempDir)

	var (
		recipients []*provider.PublicKey
		key        *provider.PrivateKey
	)

	if cfg.Decrypt {
		if cfg.KeyFile == "" {
			return fmt.Errorf("decrypt: no private key given (--key)")
		}

		if key, err = keyfile.LoadPrivate(cfg.KeyFile); err != nil {
			return err
		}
	} else {
		if len(cfg.Recipients) == 0 {
			return fmt.Errorf("encrypt: no recipients given (--recipient)")
		}

		if recipients, err = keyfile.LoadRecipients(cfg.Recipients); err != nil {
			return err
		}
	}

	processed, errored, totalSize, err := forEachFile(cfg, func(file string) string {
		return outputPath(file, cfg)
	}, func(file, outPath string) (int64, error) {
		info, statErr := os.Stat(file)
		if statErr != nil {
			return 0, fmt.Errorf("getting file info for %q: %w", file, statErr)
		}

		var runErr error

		if cfg.Decrypt {
			_, runErr = cipher.DecryptFile(context.Background(), file, outPath, key)
		} else {
			_, runErr = cipher.EncryptFile(context.Background(), file, outPath, recipients)
		}

		if runErr != nil {
			return 0, runErr
		}

		return finalize(outPath, cfg, info.ModTime())
	})

	if cfg.Stats {
		printStats(scanned, excluded, processed, errored, totalSize, time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("processing files: %w", err)
	}

	return nil
}

// forEachFile fans the resolved files out over cfg.Parallel workers and
// funnels outcomes through a printer goroutine.
func forEachFile(cfg *config.Config, pathFor func(file string) string, process func(file, outPath string) (int64, error)) (
	processed, errored int, totalSize int64, err error,
) {
	results := make(chan result, len(cfg.Files))

	group := errgroup.Group{}
	group.SetLimit(cfg.Parallel)

	printed := make(chan struct{})

	go func() {
		defer close(printed)

		for res := range results {
			if res.err != nil {
				errored++

				fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", res.input, res.err)

				continue
			}

			processed++

			totalSize += res.outputSize

			if !cfg.Quiet {
				fmt.Printf("Processed %q -> %q\n", res.input, res.output) //nolint:forbidigo
			}

			if cfg.Delete {
				if err := os.Remove(res.input); err != nil {
					fmt.Fprintf(os.Stderr, "Error deleting %q: %v\n", res.input, err)
				} else if !cfg.Quiet {
					fmt.Printf("Deleted %q\n", res.input) //nolint:forbidigo
				}
			}
		}
	}()

	for _, file := range cfg.Files {
		group.Go(func() error {
			outPath := pathFor(file)

			size, err := process(file, outPath)
			if err != nil {
				results <- result{input: file, err: err}

				return err
			}

			results <- result{input: file, output: outPath, outputSize: size}

			return nil
		})
	}

	err = group.Wait()

	close(results)

	<-printed

	return processed, errored, totalSize, err
}

// preamble resolves files and handles dry run. Returns done=true if the
// dry run was executed.
func preamble(cfg *config.Config) (scanned, excluded int, start time.Time, done bool, err error) {
	start = time.Now()

	scanned, err = resolveFiles(cfg)
	if err != nil {
		return 0, 0, start, false, fmt.Errorf("resolving files: %w", err)
	}

	excluded = scanned - len(cfg.Files)

	if cfg.Dry {
		return scanned, excluded, start, true, dryRun(cfg, scanned, excluded, start)
	}

	return scanned, excluded, start, false, nil
}

// resolveFiles normalizes positional args, expands directories, and
// applies include/exclude filtering.
func resolveFiles(cfg *config.Config) (int, error) {
	includes := append([]string{}, cfg.Include...)
	excludes := append([]string{}, cfg.Exclude...)

	if cfg.IncludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.IncludeFrom)
		if err != nil {
			return 0, fmt.Errorf("loading include patterns: %w", err)
		}

		includes = append(includes, patterns...)
	}

	if cfg.ExcludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.ExcludeFrom)
		if err != nil {
			return 0, fmt.Errorf("loading exclude patterns: %w", err)
		}

		excludes = append(excludes, patterns...)
	}

	hasIncludes := len(includes) > 0

	// Decrypt defaults to selecting sealed files only.
	if cfg.Decrypt && !hasIncludes {
		includes = append(includes, "*"+cfg.EncryptSuffix)
		hasIncludes = true
	}

	selection, err := filter.Resolve(cfg.Files, includes, excludes, hasIncludes)
	if err != nil {
		return selection.Scanned, fmt.Errorf("filtering files: %w", err)
	}

	cfg.Files = selection.Files

	return selection.Scanned, nil
}

// dryRun previews what would be processed without touching any file.
func dryRun(cfg *config.Config, scanned, excluded int, start time.Time) error {
	var totalSize int64

	for _, file := range cfg.Files {
		if !cfg.Quiet {
			fmt.Printf("Processed %q -> %q\n", file, outputPath(file, cfg)) //nolint:forbidigo
		}

		if cfg.Stats {
			if info, err := os.Stat(file); err == nil {
				totalSize += info.Size()
			}
		}
	}

	if cfg.Stats {
		printStats(scanned, excluded, len(cfg.Files), 0, totalSize, time.Since(start))
	}

	return nil
}

// outputPath derives the destination from the input and the configured
// suffixes.
func outputPath(filename string, cfg *config.Config) string {
	ext := cfg.EncryptSuffix

	if cfg.Decrypt {
		filename = strings.TrimSuffix(filename, cfg.EncryptSuffix)
		ext = cfg.DecryptSuffix
	}

	return filepath.Join(filepath.Dir(filename), filepath.Base(filename)+ext)
}

// finalize applies timestamp preservation and reports the output size.
func finalize(outPath string, cfg *config.Config, modTime time.Time) (int64, error) {
	size, err := fileutil.FinalizeOutput(outPath, cfg.PreserveTimestamps, modTime)
	if err != nil {
		return 0, fmt.Errorf("finalizing output: %w", err)
	}

	return size, nil
}

func printStats(scanned, excluded, processed, errored int, totalSize int64, duration time.Duration) {
	fmt.Fprintf(os.Stderr, "\nStats\n")
	fmt.Fprintf(os.Stderr, "  Scanned:   %d\n", scanned)
	fmt.Fprintf(os.Stderr, "  Excluded:  %d\n", excluded)
	fmt.Fprintf(os.Stderr, "  Processed: %d\n", processed)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", errored)
	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(os.Stderr, "  Size:      %s\n", humanize.IBytes(uint64(max(0, totalSize))))
	fmt.Fprintf(os.Stderr, "  Duration:  %s\n", duration.Round(time.Millisecond))
}
