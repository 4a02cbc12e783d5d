// Command goseal encrypts, decrypts, signs and verifies files using
// hybrid public-key cryptography.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/goseal/internal/commands"
	"github.com/idelchi/goseal/internal/config"
)

// version is set at build time.
var version = "dev"

func main() {
	cfg := &config.Config{}

	if err := commands.NewRootCommand(cfg, version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
