// Command as64 assembles MOS 6502 source code in the PowerAssembler
// dialect into Commodore-compatible object files.
package main

import (
	"errors"
	"os"

	"github.com/retrolabs/as64/internal/cli"
	"github.com/retrolabs/as64/internal/logging"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.Execute(); err != nil {
		switch {
		case errors.Is(err, cli.ErrAssemblyFailed):
			return cli.ExitAssemblyErrors
		case errors.Is(err, cli.ErrIOFailed):
			return cli.ExitIOError
		default:
			logger := logging.Default()
			logger.Error("command failed", logging.FieldError, err)
			return cli.ExitUsageError
		}
	}

	return cli.ExitSuccess
}
