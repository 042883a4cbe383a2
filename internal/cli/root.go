package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/prbot/internal/config"
	"github.com/dshills/prbot/internal/github"
	"github.com/dshills/prbot/internal/providers"
)

const version = "0.1.0"

// Exit codes. Partial per-file failures and no-op events exit with success.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "prbot",
	Short: "AI pull request reviewer for CI",
	Long: "prbot reviews the changed files of a pull request with an LLM, posts one review " +
		"comment per file, and answers follow-up questions asked in pull request comments.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// fail reports err on stderr and records its exit code. Handlers return its
// result so cobra does not print usage for runtime failures.
func fail(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitCode = exitCodeFor(err)
	return nil
}

func exitCodeFor(err error) int {
	var cfgErr *config.Error
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &cfgErr), errors.Is(err, providers.ErrUnsupportedProvider):
		return ExitUsageError
	case github.IsAuthError(err), providers.IsAuthError(err):
		return ExitAuthError
	default:
		return ExitRuntimeError
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print prbot version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "prbot version %s\n", version)
	},
}
