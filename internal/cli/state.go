package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/prbot/internal/state"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect stored review state",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the recorded file digests of the pull request",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return fail(err)
		}
		if err := cfg.ValidateTarget(); err != nil {
			return fail(err)
		}

		log := newLogger(cfg.LogFormat, os.Stderr)
		pull, err := pullRequest(cfg)
		if err != nil {
			return fail(err)
		}
		store, closeStore, err := openStore(cfg, pull, log)
		if err != nil {
			return fail(err)
		}
		defer closeStore()

		m, err := store.Load(context.Background())
		if err != nil {
			return fail(err)
		}
		printState(cmd, m)
		return nil
	},
}

func printState(cmd *cobra.Command, m *state.DigestMap) {
	out := cmd.OutOrStdout()
	if m.Len() == 0 {
		fmt.Fprintln(out, "No files recorded yet")
		return
	}
	for _, e := range m.Entries() {
		fmt.Fprintf(out, "%s: %s\n", e.Path, e.Digest)
	}
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
}
