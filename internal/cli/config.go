package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect prbot configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(buildOverrides())
		if err != nil {
			return fail(err)
		}

		data, err := cfg.Show()
		if err != nil {
			return fail(err)
		}

		fmt.Fprint(cmd.OutOrStdout(), data)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	addProviderFlags(configShowCmd)
}
