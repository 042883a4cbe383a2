package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/prbot/internal/config"
	"github.com/dshills/prbot/internal/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List providers and their default models",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printModels(cmd)
	},
}

func printModels(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	for _, name := range providers.Supported() {
		fmt.Fprintf(out, "%-11s %s\n", name, providers.DefaultModel(name))
	}
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate provider credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(buildOverrides())
		if err != nil {
			return fail(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Checking %s...\n", cfg.Provider)

		gen, err := providers.New(providers.Config{
			Provider: cfg.Provider,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey(),
		})
		if err != nil {
			return fail(&config.Error{Field: "provider", Err: err})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, err = gen.Generate(ctx, providers.Request{
			System:    "Respond with exactly: ok",
			Messages:  []providers.Message{{Role: providers.RoleUser, Content: "ping"}},
			MaxTokens: 10,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			if providers.IsAuthError(err) {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s is configured and responding\n", gen.Name())
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsDoctorCmd)
	addProviderFlags(modelsDoctorCmd)
}
