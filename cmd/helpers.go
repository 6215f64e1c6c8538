package cmd

import (
	"github.com/spf13/cobra"

	"rcinit/internal/app"
	"rcinit/internal/formatting"
)

// loadApplication builds the application for a one-shot command. Logging is
// limited to warnings unless --debug is set.
func loadApplication(cmd *cobra.Command) (*app.Application, error) {
	cfg := app.NewConfig(debug, configPath)
	cfg.Quiet = true
	cfg.LogOutput = cmd.ErrOrStderr()
	return app.NewApplication(cfg)
}

// addOutputFlag registers the -o/--output flag on cmd.
func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", "table", "Output format (table, json, yaml)")
}

// newPrinter creates a printer writing to the command output.
func newPrinter(cmd *cobra.Command, output string) (*formatting.Printer, error) {
	format, err := formatting.ParseOutputFormat(output)
	if err != nil {
		return nil, err
	}
	return formatting.NewPrinter(formatting.Options{
		Format: format,
		Out:    cmd.OutOrStdout(),
	}), nil
}
