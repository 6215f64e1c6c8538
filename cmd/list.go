package cmd

import (
	"rcinit/internal/formatting"

	"github.com/spf13/cobra"
)

// newListCmd creates the command listing the registered services.
func newListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the registered services",
		Long: `Lists every service declared in services.yaml, sorted by name, with its
enablement, run-levels, dependencies and provided capabilities.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd, output)
			if err != nil {
				return err
			}
			application, err := loadApplication(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			defs := application.Services().Registry.Definitions()
			tbl := formatting.Table{
				Header: []string{"NAME", "ENABLED", "RUNLEVELS", "DEPENDENCIES", "PROVIDES", "DESCRIPTION"},
				Empty:  "No services found",
			}
			for _, def := range defs {
				tbl.Rows = append(tbl.Rows, []interface{}{
					def.Name,
					def.Enabled,
					formatting.JoinOrDash(def.RunLevels),
					formatting.JoinOrDash(def.Dependencies),
					formatting.JoinOrDash(def.Provides),
					formatting.SingleLine(def.Description, formatting.DescriptionWidth),
				})
			}
			return printer.Print(defs, tbl)
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}
