package cmd

import (
	"rcinit/internal/formatting"

	"github.com/spf13/cobra"
)

type orderOutput struct {
	RunLevel string   `json:"runLevel" yaml:"runLevel"`
	Order    []string `json:"order" yaml:"order"`
}

// newOrderCmd creates the command printing the start order of a run-level.
func newOrderCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "order <runlevel>",
		Short: "Print the start order of a run-level",
		Long: `Resolves the start order of every service in the given run-level.

Dependencies are resolved through provided capabilities, and ties are
broken by service name, so the order is the same on every run. The
command fails with exit code 2 when the run-level contains a dependency
cycle.

Examples:
  rcinit order default
  rcinit order boot -o json`,
		Args: cobra.ExactArgs(1),
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

			svcs := application.Services()
			order, err := svcs.Resolver.ResolveOrder(args[0])
			if err != nil {
				return err
			}

			tbl := formatting.Table{
				Title:  "Run-level " + args[0],
				Header: []string{"#", "SERVICE", "ENABLED", "PROVIDES"},
				Empty:  "No services in run-level " + args[0],
			}
			for i, name := range order {
				def, err := svcs.Registry.Definition(name)
				if err != nil {
					return err
				}
				tbl.Rows = append(tbl.Rows, []interface{}{i + 1, name, def.Enabled, formatting.JoinOrDash(def.Provides)})
			}
			return printer.Print(orderOutput{RunLevel: args[0], Order: order}, tbl)
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}
