package cmd

import (
	"errors"
	"fmt"
	"strings"

	"rcinit/internal/formatting"

	"github.com/spf13/cobra"
)

type checkResult struct {
	RunLevel string   `json:"runLevel" yaml:"runLevel"`
	Order    []string `json:"order,omitempty" yaml:"order,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// newCheckCmd creates the command validating every run-level.
func newCheckCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that every run-level resolves",
		Long: `Resolves every run-level named by any service definition and reports
dependency cycles. Exits with code 2 when a cycle is found.`,
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

			resolver := application.Services().Resolver
			var (
				results []checkResult
				errs    []error
			)
			tbl := formatting.Table{
				Header: []string{"RUNLEVEL", "STATUS", "DETAILS"},
				Empty:  "No services found",
			}
			for _, level := range resolver.RunLevels() {
				order, err := resolver.ResolveOrder(level)
				result := checkResult{RunLevel: level, Order: order}
				if err != nil {
					result.Error = err.Error()
					errs = append(errs, fmt.Errorf("run-level %s: %w", level, err))
					tbl.Rows = append(tbl.Rows, []interface{}{level, printer.Status("failed"), err.Error()})
				} else {
					tbl.Rows = append(tbl.Rows, []interface{}{level, printer.Status("completed"), strings.Join(order, " -> ")})
				}
				results = append(results, result)
			}

			if err := printer.Print(results, tbl); err != nil {
				return err
			}
			return errors.Join(errs...)
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}
