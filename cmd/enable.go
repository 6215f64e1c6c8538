package cmd

import (
	"fmt"

	"rcinit/internal/services"

	"github.com/spf13/cobra"
)

// newEnableCmd creates the command enabling a service for automatic start.
func newEnableCmd() *cobra.Command {
	var runLevel string

	cmd := &cobra.Command{
		Use:   "enable <service>",
		Short: "Enable a service for automatic start at boot",
		Long: `Marks a service as enabled and adds the run-level to its run-levels when
missing. Only enabled services are started at boot. The change is written
to services.yaml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			svcs := application.Services()
			if err := svcs.Orchestrator.EnableService(args[0], runLevel); err != nil {
				return err
			}
			if err := svcs.SaveRegistry(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enabled %s for run-level %s\n", args[0], runLevel)
			return nil
		},
	}

	cmd.Flags().StringVar(&runLevel, "runlevel", services.DefaultRunLevel, "Run-level to enable the service in")
	return cmd
}

// newDisableCmd creates the command removing a service from automatic start.
func newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <service>",
		Short: "Disable automatic start of a service",
		Long: `Clears the enabled flag of a service. The service keeps its run-levels
and can still be started explicitly. The change is written to services.yaml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			svcs := application.Services()
			if err := svcs.Orchestrator.DisableService(args[0]); err != nil {
				return err
			}
			if err := svcs.SaveRegistry(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Disabled %s\n", args[0])
			return nil
		},
	}
}
