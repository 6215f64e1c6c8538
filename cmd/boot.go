package cmd

import (
	"rcinit/internal/app"

	"github.com/spf13/cobra"
)

// newBootCmd creates the long-running boot command.
func newBootCmd() *cobra.Command {
	var (
		runLevel string
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "boot",
		Short: "Boot the configured run-levels and supervise services",
		Long: `Boots every run-level of the boot sequence (sysinit, boot, default unless
configured otherwise), starting the enabled services of each in dependency
order. rcinit then supervises the services until it receives SIGINT or
SIGTERM, and stops the booted run-levels in reverse order before exiting.

While running, rcinit:
  - notifies systemd of readiness when started as a Type=notify unit
  - serves prometheus metrics when metrics.enabled is set in config.yaml
  - reloads services.yaml when it changes and watch is enabled

Use --runlevel to stop the boot sequence at, or extend it with, another
run-level.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.NewConfig(debug, configPath)
			cfg.RunLevel = runLevel
			cfg.Progress = progress

			application, err := app.NewApplication(cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&runLevel, "runlevel", "", "Run-level to enter at the end of boot (default from config.yaml)")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show a progress spinner while booting")
	return cmd
}
