package cmd

import (
	"errors"
	"fmt"
	"time"

	"rcinit/internal/app"
	"rcinit/internal/config"
	"rcinit/internal/formatting"
	"rcinit/internal/orchestrator"

	"github.com/spf13/cobra"
)

// newStatusCmd creates the command showing the runtime state of services.
func newStatusCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status [service]",
		Short: "Show the runtime state of services",
		Long: `Shows the state, PID, restart count, uptime and last error of every
service, or of a single service when one is named.

The state is read from the status file that a booted rcinit keeps current.
When no status file exists, the registered services are shown as inactive.

Examples:
  rcinit status
  rcinit status sshd -o yaml`,
		Args: cobra.MaximumNArgs(1),
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
			report, err := svcs.ReadStatus()
			if errors.Is(err, config.ErrNotExist) {
				fmt.Fprintln(cmd.ErrOrStderr(), "rcinit is not booted, showing registered services")
				report = svcs.LiveStatus()
			} else if err != nil {
				return err
			}

			if len(args) == 1 {
				status, err := report.Service(args[0])
				if err != nil {
					return err
				}
				report.Services = []orchestrator.ServiceStatus{status}
			}
			return printer.Print(report, statusTable(printer, report))
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

func statusTable(printer *formatting.Printer, report *app.StatusReport) formatting.Table {
	tbl := formatting.Table{
		Title:  "Run-level " + report.RunLevel,
		Header: []string{"NAME", "STATE", "ENABLED", "PID", "RESTARTS", "UPTIME", "LAST ERROR"},
		Empty:  "No services found",
	}
	for _, status := range report.Services {
		pid := "-"
		if status.PID > 0 {
			pid = fmt.Sprint(status.PID)
		}
		uptime := "-"
		if status.Uptime > 0 {
			uptime = status.Uptime.Truncate(time.Second).String()
		}
		lastError := "-"
		if status.LastError != "" {
			lastError = formatting.SingleLine(status.LastError, formatting.DescriptionWidth)
		}
		tbl.Rows = append(tbl.Rows, []interface{}{
			status.Name,
			printer.State(status.State.String()),
			status.Enabled,
			pid,
			status.RestartCount,
			uptime,
			lastError,
		})
	}
	return tbl
}
