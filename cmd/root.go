package cmd

import (
	"errors"
	"os"

	"rcinit/internal/api"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeCycle indicates the service definitions contain a dependency cycle.
	ExitCodeCycle = 2
)

var (
	// configPath is the directory holding config.yaml and services.yaml.
	configPath string

	// debug enables verbose logging across the application.
	debug bool
)

// rootCmd represents the base command for the rcinit application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rcinit",
	Short: "Dependency-ordered service supervisor with run-levels",
	Long: `rcinit starts, stops and supervises system services in dependency order.

Services are declared in services.yaml inside the configuration directory.
Each service names the services or capabilities it depends on and the
run-levels it belongs to. rcinit resolves a deterministic start order for a
run-level, starts dependencies before their dependents, refuses to stop a
service other running services still depend on, and stops run-levels in
reverse order at shutdown.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "rcinit version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	var cycle *api.CircularDependencyError
	if errors.As(err, &cycle) {
		return ExitCodeCycle
	}
	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "/etc/rcinit", "Configuration directory holding config.yaml and services.yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newBootCmd())
	rootCmd.AddCommand(newOrderCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newEnableCmd())
	rootCmd.AddCommand(newDisableCmd())
	rootCmd.AddCommand(newCheckCmd())
}
