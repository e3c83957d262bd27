package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the CLI
func SetVersion(v string) {
	version = v
}

// rootOptions are the persistent flags shared by all commands.
type rootOptions struct {
	configPath string
	calendar   string
	account    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "calimport",
		Short: "Adds events to a calendar, warning about overlaps",
		Long: `calimport adds events to a named Google or CalDAV calendar, either one at a
time from prompts or in bulk from a CSV, YAML or ICS file.

Before each event is created the upcoming events of the calendar are fetched
and checked for time overlaps. Overlapping events are only created after
confirmation, or according to --on-conflict for unattended imports.

Without a subcommand the interactive menu is started.`,
		Version:      version,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate(`{{printf "calimport version %s\n" .Version}}`)

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: ./calimport.toml, then ~/.config/calimport/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.calendar, "calendar", "", "Calendar display name (overrides calendar_name and CALIMPORT_CALENDAR)")
	cmd.PersistentFlags().StringVar(&opts.account, "account", "", "Account name for stored Google credentials (default: 'default')")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Diagnostic log level: debug, info, warn, error")

	cmd.AddCommand(newMenuCmd(opts))
	cmd.AddCommand(newAddCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newUpcomingCmd(opts))
	cmd.AddCommand(newCalendarsCmd(opts))
	cmd.AddCommand(newAuthCmd(opts))
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newGenerateDocsCmd())

	return cmd
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd := newRootCmd()

	// If no subcommand is provided, run the menu by default
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"menu"})
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
