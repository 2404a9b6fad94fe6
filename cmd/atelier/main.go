// Package main is the entry point for the atelier desktop application.
//
// Usage:
//
//	atelier                        # Open the desktop app
//	atelier --dev                  # ... with the web inspector open
//	atelier serve -c atelier.yaml  # Run the API without a window
//	atelier validate -c atelier.yaml
//	atelier version
//
// Every run flag can also be set through ATELIER_* environment variables,
// for example ATELIER_SERVER_PORT=3002.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// settings layers flags and ATELIER_* environment variables over the config
// file.
var settings = viper.New()

// rootCmd opens the desktop app.
var rootCmd = &cobra.Command{
	Use:   "atelier",
	Short: "Appointments, orders, clients and revenue for a jewelry workshop",
	Long: `Atelier is a desktop application for running a small jewelry workshop.

It keeps appointments, commissioned orders, clients and revenue in a local
sqlite database and shows them in a native window.

Running without a subcommand opens the app. Configuration is optional:
  atelier -c ~/.config/atelier/atelier.yaml`,
	SilenceUsage: true,
	RunE:         runDesktop,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this atelier binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "atelier %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "path to config file (optional)")
	flags.Bool("dev", false, "open developer tools and log at debug level")
	flags.String("host", "", "API listen host")
	flags.Int("port", 0, "API listen port")
	flags.String("data-dir", "", "directory holding the database")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")

	_ = settings.BindPFlag("dev", flags.Lookup("dev"))
	_ = settings.BindPFlag("server.host", flags.Lookup("host"))
	_ = settings.BindPFlag("server.port", flags.Lookup("port"))
	_ = settings.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = settings.BindPFlag("log.level", flags.Lookup("log-level"))

	settings.SetEnvPrefix("ATELIER")
	settings.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	settings.AutomaticEnv()

	rootCmd.AddCommand(versionCmd)
}
