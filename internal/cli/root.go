package cli

import (
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// GlobalFlags contains global flags available for all commands
type GlobalFlags struct {
	Config  string
	DBPath  string
	Verbose bool
	JSON    bool
	NoColor bool
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "reelsync",
	Short: "ReelSync - Creator Catalog Sync Service",
	Long: `ReelSync keeps a local catalog of short-video metadata in sync with
the remote platform for every connected creator account.

It manages OAuth tokens (refreshing them ahead of expiry), walks the
platform's cursor-paginated listing API, and upserts every video into
local storage, with an HTTP API and an optional periodic scheduler.

Usage:
  reelsync [command] [flags]

Available Commands:
  serve      Start the ReelSync server (API + scheduler)
  sync       Run a one-off sync for some or all accounts
  accounts   List connected accounts
  version    Print the version number

Flags:
  --config string   Path to configuration file (default "config.yaml")
  --db string       Path to SQLite database (default "./data/reelsync.db")
  --verbose         Enable verbose output
  --json            Output in JSON format
  --no-color        Disable colored output

Use "reelsync [command] --help" for more information about a command.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
}

// InitRoot initializes the root command with global flags
func InitRoot() {
	configPath := os.Getenv("REELSYNC_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	dbPath := os.Getenv("REELSYNC_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/reelsync.db"
	}

	RootCmd.PersistentFlags().StringVar(&globalFlags.Config, "config", configPath, "Path to configuration file")
	RootCmd.PersistentFlags().StringVar(&globalFlags.DBPath, "db", dbPath, "Path to SQLite database")
	RootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable verbose output")
	RootCmd.PersistentFlags().BoolVar(&globalFlags.JSON, "json", false, "Output in JSON format")
	RootCmd.PersistentFlags().BoolVar(&globalFlags.NoColor, "no-color", false, "Disable colored output")

	// Add version command
	RootCmd.AddCommand(versionCmd)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ReelSync",
	Long:  `All software has versions. This is ReelSync's`,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion()
	},
}

var globalFlags GlobalFlags

// GetGlobalFlags returns the global flags
func GetGlobalFlags() GlobalFlags {
	return globalFlags
}

// printVersion prints the version information
func printVersion() {
	info := GetVersionInfo()
	println("ReelSync Version:", info.Version)
	println("Go Version:", info.GoVersion)
	println("OS/Arch:", info.OS+"/"+info.Arch)
	println("Build Date:", info.BuildDate)
}

// VersionInfo contains version information
type VersionInfo struct {
	Version   string
	GoVersion string
	OS        string
	Arch      string
	BuildDate string
}

// GetVersionInfo returns version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   "0.1.0",
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		BuildDate: "unknown",
	}
}
