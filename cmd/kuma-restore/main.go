package main

import (
	"fmt"
	"os"

	"github.com/dean-jl/kuma-restore/internal/config"
	"github.com/spf13/cobra"
)

// CLIConfig holds CLI flag values
type CLIConfig struct {
	ConfigPath string
	Debug      bool
	Verbose    bool
}

var cliConfig = &CLIConfig{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kuma-restore",
	Short: "kuma-restore recreates Uptime Kuma monitors from a backup JSON.",
	Long: "A command-line tool to restore monitors, groups and notification channels " +
		"from an Uptime Kuma backup export into a running server over its Socket.IO API.",
	Run: func(cmd *cobra.Command, args []string) {
		// Main CLI logic goes here (currently empty for root command)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cliConfig.ConfigPath, "config", "", "Path to an optional YAML configuration file (environment variables fill any unset field)")
	rootCmd.PersistentFlags().BoolVar(&cliConfig.Debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&cliConfig.Verbose, "verbose", false, "Enable verbose output")
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(restoreCmd)

	rootCmd.Version = config.Version
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func debugPrintln(a ...interface{}) {
	if cliConfig.Debug {
		fmt.Println(a...)
	}
}

// verbosePrintlnf prints formatted verbose messages when verbose mode is enabled
func verbosePrintlnf(format string, a ...interface{}) {
	if cliConfig.Verbose {
		fmt.Printf(format, a...)
	}
}

func main() {
	Execute()
}
