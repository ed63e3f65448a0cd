package main

import (
	"log"
	"os"
	"time"

	"github.com/dean-jl/kuma-restore/internal/config"
	"github.com/dean-jl/kuma-restore/internal/kuma"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the server URL and credentials from the configuration.",
	Long: `Test connectivity to the configured Uptime Kuma server.

This command loads the configuration, opens an authenticated session, and
reports success or failure, helping you verify the server URL and login
credentials before running a restore.
`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := log.New(os.Stdout, "", log.LstdFlags)

		debugPrintln("[DEBUG] Loading config from:", cliConfig.ConfigPath)
		cfg, err := config.Load(cliConfig.ConfigPath)
		if err != nil {
			logger.Fatalf("[ERROR] %v", err)
		}

		verbosePrintlnf("[VERBOSE] Connecting to %s as %s\n", cfg.URL, cfg.Username)
		start := time.Now()

		session, err := kuma.Dial(kuma.Config{
			URL:      cfg.URL,
			Username: cfg.Username,
			Password: cfg.Password,
			Timeout:  cfg.Timeout(),
		}, logger)
		if err != nil {
			logger.Fatalf("[ERROR] Ping failed for %s: %v", cfg.URL, err)
		}
		defer session.Disconnect()

		monitors, err := session.Monitors()
		if err != nil {
			logger.Fatalf("[ERROR] Connected to %s but could not read state: %v", cfg.URL, err)
		}

		logger.Printf("[OK] Ping successful for %s in %v (%d monitors on server)",
			cfg.URL, time.Since(start).Round(time.Millisecond), len(monitors))
	},
}
