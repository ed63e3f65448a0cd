package main

import (
	"log"
	"os"

	"github.com/dean-jl/kuma-restore/internal/backup"
	"github.com/dean-jl/kuma-restore/internal/config"
	"github.com/dean-jl/kuma-restore/internal/kuma"
	"github.com/dean-jl/kuma-restore/internal/restore"
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore monitors, groups and notification channels from a backup JSON.",
	Long: `Restore the contents of an Uptime Kuma backup export into the configured server.

Notifications are created first, then groups (parents before children), then
monitors, each phase on its own short-lived session. Entities whose exact
name already exists on the server are skipped, so re-running the command is
safe. Use --dry-run to see what would be created without changing anything.
`,
	Run: func(cmd *cobra.Command, args []string) {
		backupPath, _ := cmd.Flags().GetString("backup")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		skipNotifications, _ := cmd.Flags().GetBool("skip-notifications")
		onlyActive, _ := cmd.Flags().GetBool("only-active")

		logger := log.New(os.Stdout, "", log.LstdFlags)

		debugPrintln("[DEBUG] Loading config from:", cliConfig.ConfigPath)
		cfg, err := config.Load(cliConfig.ConfigPath)
		if err != nil {
			logger.Fatalf("[ERROR] %v", err)
		}

		doc, err := backup.Load(backupPath)
		if err != nil {
			logger.Fatalf("[ERROR] %v", err)
		}
		verbosePrintlnf("[VERBOSE] Backup loaded: %d monitors, %d notifications\n",
			len(doc.MonitorList), len(doc.NotificationList))

		if dryRun {
			logger.Printf("[INFO] DRY-RUN: no changes will be applied")
		}
		logger.Printf("[INFO] Connecting to %s as %s", cfg.URL, cfg.Username)

		dialer := kuma.NewDialer(kuma.Config{
			URL:      cfg.URL,
			Username: cfg.Username,
			Password: cfg.Password,
			Timeout:  cfg.Timeout(),
		}, logger)

		restorer := restore.New(restore.Options{
			Dialer:            dialer,
			Logger:            logger,
			DryRun:            dryRun,
			OnlyActive:        onlyActive,
			SkipNotifications: skipNotifications,
		})

		summary, err := restorer.Run(cmd.Context(), doc)
		if err != nil {
			logger.Fatalf("[ERROR] %v", err)
		}

		logger.Printf("[DONE] Groups in backup: %d; Monitors in backup: %d",
			summary.GroupsInBackup, summary.MonitorsInBackup)
		if summary.DryRun {
			logger.Printf("[DONE] Dry-run complete; no changes were made")
		} else {
			logger.Printf("[DONE] Monitors created: %d (paused: %d, skipped: %d)",
				summary.Monitors.Created, summary.Monitors.Paused, summary.Monitors.Skipped)
		}
	},
}

func init() {
	restoreCmd.Flags().String("backup", "", "Path to the Uptime Kuma backup JSON (required)")
	restoreCmd.Flags().Bool("dry-run", false, "Only print actions; do not create anything")
	restoreCmd.Flags().Bool("skip-notifications", false, "Do not (re)create notification channels")
	restoreCmd.Flags().Bool("only-active", false, "Only create monitors that are active in the backup")
	if err := restoreCmd.MarkFlagRequired("backup"); err != nil {
		panic(err)
	}
}
