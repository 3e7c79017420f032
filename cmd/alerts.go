package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"stock-digest/internal/service"
)

var (
	alertsDryRun    bool
	alertsForce     bool
	alertsWatchlist string
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Scan the watchlist for price target changes once",
	Run:   RunAlerts,
}

func init() {
	alertsCmd.Flags().BoolVar(&alertsDryRun, "dry-run", false, "print the alert email instead of sending it")
	alertsCmd.Flags().BoolVar(&alertsForce, "force", false, "send the email even when no changes were found")
	alertsCmd.Flags().StringVar(&alertsWatchlist, "watchlist", "", "override the watchlist file path")
}

func RunAlerts(cmd *cobra.Command, args []string) {
	appDep, err := NewAppDependency(cmd.Context())
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer appDep.Close()

	if alertsWatchlist != "" {
		appDep.cfg.Alerts.WatchlistPath = alertsWatchlist
	}

	services, err := appDep.NewServices()
	if err != nil {
		log.Fatalf("Failed to create services: %v", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), appDep.cfg.Scheduler.TimeoutDuration)
	defer cancel()

	if err := services.AlertsService.Run(ctx, service.AlertRunOption{DryRun: alertsDryRun, Force: alertsForce}); err != nil {
		log.Fatalf("Alerts run failed: %v", err)
	}
}
