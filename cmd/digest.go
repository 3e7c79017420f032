package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Build and send the daily gainers digest once",
	Run:   RunDigest,
}

func RunDigest(cmd *cobra.Command, args []string) {
	appDep, err := NewAppDependency(cmd.Context())
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer appDep.Close()

	services, err := appDep.NewServices()
	if err != nil {
		log.Fatalf("Failed to create services: %v", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), appDep.cfg.Scheduler.TimeoutDuration)
	defer cancel()

	if err := services.DigestService.Run(ctx); err != nil {
		log.Fatalf("Digest run failed: %v", err)
	}
}
