package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var (
	researchName  string
	researchEmail bool
)

var researchCmd = &cobra.Command{
	Use:   "research SYMBOL",
	Short: "Generate a research brief for one ticker",
	Args:  cobra.ExactArgs(1),
	Run:   RunResearch,
}

func init() {
	researchCmd.Flags().StringVar(&researchName, "name", "", "company name, resolved from the profile feed when omitted")
	researchCmd.Flags().BoolVar(&researchEmail, "email", false, "also mail the report to the configured recipient")
}

func RunResearch(cmd *cobra.Command, args []string) {
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

	generate := services.ResearchService.Generate
	if researchEmail {
		generate = services.ResearchService.GenerateAndSend
	}

	text, err := generate(ctx, args[0], researchName)
	if err != nil {
		log.Fatalf("Research run failed: %v", err)
	}

	fmt.Println(text)
}
