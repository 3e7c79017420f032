package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stock-digest",
	Short: "Daily stock gainers digest and price target alerts",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(researchCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
