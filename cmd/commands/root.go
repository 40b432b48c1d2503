package commands

// Root command for Cobra CLI
// Declares the shared config flags and registers run, once and serve

import (
	"elpris/internal/infra/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "elpris",
	Short: "Elpris - hourly electricity price chart from the Tibber API",
	Long: `Elpris fetches today's and tomorrow's hourly electricity prices from Tibber,
renders them as a chart image and refreshes it on a fixed cadence.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(serveCmd)
}
