package commands

// Command to run the refresh loop until interrupted
// Any fetch or render error stops the loop and exits non-zero

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	logging "elpris/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch prices and refresh the chart on the built-in cadence",
	Long: `Run the refresh loop: fetch, render, then wait until the next hour
(every quarter hour between 13:00 and 13:15, when tomorrow's prices appear).`,
	RunE: runLoop,
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	driver, err := newDriver(cfg)
	if err != nil {
		logging.LogError("Failed to start", zap.Error(err))
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logging.LogSuccess("Elpris is running",
		zap.String("output", cfg.Output.Path),
		zap.String("timezone", cfg.App.Timezone))

	if err := driver.Run(ctx); err != nil {
		return err
	}

	logging.LogSuccess("Elpris stopped gracefully")
	return nil
}
