package commands

// Command to render the chart a single time and exit

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	logging "elpris/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Fetch prices, render the chart once and exit",
	RunE:  runOnce,
}

func runOnce(cmd *cobra.Command, args []string) error {
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

	result, err := driver.RunOnce(ctx)
	if err != nil {
		return err
	}

	logging.LogSuccess("Chart written",
		zap.String("path", result.Path),
		zap.Int64("size", result.SizeBytes))
	return nil
}
