package commands

// Command to serve the rendered chart over HTTP
// Only reads the output files, so it can run next to "run"

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"elpris/internal/api"
	logging "elpris/internal/infra/log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the rendered chart and its status over HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	gin.SetMode(gin.ReleaseMode)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return api.Serve(ctx, api.Options{
		Addr:      cfg.Server.Addr,
		ImagePath: cfg.Output.Path,
		HTMLPath:  cfg.Output.HTMLPath,
	})
}
