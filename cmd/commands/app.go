package commands

// Wiring shared by the commands: config, logging, client, renderer, driver

import (
	"fmt"

	"elpris/internal/clients_api/tibber"
	"elpris/internal/features/pricechart"
	"elpris/internal/infra/config"
	logging "elpris/internal/infra/log"
	"elpris/monitor"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		logging.LogError("Failed to load config", zap.Error(err))
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logging.Init(logging.Options{Dir: cfg.App.LogDir, Console: true}); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, nil
}

func newDriver(cfg *config.Config) (*monitor.Driver, error) {
	if err := cfg.ValidateForFetch(); err != nil {
		return nil, err
	}

	client := tibber.NewClient(tibber.Options{
		Endpoint:   cfg.Tibber.Endpoint,
		Token:      cfg.Tibber.Token,
		Timeout:    cfg.RequestTimeout(),
		MaxRetries: cfg.Tibber.MaxRetries,
		Location:   cfg.Location(),
	})

	renderer, err := pricechart.NewRenderer(pricechart.Options{
		OutputPath: cfg.Output.Path,
		HTMLPath:   cfg.Output.HTMLPath,
		DPI:        cfg.Output.DPI,
		FontPath:   cfg.Output.FontPath,
		Location:   cfg.Location(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize renderer: %w", err)
	}

	opts := monitor.Options{
		PollInterval: cfg.PollInterval(),
		Location:     cfg.Location(),
	}

	if cfg.App.Schedule != "" {
		schedule, err := cron.ParseStandard(cfg.App.Schedule)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule: %w", err)
		}
		opts.Schedule = schedule
		logging.LogInfo("Using custom refresh schedule", zap.String("schedule", cfg.App.Schedule))
	}

	if cfg.TelegramEnabled() {
		publisher, err := monitor.NewTelegramPublisher(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logging.LogWarn("Telegram publishing disabled", zap.Error(err))
		} else {
			opts.Publisher = publisher
		}
	}

	return monitor.NewDriver(client, renderer, opts), nil
}
