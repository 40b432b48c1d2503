package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Tibber   TibberConfig   `mapstructure:"tibber"`
	App      AppConfig      `mapstructure:"app"`
	Output   OutputConfig   `mapstructure:"output"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Server   ServerConfig   `mapstructure:"server"`

	location *time.Location
}

// TibberConfig - pricing API access
type TibberConfig struct {
	Token          string `mapstructure:"token"`
	Endpoint       string `mapstructure:"endpoint"`
	RequestTimeout int    `mapstructure:"request_timeout"` // seconds, 0 = no timeout
	MaxRetries     int    `mapstructure:"max_retries"`
}

// AppConfig - loop behaviour
type AppConfig struct {
	Timezone     string `mapstructure:"timezone"`
	PollInterval int    `mapstructure:"poll_interval"` // seconds between wake-time checks
	Schedule     string `mapstructure:"schedule"`      // optional cron expression replacing the built-in cadence
	LogDir       string `mapstructure:"log_dir"`
}

// OutputConfig - rendered artifacts
type OutputConfig struct {
	Path     string `mapstructure:"path"`
	HTMLPath string `mapstructure:"html_path"`
	DPI      int    `mapstructure:"dpi"`
	FontPath string `mapstructure:"font_path"`
}

// TelegramConfig - optional chart delivery
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// ServerConfig - serve command
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

const (
	DefaultEndpoint   = "https://api.tibber.com/v1-beta/gql"
	DefaultTimezone   = "Europe/Stockholm"
	DefaultOutputPath = "./shared/elpris.png"
	DefaultDPI        = 125
)

// RegisterFlags declares every config key as a flag on fs.
// Flag names match the viper keys so BindPFlags maps them directly.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a YAML config file (default ./config.yaml)")

	fs.String("tibber.token", "", "Tibber API bearer token (env: TIBBER_TOKEN)")
	fs.String("tibber.endpoint", DefaultEndpoint, "Tibber GraphQL endpoint (env: TIBBER_ENDPOINT)")
	fs.Int("tibber.request_timeout", 30, "Request timeout in seconds, 0 disables it (env: TIBBER_REQUEST_TIMEOUT)")
	fs.Int("tibber.max_retries", 0, "Retries for 429/5xx responses (env: TIBBER_MAX_RETRIES)")

	fs.String("app.timezone", DefaultTimezone, "Timezone used for hours and scheduling (env: ELPRIS_TIMEZONE)")
	fs.Int("app.poll_interval", 30, "Seconds between wake-time checks (env: ELPRIS_POLL_INTERVAL)")
	fs.String("app.schedule", "", "Cron expression overriding the built-in refresh cadence (env: ELPRIS_SCHEDULE)")
	fs.String("app.log_dir", "logs", "Directory for app.log (env: ELPRIS_LOG_DIR)")

	fs.String("output.path", DefaultOutputPath, "PNG output path (env: ELPRIS_OUTPUT_PATH)")
	fs.String("output.html_path", "", "Optional HTML chart output path (env: ELPRIS_OUTPUT_HTML_PATH)")
	fs.Int("output.dpi", DefaultDPI, "Raster resolution (env: ELPRIS_OUTPUT_DPI)")
	fs.String("output.font_path", "", "TTF font used for chart text (env: ELPRIS_FONT_PATH)")

	fs.String("telegram.bot_token", "", "Telegram bot token for chart delivery (env: TELEGRAM_BOT_TOKEN)")
	fs.String("telegram.chat_id", "", "Telegram chat ID for chart delivery (env: TELEGRAM_CHAT_ID)")

	fs.String("server.addr", ":8080", "Listen address of the serve command (env: ELPRIS_SERVER_ADDR)")
}

// LoadConfig merges, in increasing priority:
// 1. defaults
// 2. config.yaml (or --config)
// 3. .env file
// 4. environment
// 5. flags that were set explicitly
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load(".env") // optional

	v := viper.New()
	setDefaults(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setupEnvAliases(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setupEnvAliases(v *viper.Viper) {
	v.BindEnv("tibber.token", "TIBBER_TOKEN")
	v.BindEnv("tibber.endpoint", "TIBBER_ENDPOINT")
	v.BindEnv("tibber.request_timeout", "TIBBER_REQUEST_TIMEOUT")
	v.BindEnv("tibber.max_retries", "TIBBER_MAX_RETRIES")

	v.BindEnv("app.timezone", "ELPRIS_TIMEZONE")
	v.BindEnv("app.poll_interval", "ELPRIS_POLL_INTERVAL")
	v.BindEnv("app.schedule", "ELPRIS_SCHEDULE")
	v.BindEnv("app.log_dir", "ELPRIS_LOG_DIR")

	v.BindEnv("output.path", "ELPRIS_OUTPUT_PATH")
	v.BindEnv("output.html_path", "ELPRIS_OUTPUT_HTML_PATH")
	v.BindEnv("output.dpi", "ELPRIS_OUTPUT_DPI")
	v.BindEnv("output.font_path", "ELPRIS_FONT_PATH")

	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")

	v.BindEnv("server.addr", "ELPRIS_SERVER_ADDR")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("tibber.token", "")
	v.SetDefault("tibber.endpoint", DefaultEndpoint)
	v.SetDefault("tibber.request_timeout", 30)
	v.SetDefault("tibber.max_retries", 0)

	v.SetDefault("app.timezone", DefaultTimezone)
	v.SetDefault("app.poll_interval", 30)
	v.SetDefault("app.schedule", "")
	v.SetDefault("app.log_dir", "logs")

	v.SetDefault("output.path", DefaultOutputPath)
	v.SetDefault("output.html_path", "")
	v.SetDefault("output.dpi", DefaultDPI)
	v.SetDefault("output.font_path", "")

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")

	v.SetDefault("server.addr", ":8080")
}

// Validate checks settings shared by every command.
func (c *Config) Validate() error {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return fmt.Errorf("invalid app.timezone %q: %w", c.App.Timezone, err)
	}
	c.location = loc

	if c.App.PollInterval <= 0 {
		return fmt.Errorf("app.poll_interval must be positive, got %d", c.App.PollInterval)
	}
	if c.Output.DPI <= 0 {
		return fmt.Errorf("output.dpi must be positive, got %d", c.Output.DPI)
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	if c.Tibber.RequestTimeout < 0 {
		return fmt.Errorf("tibber.request_timeout must not be negative")
	}
	if c.App.Schedule != "" {
		if _, err := cron.ParseStandard(c.App.Schedule); err != nil {
			return fmt.Errorf("invalid app.schedule %q: %w", c.App.Schedule, err)
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// ValidateForFetch checks settings needed by commands that call the pricing API.
func (c *Config) ValidateForFetch() error {
	if c.Tibber.Token == "" {
		return fmt.Errorf("tibber.token is required (env: TIBBER_TOKEN)")
	}
	if c.Tibber.Endpoint == "" {
		return fmt.Errorf("tibber.endpoint is required")
	}
	return nil
}

// Location is the timezone resolved by Validate.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Tibber.RequestTimeout) * time.Second
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.App.PollInterval) * time.Second
}

// TelegramEnabled reports whether rendered charts should be delivered to a chat.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
