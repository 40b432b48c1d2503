package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("TIBBER_TOKEN", "")

	cfg, err := LoadConfig(newFlags(t))
	require.NoError(t, err)

	require.Equal(t, DefaultEndpoint, cfg.Tibber.Endpoint)
	require.Equal(t, 0, cfg.Tibber.MaxRetries)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout())
	require.Equal(t, 30*time.Second, cfg.PollInterval())
	require.Equal(t, DefaultOutputPath, cfg.Output.Path)
	require.Equal(t, DefaultDPI, cfg.Output.DPI)
	require.Equal(t, "Europe/Stockholm", cfg.Location().String())
	require.False(t, cfg.TelegramEnabled())
	require.Error(t, cfg.ValidateForFetch())
}

func TestLoadConfig_EnvAndFlags(t *testing.T) {
	t.Setenv("TIBBER_TOKEN", "secret")
	t.Setenv("ELPRIS_OUTPUT_PATH", "/tmp/env.png")
	t.Setenv("ELPRIS_OUTPUT_DPI", "90")

	cfg, err := LoadConfig(newFlags(t, "--output.dpi=150"))
	require.NoError(t, err)

	require.Equal(t, "secret", cfg.Tibber.Token)
	require.Equal(t, "/tmp/env.png", cfg.Output.Path)
	require.Equal(t, 150, cfg.Output.DPI, "explicit flag wins over env")
	require.NoError(t, cfg.ValidateForFetch())
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elpris.yaml")
	yaml := []byte(`
tibber:
  token: from-yaml
  max_retries: 2
app:
  timezone: Europe/Oslo
  schedule: "0 * * * *"
output:
  html_path: ./shared/elpris.html
`)
	require.NoError(t, os.WriteFile(path, yaml, 0644))

	cfg, err := LoadConfig(newFlags(t, "--config="+path))
	require.NoError(t, err)

	require.Equal(t, "from-yaml", cfg.Tibber.Token)
	require.Equal(t, 2, cfg.Tibber.MaxRetries)
	require.Equal(t, "Europe/Oslo", cfg.Location().String())
	require.Equal(t, "0 * * * *", cfg.App.Schedule)
	require.Equal(t, "./shared/elpris.html", cfg.Output.HTMLPath)
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string][]string{
		"bad timezone":       {"--app.timezone=Mars/Olympus"},
		"zero dpi":           {"--output.dpi=0"},
		"zero poll interval": {"--app.poll_interval=0"},
		"bad schedule":       {"--app.schedule=every hour"},
		"half telegram":      {"--telegram.bot_token=abc"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(newFlags(t, args...))
			require.Error(t, err)
		})
	}
}
