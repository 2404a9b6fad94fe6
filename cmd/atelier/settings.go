package main

import (
	"io/fs"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/atelier"
	"github.com/jpalmerr/atelier/config"
	"github.com/jpalmerr/atelier/internal/server"
)

// loadConfig reads the optional config file and applies flag and
// environment overrides on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
		cfg = loaded
	}

	if settings.IsSet("server.host") {
		cfg.Server.Host = settings.GetString("server.host")
	}
	if settings.IsSet("server.port") {
		cfg.Server.Port = settings.GetInt("server.port")
	}
	if settings.IsSet("data_dir") {
		cfg.DataDir = settings.GetString("data_dir")
	}
	if settings.IsSet("log.level") {
		cfg.Log.Level = settings.GetString("log.level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func devMode() bool {
	return settings.GetBool("dev")
}

func policyOf(cfg *config.Config) atelier.Policy {
	p, ok := atelier.ParsePolicy(cfg.Window.Policy)
	if !ok {
		return atelier.DefaultPolicy()
	}
	return p
}

// serverConfig maps the file configuration onto the API server.
func serverConfig(cfg *config.Config) server.Config {
	var assets fs.FS
	if cfg.AssetsDir != "" {
		assets = os.DirFS(cfg.AssetsDir)
	}
	return server.Config{
		Host:             cfg.Server.Host,
		Port:             cfg.Server.Port,
		DatabasePath:     cfg.DatabasePath(),
		Assets:           assets,
		Title:            cfg.Title,
		ReminderSchedule: cfg.Reminders.Schedule,
		ReminderWindow:   cfg.Reminders.Window.Duration(),
	}
}

// coordinatorOptions are the options shared by the desktop and serve runs.
func coordinatorOptions(cfg *config.Config, srv atelier.APIServer, sh atelier.Shell, dev bool) []atelier.Option {
	return []atelier.Option{
		atelier.WithServer(srv),
		atelier.WithShell(sh),
		atelier.WithTitle(cfg.Title),
		atelier.WithWindowSize(cfg.Window.Width, cfg.Window.Height),
		atelier.WithDevTools(dev),
		atelier.WithVersion(version),
	}
}
