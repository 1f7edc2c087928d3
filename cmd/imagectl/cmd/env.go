package cmd

import (
	"github.com/templui/thumbnailer/internal/app"
	"github.com/templui/thumbnailer/internal/config"
	"github.com/templui/thumbnailer/internal/logger"
)

// loadConfig reads the same environment as the server and sets up logging.
func loadConfig() *config.Config {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	return cfg
}

// withApp builds the application (running pending migrations) for one command.
func withApp(fn func(a *app.App) error) error {
	a, err := app.New(loadConfig())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return fn(a)
}
