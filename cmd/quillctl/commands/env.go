package commands

import (
	"quill/internal/app"
	"quill/internal/config"

	"github.com/sirupsen/logrus"
)

// loadEnv reads .env and the environment the same way the server does.
func loadEnv() (config.Config, *logrus.Logger, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := app.NewLogger(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
