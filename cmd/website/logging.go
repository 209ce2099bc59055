package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/adampresley/photoessays/cmd/website/internal/configuration"
)

func setupLogger(config *configuration.Config, version string) {
	var (
		handler slog.Handler
	)

	options := &slog.HandlerOptions{
		Level: logLevel(config.LogLevel),
	}

	if version == "development" {
		handler = slog.NewTextHandler(os.Stdout, options)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, options)
	}

	slog.SetDefault(slog.New(handler).With("app", appName, "version", version))
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}
