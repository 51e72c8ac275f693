package main

import (
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	"github.com/tgpulse/tgpulse/internal/cli"
)

func main() {
	// Structured logging with multiple handlers: human-readable text on
	// stdout, JSON errors on stderr.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})
	logger := slog.New(slogmulti.Fanout(textHandler, jsonHandler))
	slog.SetDefault(logger)

	if err := cli.Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
