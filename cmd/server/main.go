package main

import (
	"log/slog"
	"os"

	"go-user-service/internal/app"
	"go-user-service/internal/logger"
)

func main() {
	logger.Setup()

	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
