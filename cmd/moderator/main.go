package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/NeuralTrust/TextModerator/pkg/config"
	"github.com/NeuralTrust/TextModerator/pkg/dependency_container"
	infraLogger "github.com/NeuralTrust/TextModerator/pkg/infra/logger"
	"github.com/NeuralTrust/TextModerator/pkg/server"
	"github.com/joho/godotenv"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	if err := config.Load(configPath()); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	logger, closeLogger, err := infraLogger.NewLogger(infraLogger.Options{
		Level:        cfg.Log.Level,
		FileDisabled: cfg.Log.FileDisabled,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer closeLogger()

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer func() { _ = container.Close() }()
	container.StartBackground(ctx)

	srv := server.NewModeratorServer(server.ModeratorServerDI{
		Config:  cfg,
		Logger:  logger,
		Routers: container.Routers(),
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		os.Exit(1)
	}
	fmt.Println("server gracefully stopped")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "./config"
}
