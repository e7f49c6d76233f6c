package main

import (
	"context"
	"log"
	"os"

	"github.com/NeuralTrust/TextModerator/pkg/config"
	"github.com/NeuralTrust/TextModerator/pkg/dependency_container"
	infraLogger "github.com/NeuralTrust/TextModerator/pkg/infra/logger"
	"github.com/NeuralTrust/TextModerator/pkg/server"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	fiberadapter "github.com/awslabs/aws-lambda-go-api-proxy/fiber"
)

var adapter *fiberadapter.FiberLambda

func init() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config"
	}
	if err := config.Load(configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	logger, _, err := infraLogger.NewLogger(infraLogger.Options{
		Level: cfg.Log.Level,
		// the function filesystem is read only apart from /tmp
		FileDisabled: true,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize dependencies: %v", err)
	}
	container.StartBackground(context.Background())

	srv := server.NewModeratorServer(server.ModeratorServerDI{
		Config:  cfg,
		Logger:  logger,
		Routers: container.Routers(),
	})
	adapter = fiberadapter.New(srv.App())
}

func handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return adapter.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handler)
}
