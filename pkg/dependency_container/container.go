package dependency_container

import (
	"context"
	"fmt"
	"time"

	"github.com/NeuralTrust/TextModerator/pkg/app/moderation"
	"github.com/NeuralTrust/TextModerator/pkg/config"
	handlers "github.com/NeuralTrust/TextModerator/pkg/handlers/http"
	"github.com/NeuralTrust/TextModerator/pkg/infra/cache"
	"github.com/NeuralTrust/TextModerator/pkg/infra/classifier"
	"github.com/NeuralTrust/TextModerator/pkg/infra/httpx"
	"github.com/NeuralTrust/TextModerator/pkg/infra/ratelimit"
	"github.com/NeuralTrust/TextModerator/pkg/middleware"
	"github.com/NeuralTrust/TextModerator/pkg/server/router"
	"github.com/NeuralTrust/TextModerator/pkg/version"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const sweepInterval = 10 * time.Minute

type Container struct {
	Config              *config.Config
	Logger              *logrus.Logger
	RedisClient         *redis.Client
	Limiter             ratelimit.Limiter
	ClassifierFactory   classifier.ClientFactory
	Strategies          []moderation.Strategy
	Moderator           moderation.Moderator
	Prober              moderation.Prober
	HandlerTransport    handlers.HandlerTransport
	MiddlewareTransport *middleware.Transport
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	// HTTPClient overrides the upstream client, mostly for tests.
	HTTPClient httpx.Client
}

func NewContainer(di ContainerDI) (*Container, error) {
	cfg := di.Cfg
	logger := di.Logger

	var redisClient *redis.Client
	if cfg.RateLimit.Backend == ratelimit.BackendRedis {
		client, err := cache.NewRedisClient(cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize rate limit store: %w", err)
		}
		redisClient = client
	}

	limiter, err := ratelimit.NewLimiter(cfg.RateLimit, redisClient, logger)
	if err != nil {
		return nil, err
	}

	httpClient := di.HTTPClient
	if httpClient == nil {
		httpClient = httpx.NewFastHTTPClient(
			httpx.WithTimeout(cfg.Moderation.StrategyTimeout),
			httpx.WithUserAgent(fmt.Sprintf("%s/%s", version.AppName, version.Version)),
		)
	}

	factory := classifier.NewClientFactory(cfg, httpClient, logger)
	strategies := moderation.NewStrategies(factory.Ordered(cfg.Moderation.Order))
	if len(strategies) == 0 && cfg.Moderation.Strict {
		logger.Warn("strict moderation without any configured classifier, every analysis will fail")
	}

	moderator := moderation.NewChain(logger, strategies, moderation.ChainConfig{
		Strict:          cfg.Moderation.Strict,
		StrategyTimeout: cfg.Moderation.StrategyTimeout,
	})
	prober := moderation.NewProber(logger, strategies, cfg.Health.CacheTTL)

	handlerTransport := handlers.HandlerTransport{
		AnalyzeHandler: handlers.NewAnalyzeHandler(handlers.AnalyzeHandlerDeps{
			Logger:    logger,
			Moderator: moderator,
			Limiter:   limiter,
		}),
		HealthHandler:         handlers.NewHealthHandler(prober, cfg.Moderation.Strict),
		TestConnectionHandler: handlers.NewTestConnectionHandler(prober, cfg.Moderation.Strict),
		GetVersionHandler:     handlers.NewGetVersionHandler(),
	}

	middlewareTransport := middleware.NewTransport(
		middleware.NewRequestIDMiddleware(),
		middleware.NewMetricsMiddleware(logger, cfg.Metrics.Enabled),
		middleware.NewPanicRecoverMiddleware(logger),
		middleware.NewCORSGlobalMiddleware(middleware.CORSConfig{
			AllowOrigins: cfg.Server.AllowOrigins,
			ExposeHeaders: []string{
				"Retry-After",
				"X-Request-Id",
				"X-RateLimit-Limit",
				"X-RateLimit-Remaining",
				"X-RateLimit-Reset",
			},
		}),
	)

	return &Container{
		Config:              cfg,
		Logger:              logger,
		RedisClient:         redisClient,
		Limiter:             limiter,
		ClassifierFactory:   factory,
		Strategies:          strategies,
		Moderator:           moderator,
		Prober:              prober,
		HandlerTransport:    handlerTransport,
		MiddlewareTransport: middlewareTransport,
	}, nil
}

// Routers returns the routers the moderator server mounts.
func (c *Container) Routers() []router.ServerRouter {
	return []router.ServerRouter{
		router.NewModeratorRouter(c.MiddlewareTransport, c.HandlerTransport, router.ModeratorRouterConfig{
			EnableDocs: c.Config.Server.EnableDocs,
		}),
	}
}

// StartBackground runs housekeeping until ctx is done. Only the memory limiter needs any.
func (c *Container) StartBackground(ctx context.Context) {
	if memory, ok := c.Limiter.(*ratelimit.MemoryLimiter); ok {
		go memory.RunSweeper(ctx, sweepInterval)
	}
}

func (c *Container) Close() error {
	if c.RedisClient != nil {
		return c.RedisClient.Close()
	}
	return nil
}
