package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/NeuralTrust/TextModerator/pkg/common"
	"github.com/NeuralTrust/TextModerator/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type metricsMiddleware struct {
	logger  *logrus.Logger
	enabled bool
}

func NewMetricsMiddleware(logger *logrus.Logger, enabled bool) Middleware {
	return &metricsMiddleware{
		logger:  logger,
		enabled: enabled,
	}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()
		c.Locals(common.LatencyContextKey, startTime)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}
		elapsed := time.Since(startTime)

		// Route().Path is the registered pattern, unmatched paths collapse into one series.
		path := c.Route().Path
		if m.enabled {
			prometheus.RequestsTotal.WithLabelValues(path, c.Method(), strconv.Itoa(status)).Inc()
			prometheus.RequestLatency.WithLabelValues(path).Observe(float64(elapsed.Milliseconds()))
		}

		m.logger.WithFields(logrus.Fields{
			"request_id": c.Locals(common.RequestIDContextKey),
			"method":     c.Method(),
			"path":       path,
			"status":     status,
			"latency_ms": elapsed.Milliseconds(),
		}).Debug("request completed")
		return err
	}
}
