package server

import (
	"errors"
	"fmt"

	"github.com/NeuralTrust/TextModerator/pkg/config"
	"github.com/NeuralTrust/TextModerator/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type (
	ModeratorServerDI struct {
		Config  *config.Config
		Logger  *logrus.Logger
		Routers []router.ServerRouter
	}
	ModeratorServer struct {
		*BaseServer
	}
)

// NewModeratorServer builds the fiber app with every route mounted. The app is
// usable without Run, which is how the Lambda adapter serves it.
func NewModeratorServer(di ModeratorServerDI) *ModeratorServer {
	s := &ModeratorServer{
		BaseServer: NewBaseServer(di.Config, di.Logger),
	}
	s.WithRouters(di.Routers...)
	return s
}

func (s *ModeratorServer) App() *fiber.App {
	return s.Router
}

func (s *ModeratorServer) Run() error {
	s.setupMetricsEndpoint()

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("Starting moderator server")
	return s.Router.Listen(addr)
}

func (s *ModeratorServer) Shutdown() error {
	return errors.Join(s.Router.Shutdown(), s.shutdownMetrics())
}
