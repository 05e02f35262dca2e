package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/sima-oba/auth-service/internal/core/ports"
)

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	Environment    string
}

type ServerDeps struct {
	AccountService      ports.AccountService
	RegistrationService ports.RegistrationService
	OwnerPublisher      ports.OwnerPublisher
	HealthCheckers      []ports.HealthChecker
}

type Server struct {
	echo            *echo.Echo
	config          *ServerConfig
	logger          *logrus.Logger
	accountSvc      ports.AccountService
	registrationSvc ports.RegistrationService
	ownerPublisher  ports.OwnerPublisher
	healthCheckers  []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	server := &Server{
		echo:            e,
		config:          serverConfig,
		logger:          logger,
		accountSvc:      deps.AccountService,
		registrationSvc: deps.RegistrationService,
		ownerPublisher:  deps.OwnerPublisher,
		healthCheckers:  deps.HealthCheckers,
	}

	e.HTTPErrorHandler = server.handleError

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
