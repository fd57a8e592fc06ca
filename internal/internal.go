package internal

import (
	"fmt"
	"net/http"

	"github.com/wildflower-dev/timecard-service/internal/account"
	"github.com/wildflower-dev/timecard-service/internal/auth"
	"github.com/wildflower-dev/timecard-service/internal/config"
	"github.com/wildflower-dev/timecard-service/internal/lightspeed"
	"github.com/wildflower-dev/timecard-service/internal/middlewares"
)

//StatusRoute health check route
func StatusRoute() (route config.Route) {
	route = config.Route{
		Path:    "/health",
		Method:  http.MethodGet,
		Handler: middlewares.RuntimeHealthCheck(),
	}
	return route
}

type ServerConfig interface {
	Version() string
	LightspeedClient() lightspeed.ClientInterface
	TokenClient() *lightspeed.TokenClient
	AccountStore() account.Store
	LightspeedKey() string
}

func SetupServer(cfg ServerConfig) *config.Server {
	basePath := fmt.Sprintf("/%v", cfg.Version())
	service := NewService(cfg.LightspeedClient())
	authService := auth.NewAuthService(cfg.TokenClient(), cfg.LightspeedClient(), cfg.AccountStore(), cfg.LightspeedKey())

	routes := Routes(service, cfg.AccountStore())
	routes = append(routes, auth.Routes(authService)...)

	server := config.NewServer().
		WithRoutes(
			"", StatusRoute(),
		).
		WithRoutes(
			basePath,
			routes...,
		)
	return server
}
