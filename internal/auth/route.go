package auth

import (
	"context"
	"net/http"

	"github.com/wildflower-dev/timecard-service/internal/account"
	"github.com/wildflower-dev/timecard-service/internal/config"
)

type OAuthHandler interface {
	ConnectURL(state string) string
	Authorize(ctx context.Context, code string) (*account.Account, error)
}

func Routes(handler OAuthHandler) []config.Route {
	return []config.Route{
		{
			Path:    "/connect",
			Method:  http.MethodGet,
			Handler: ConnectHandler(handler),
		},
		{
			Path:    "/oauth/redirect",
			Method:  http.MethodGet,
			Handler: OauthRedirectHandler(handler),
		},
	}
}
