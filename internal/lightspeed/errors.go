package lightspeed

import "errors"

var (
	// ErrInvalidGrant means the auth code or refresh token was rejected by the
	// token endpoint (HTTP 400). The only way out is a fresh user authorization.
	ErrInvalidGrant = errors.New("lightspeed: invalid grant")

	// ErrInvalidToken means a resource call rejected the access token. The API
	// answers 400 on some endpoints and 401 on others for the same condition,
	// so both map here.
	ErrInvalidToken = errors.New("lightspeed: invalid access token")
)
