package lightspeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/wildflower-dev/timecard-service/internal/customhttp"
)

const defaultTokenURL = "https://cloud.lightspeedapp.com/oauth/access_token.php"

// TokenClient exchanges authorization codes and refresh tokens at the
// Lightspeed token endpoint. It never retries; a rejected grant means the
// user has to authorize again and the caller decides how to prompt for that.
type TokenClient struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	HTTPCommand  customhttp.HTTPCommand
}

// TokenRefresher is the slice of TokenClient the query engine needs.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// NewTokenClient builds a TokenClient against the production token endpoint.
func NewTokenClient(clientID, clientSecret string, command customhttp.HTTPCommand) *TokenClient {
	return &TokenClient{
		TokenURL:     defaultTokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTPCommand:  command,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

// Exchange trades the temporary authorization code for an access/refresh
// token pair. HTTP 400 means the code expired or was already used.
func (t *TokenClient) Exchange(ctx context.Context, code string) (string, string, error) {
	data := url.Values{}
	data.Set("client_id", t.ClientID)
	data.Set("client_secret", t.ClientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")

	resp, err := t.post(ctx, data)
	if err != nil {
		return "", "", err
	}
	return resp.AccessToken, resp.RefreshToken, nil
}

// Refresh mints a new access token from the long-lived refresh token.
// HTTP 400 means the refresh token was revoked.
func (t *TokenClient) Refresh(ctx context.Context, refreshToken string) (string, error) {
	data := url.Values{}
	data.Set("refresh_token", refreshToken)
	data.Set("client_id", t.ClientID)
	data.Set("client_secret", t.ClientSecret)
	data.Set("grant_type", "refresh_token")

	resp, err := t.post(ctx, data)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (t *TokenClient) post(ctx context.Context, data url.Values) (*tokenResponse, error) {
	contextLogger := log.WithContext(ctx)

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, t.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpRequest.Header.Set("Accept", "application/json")

	res, err := t.HTTPCommand.Do(httpRequest)
	if err != nil {
		contextLogger.WithError(err).Error("could not reach the token endpoint")
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusBadRequest {
		contextLogger.Infof("token endpoint rejected the %s grant", data.Get("grant_type"))
		return nil, ErrInvalidGrant
	}
	if res.StatusCode != http.StatusOK {
		contextLogger.Infof("status returned from the token endpoint is %s", res.Status)
		return nil, fmt.Errorf("token endpoint returned status: %s", res.Status)
	}

	var resp tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		contextLogger.WithError(err).Error("could not parse the token endpoint response")
		return nil, err
	}
	return &resp, nil
}
