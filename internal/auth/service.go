package auth

import (
	"context"
	"net/url"

	log "github.com/sirupsen/logrus"

	"github.com/wildflower-dev/timecard-service/internal/account"
	"github.com/wildflower-dev/timecard-service/internal/lightspeed"
)

const defaultAuthorizeURL = "https://cloud.lightspeedapp.com/oauth/authorize.php"

// TokenExchanger is the slice of the token client this flow needs.
type TokenExchanger interface {
	Exchange(ctx context.Context, code string) (accessToken string, refreshToken string, err error)
}

type Service struct {
	tokens       TokenExchanger
	client       lightspeed.ClientInterface
	store        account.Store
	clientID     string
	authorizeURL string
}

func NewAuthService(tokens TokenExchanger, client lightspeed.ClientInterface, store account.Store, clientID string) *Service {
	return &Service{
		tokens:       tokens,
		client:       client,
		store:        store,
		clientID:     clientID,
		authorizeURL: defaultAuthorizeURL,
	}
}

// ConnectURL builds the Lightspeed authorization URL the user is sent to.
func (service Service) ConnectURL(state string) string {
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", service.clientID)
	query.Set("scope", "employee:all")
	query.Set("state", state)
	return service.authorizeURL + "?" + query.Encode()
}

// Authorize exchanges the temporary code for a token pair, looks up which
// account the tokens belong to and persists the connected account. A
// rejected code surfaces as lightspeed.ErrInvalidGrant; the user has to go
// back through ConnectURL.
func (service Service) Authorize(ctx context.Context, code string) (*account.Account, error) {
	ctxLogger := log.WithContext(ctx)

	accessToken, refreshToken, err := service.tokens.Exchange(ctx, code)
	if err != nil {
		ctxLogger.WithError(err).Error("authorization code exchange failed")
		return nil, err
	}

	boot := &bootstrapCredentials{accessToken: accessToken, refreshToken: refreshToken}
	info, err := service.client.AccountInfo(ctx, boot)
	if err != nil {
		ctxLogger.WithError(err).Error("could not fetch the account record for the new tokens")
		return nil, err
	}

	acct := &account.Account{
		AccountID:    info.AccountID,
		Name:         info.Name,
		AccessToken:  boot.accessToken,
		RefreshToken: refreshToken,
	}
	if err := service.store.Put(acct); err != nil {
		ctxLogger.WithError(err).Error("could not persist the connected account")
		return nil, err
	}

	ctxLogger.Infof("connected Lightspeed account %s (%s)", acct.AccountID, acct.Name)
	return acct, nil
}

// bootstrapCredentials is the throwaway holder used between the token
// exchange and the first persisted Account; no account id exists yet and
// there is nothing to save.
type bootstrapCredentials struct {
	accessToken  string
	refreshToken string
}

func (b *bootstrapCredentials) AccountID() string { return "" }

func (b *bootstrapCredentials) AccessToken() string { return b.accessToken }

func (b *bootstrapCredentials) RefreshToken() string { return b.refreshToken }

func (b *bootstrapCredentials) SetAccessToken(token string) { b.accessToken = token }

func (b *bootstrapCredentials) Save() error { return nil }
