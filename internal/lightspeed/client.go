package lightspeed

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/wildflower-dev/timecard-service/internal/customhttp"
)

const defaultBaseURL = "https://api.lightspeedapp.com"

type ClientInterface interface {
	AccountInfo(ctx context.Context, creds Credentials) (*AccountInfo, error)
	Employees(ctx context.Context, creds Credentials, params Params) *Pages
	Shops(ctx context.Context, creds Credentials, params Params) *Pages
	EmployeeHours(ctx context.Context, creds Credentials, params Params) *Pages
}

// NewClient builds the resource API client. The token refresher is only used
// to recover from a rejected access token mid-fetch.
func NewClient(tokens TokenRefresher, command customhttp.HTTPCommand) *client {
	return &client{
		URL:          defaultBaseURL,
		Tokens:       tokens,
		HTTPCommand:  command,
		refreshLocks: make(map[string]*sync.Mutex),
	}
}

type client struct {
	URL         string
	Tokens      TokenRefresher
	HTTPCommand customhttp.HTTPCommand

	mu           sync.Mutex
	refreshLocks map[string]*sync.Mutex
}

// AccountInfo fetches the basic account record for the token's account. This
// is the only resource call that works before an account id is known.
func (c *client) AccountInfo(ctx context.Context, creds Credentials) (*AccountInfo, error) {
	page, err := c.callWithRefresh(ctx, "/API/Account.json", creds, url.Values{}, "Account")
	if err != nil {
		return nil, err
	}

	var accounts []AccountInfo
	if err := page.Records(&accounts); err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("account endpoint returned no account record")
	}
	return &accounts[0], nil
}

// Employees starts a paginated fetch of the Employee resource.
func (c *client) Employees(ctx context.Context, creds Credentials, params Params) *Pages {
	return c.fetch(ctx, creds, params, "Employee")
}

// Shops starts a fetch of the Shop resource.
func (c *client) Shops(ctx context.Context, creds Credentials, params Params) *Pages {
	return c.fetch(ctx, creds, params, "Shop")
}

// EmployeeHours starts a paginated fetch of the punch-clock records.
func (c *client) EmployeeHours(ctx context.Context, creds Credentials, params Params) *Pages {
	return c.fetch(ctx, creds, params, "EmployeeHours")
}

func (c *client) fetch(ctx context.Context, creds Credentials, params Params, resource string) *Pages {
	return &Pages{
		ctx:      ctx,
		client:   c,
		creds:    creds,
		params:   params,
		resource: resource,
	}
}

// callWithRefresh issues one authenticated call and, on a rejected token,
// refreshes the credentials and retries the identical call exactly once.
// A second consecutive rejection is fatal for this fetch; retrying further
// would loop forever on a permanently revoked grant.
func (c *client) callWithRefresh(ctx context.Context, path string, creds Credentials, values url.Values, resource string) (*Page, error) {
	contextLogger := log.WithContext(ctx)

	stale := creds.AccessToken()
	page, err := c.call(ctx, path, creds, values, resource)
	if !errors.Is(err, ErrInvalidToken) {
		return page, err
	}

	contextLogger.Info("access token rejected, refreshing credentials")
	if err := c.refresh(ctx, creds, stale); err != nil {
		return nil, err
	}

	return c.call(ctx, path, creds, values, resource)
}

// call is the stateless request layer: one GET against a resource endpoint.
// The API answers 400 on some endpoints and 401 on others when the bearer
// token is bad; both classify as ErrInvalidToken.
func (c *client) call(ctx context.Context, path string, creds Credentials, values url.Values, resource string) (*Page, error) {
	contextLogger := log.WithContext(ctx)

	endpoint := c.URL + path
	if encoded := values.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Set("Authorization", "Bearer "+creds.AccessToken())
	httpRequest.Header.Set("Accept", "application/json")

	resp, err := c.HTTPCommand.Do(httpRequest)
	if err != nil {
		contextLogger.WithError(err).Errorf("there was an error calling the %s endpoint", resource)
		return nil, err
	}

	defer func() {
		if err = resp.Body.Close(); err != nil {
			contextLogger.WithError(err).Error("error when closing response body")
		}
	}()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		contextLogger.Infof("status returned from the %s endpoint is %s", resource, resp.Status)
		return nil, fmt.Errorf("%s endpoint returned status: %s", resource, resp.Status)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		contextLogger.WithError(err).Error("error reading the resource response body")
		return nil, err
	}

	page, err := decodePage(body, resource)
	if err != nil {
		contextLogger.WithError(err).Errorf("there was an error un marshalling the %s response", resource)
		return nil, err
	}
	return page, nil
}

// refresh serializes token refreshes per account so two in-flight requests
// cannot double-refresh and clobber each other's newer token. The stale token
// is compared under the lock; if another request already refreshed, this one
// just reuses the new token.
func (c *client) refresh(ctx context.Context, creds Credentials, stale string) error {
	lock := c.refreshLock(creds.AccountID())
	lock.Lock()
	defer lock.Unlock()

	if creds.AccessToken() != stale {
		return nil
	}

	token, err := c.Tokens.Refresh(ctx, creds.RefreshToken())
	if err != nil {
		return err
	}
	creds.SetAccessToken(token)

	// The holder must be persisted before the retried request; a failed save
	// is not masked.
	return creds.Save()
}

func (c *client) refreshLock(accountID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.refreshLocks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		c.refreshLocks[accountID] = lock
	}
	return lock
}
