package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildflower-dev/timecard-service/internal/account"
	"github.com/wildflower-dev/timecard-service/internal/customhttp"
	"github.com/wildflower-dev/timecard-service/internal/lightspeed"
)

func newTestAuthService(t *testing.T, serverURL string) (*Service, account.Store) {
	t.Helper()
	command := customhttp.New().Build()
	tokens := lightspeed.NewTokenClient("client-id", "client-secret", command)
	tokens.TokenURL = serverURL + "/oauth/access_token.php"
	client := lightspeed.NewClient(tokens, command)
	client.URL = serverURL

	store := account.NewFileStore(filepath.Join(t.TempDir(), "accounts.json"))
	return NewAuthService(tokens, client, store, "client-id"), store
}

func TestConnectURL(t *testing.T) {
	service, _ := newTestAuthService(t, "http://unused")

	connectURL, err := url.Parse(service.ConnectURL("nonce-123"))
	require.NoError(t, err)

	assert.Equal(t, "/oauth/authorize.php", connectURL.Path)
	query := connectURL.Query()
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "employee:all", query.Get("scope"))
	assert.Equal(t, "nonce-123", query.Get("state"))
}

func TestAuthorize(t *testing.T) {
	router := http.NewServeMux()
	router.HandleFunc("/oauth/access_token.php", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "temp-code", r.PostForm.Get("code"))
		fmt.Fprint(w, `{"access_token":"access-1","refresh_token":"refresh-1"}`)
	})
	router.HandleFunc("/API/Account.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"@attributes":{"count":"1"},"Account":{"accountID":"12345","name":"The Wildflower"}}`)
	})
	s := httptest.NewServer(router)
	defer s.Close()

	service, store := newTestAuthService(t, s.URL)

	acct, err := service.Authorize(context.Background(), "temp-code")
	require.NoError(t, err)
	assert.Equal(t, "12345", acct.AccountID)
	assert.Equal(t, "The Wildflower", acct.Name)
	assert.Equal(t, "access-1", acct.AccessToken)
	assert.Equal(t, "refresh-1", acct.RefreshToken)

	stored, err := store.Get("12345")
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", stored.RefreshToken)
}

func TestAuthorizeRejectedCode(t *testing.T) {
	router := http.NewServeMux()
	router.HandleFunc("/oauth/access_token.php", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	})
	s := httptest.NewServer(router)
	defer s.Close()

	service, store := newTestAuthService(t, s.URL)

	_, err := service.Authorize(context.Background(), "stale-code")
	assert.ErrorIs(t, err, lightspeed.ErrInvalidGrant)

	_, err = store.Get("12345")
	assert.Error(t, err)
}
