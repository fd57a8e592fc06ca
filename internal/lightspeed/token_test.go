package lightspeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildflower-dev/timecard-service/internal/customhttp"
)

func newTestTokenClient(serverURL string) *TokenClient {
	tc := NewTokenClient("test-id", "test-secret", customhttp.New().Build())
	tc.TokenURL = serverURL
	return tc
}

func TestExchange(t *testing.T) {
	var gotForm url.Values
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Write([]byte(`{"access_token":"A","refresh_token":"R","expires_in":1800,"token_type":"bearer","scope":"employee:all"}`))
	}))
	defer s.Close()

	access, refresh, err := newTestTokenClient(s.URL).Exchange(context.Background(), "tempcode")
	require.NoError(t, err)
	assert.Equal(t, "A", access)
	assert.Equal(t, "R", refresh)

	expected := url.Values{
		"client_id":     {"test-id"},
		"client_secret": {"test-secret"},
		"code":          {"tempcode"},
		"grant_type":    {"authorization_code"},
	}
	assert.Equal(t, expected, gotForm)
}

func TestExchangeInvalidGrant(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer s.Close()

	_, _, err := newTestTokenClient(s.URL).Exchange(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrInvalidGrant)
}

func TestRefreshPayload(t *testing.T) {
	var gotForm url.Values
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Write([]byte(`{"access_token":"fresh","expires_in":1800,"token_type":"bearer"}`))
	}))
	defer s.Close()

	access, err := newTestTokenClient(s.URL).Refresh(context.Background(), "R")
	require.NoError(t, err)
	assert.Equal(t, "fresh", access)

	expected := url.Values{
		"refresh_token": {"R"},
		"client_id":     {"test-id"},
		"client_secret": {"test-secret"},
		"grant_type":    {"refresh_token"},
	}
	assert.Equal(t, expected, gotForm)
}

func TestRefreshRevoked(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer s.Close()

	_, err := newTestTokenClient(s.URL).Refresh(context.Background(), "revoked")
	assert.ErrorIs(t, err, ErrInvalidGrant)
}

func TestTokenEndpointServerError(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer s.Close()

	_, err := newTestTokenClient(s.URL).Refresh(context.Background(), "R")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidGrant)
}
