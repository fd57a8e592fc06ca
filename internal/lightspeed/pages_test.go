package lightspeed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildflower-dev/timecard-service/internal/customhttp"
)

type fakeCreds struct {
	accountID    string
	accessToken  string
	refreshToken string
	saves        int
	saveErr      error
}

func (f *fakeCreds) AccountID() string { return f.accountID }

func (f *fakeCreds) AccessToken() string { return f.accessToken }

func (f *fakeCreds) RefreshToken() string { return f.refreshToken }

func (f *fakeCreds) SetAccessToken(token string) { f.accessToken = token }

func (f *fakeCreds) Save() error {
	f.saves++
	return f.saveErr
}

func newTestClient(resourceURL, tokenURL string) *client {
	command := customhttp.New().Build()
	tokens := NewTokenClient("test-id", "test-secret", command)
	tokens.TokenURL = tokenURL
	c := NewClient(tokens, command)
	c.URL = resourceURL
	return c
}

func TestPagination(t *testing.T) {
	var requestedOffsets []string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/API/Account/42/EmployeeHours.json", r.URL.Path)
		offset := r.URL.Query().Get("offset")
		requestedOffsets = append(requestedOffsets, offset)
		fmt.Fprintf(w, `{"@attributes":{"count":"250","offset":"%s","limit":"100"},"EmployeeHours":[{"employeeHoursID":"%s"}]}`, offset, offset)
	}))
	defer s.Close()

	creds := &fakeCreds{accountID: "42", accessToken: "tok"}
	pages := newTestClient(s.URL, "").EmployeeHours(context.Background(), creds, nil)

	var got []*Page
	for pages.Next() {
		got = append(got, pages.Page())
	}
	require.NoError(t, pages.Err())

	assert.Equal(t, []string{"0", "100", "200"}, requestedOffsets)
	require.Len(t, got, 3)
	assert.Equal(t, 250, got[0].Attributes.Count)
	assert.Equal(t, 200, got[2].Attributes.Offset)

	// a fourth pull stays terminated and issues no request
	assert.False(t, pages.Next())
	assert.Len(t, requestedOffsets, 3)
}

func TestPaginationSinglePageEndpoint(t *testing.T) {
	var calls int
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// no offset key: the endpoint is not paginated, whatever count says
		fmt.Fprint(w, `{"@attributes":{"count":"900"},"Shop":[{"shopID":"1","name":"Ketchum"}]}`)
	}))
	defer s.Close()

	creds := &fakeCreds{accountID: "42", accessToken: "tok"}
	pages := newTestClient(s.URL, "").Shops(context.Background(), creds, nil)

	assert.True(t, pages.Next())
	assert.False(t, pages.Next())
	require.NoError(t, pages.Err())
	assert.Equal(t, 1, calls)
}

func TestPaginationIsLazy(t *testing.T) {
	var calls int
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"@attributes":{"count":"500","offset":"%s","limit":"100"},"EmployeeHours":[]}`, r.URL.Query().Get("offset"))
	}))
	defer s.Close()

	creds := &fakeCreds{accountID: "42", accessToken: "tok"}
	pages := newTestClient(s.URL, "").EmployeeHours(context.Background(), creds, nil)

	// consume two of five pages, then walk away
	require.True(t, pages.Next())
	require.True(t, pages.Next())
	assert.Equal(t, 2, calls)
}

func TestAuthFailureRecovery(t *testing.T) {
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "stale-refresh", r.PostForm.Get("refresh_token"))
		w.Write([]byte(`{"access_token":"fresh"}`))
	}))
	defer tokens.Close()

	var resourceCalls int
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resourceCalls++
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"@attributes":{"count":"1","offset":"0","limit":"100"},"EmployeeHours":[{"employeeHoursID":"7"}]}`)
	}))
	defer s.Close()

	creds := &fakeCreds{accountID: "42", accessToken: "expired", refreshToken: "stale-refresh"}
	pages := newTestClient(s.URL, tokens.URL).EmployeeHours(context.Background(), creds, nil)

	require.True(t, pages.Next())
	require.NoError(t, pages.Err())

	assert.Equal(t, 2, resourceCalls)
	assert.Equal(t, "fresh", creds.accessToken)
	assert.Equal(t, 1, creds.saves, "holder must be persisted before the retried request")
}

func TestDoubleAuthFailureIsFatal(t *testing.T) {
	var refreshes int
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshes++
		w.Write([]byte(`{"access_token":"still-bad"}`))
	}))
	defer tokens.Close()

	var resourceCalls int
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resourceCalls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer s.Close()

	creds := &fakeCreds{accountID: "42", accessToken: "expired", refreshToken: "revoked"}
	pages := newTestClient(s.URL, tokens.URL).EmployeeHours(context.Background(), creds, nil)

	assert.False(t, pages.Next())
	assert.ErrorIs(t, pages.Err(), ErrInvalidToken)
	assert.Equal(t, 2, resourceCalls, "exactly one retry after the refresh")
	assert.Equal(t, 1, refreshes)
}

func TestSaveFailureIsNotMasked(t *testing.T) {
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"fresh"}`))
	}))
	defer tokens.Close()

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer s.Close()

	saveErr := errors.New("disk full")
	creds := &fakeCreds{accountID: "42", accessToken: "expired", refreshToken: "R", saveErr: saveErr}
	pages := newTestClient(s.URL, tokens.URL).EmployeeHours(context.Background(), creds, nil)

	assert.False(t, pages.Next())
	assert.ErrorIs(t, pages.Err(), saveErr)
}

func TestRunawayPaginationGuard(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// a malformed listing that never signals termination
		fmt.Fprint(w, `{"@attributes":{"count":"9999999","offset":"0","limit":"100"},"EmployeeHours":[]}`)
	}))
	defer s.Close()

	creds := &fakeCreds{accountID: "42", accessToken: "tok"}
	pages := newTestClient(s.URL, "").EmployeeHours(context.Background(), creds, nil)

	var count int
	for pages.Next() {
		count++
	}
	assert.Equal(t, maxPages, count)
	require.Error(t, pages.Err())
	assert.Contains(t, pages.Err().Error(), "without terminating")
}
