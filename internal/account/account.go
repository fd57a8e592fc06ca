package account

import (
	"time"

	"github.com/wildflower-dev/timecard-service/internal/lightspeed"
)

// Account is one store's connection to Lightspeed: the token pair plus the
// onboarding settings the timecard views depend on. AccessToken always holds
// the most recently obtained token; once refreshed the old one is discarded.
type Account struct {
	AccountID    string `json:"account_id"`
	Name         string `json:"name"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// Timezone is an IANA identifier used to localize date-range boundaries.
	Timezone string `json:"timezone"`

	PayPeriodType          string `json:"pay_period_type"`
	PayPeriodReferenceDate string `json:"pay_period_reference_date"`
	IsOnboarded            bool   `json:"is_onboarded"`
}

// Location resolves the account's timezone, defaulting to UTC when the
// account has not been onboarded yet.
func (a *Account) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Session binds an Account to its Store so the Lightspeed client can refresh
// tokens and persist them before retrying a call.
type Session struct {
	Account *Account
	Store   Store
}

var _ lightspeed.Credentials = (*Session)(nil)

func NewSession(acct *Account, store Store) *Session {
	return &Session{Account: acct, Store: store}
}

func (s *Session) AccountID() string { return s.Account.AccountID }

func (s *Session) AccessToken() string { return s.Account.AccessToken }

func (s *Session) RefreshToken() string { return s.Account.RefreshToken }

func (s *Session) SetAccessToken(token string) { s.Account.AccessToken = token }

func (s *Session) Save() error { return s.Store.Put(s.Account) }
