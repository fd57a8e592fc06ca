package auth

import (
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wildflower-dev/timecard-service/internal/config"
)

const stateCookie = "oauth_state"

// ConnectHandler sends the user into the Lightspeed authorization screen,
// pinning a state nonce in a cookie for the redirect leg to verify.
func ConnectHandler(handler OAuthHandler) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		state := uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookie,
			Value:    state,
			Path:     "/",
			HttpOnly: true,
			MaxAge:   600,
		})
		http.Redirect(w, r, handler.ConnectURL(state), http.StatusSeeOther)
	}
}

// OauthRedirectHandler takes the code handed back by the Lightspeed auth
// servers, exchanges it for tokens and saves the connected account. Any
// failure sends the user to the re-authorization page; a stale code cannot
// be retried.
func OauthRedirectHandler(handler OAuthHandler) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		contextLogger := log.WithContext(ctx)
		envValues := config.NewEnvironmentConfig()

		if err := r.ParseForm(); err != nil {
			contextLogger.WithError(err).Error("could not parse incoming query")
			http.Redirect(w, r, envValues.AuthErrorRedirectURL, http.StatusSeeOther)
			return
		}

		cookie, err := r.Cookie(stateCookie)
		if err != nil || cookie.Value == "" || cookie.Value != r.FormValue("state") {
			contextLogger.Error("oauth state mismatch on redirect")
			http.Redirect(w, r, envValues.AuthErrorRedirectURL, http.StatusSeeOther)
			return
		}

		code := r.FormValue("code")
		if code == "" {
			contextLogger.Error("no code provided on oauth redirect")
			http.Redirect(w, r, envValues.AuthErrorRedirectURL, http.StatusSeeOther)
			return
		}

		acct, err := handler.Authorize(ctx, code)
		if err != nil {
			contextLogger.WithError(err).Error("failed to connect the Lightspeed account")
			http.Redirect(w, r, envValues.AuthErrorRedirectURL, http.StatusSeeOther)
			return
		}

		http.Redirect(w, r, envValues.AuthSuccessRedirectURL+"?account_id="+acct.AccountID, http.StatusSeeOther)
	}
}
