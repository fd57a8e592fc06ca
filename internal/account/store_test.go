package account

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "accounts.json"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	acct := &Account{
		AccountID:    "12345",
		Name:         "The Wildflower",
		AccessToken:  "A",
		RefreshToken: "R",
		Timezone:     "America/Boise",
	}
	require.NoError(t, store.Put(acct))

	got, err := store.Get("12345")
	require.NoError(t, err)
	assert.Equal(t, acct, got)
}

func TestFileStoreUnknownAccount(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("nope")
	require.Error(t, err)
	assert.IsType(t, ErrNotFound{}, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestFileStoreUpdateKeepsOtherAccounts(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(&Account{AccountID: "1", AccessToken: "A1"}))
	require.NoError(t, store.Put(&Account{AccountID: "2", AccessToken: "A2"}))
	require.NoError(t, store.Put(&Account{AccountID: "1", AccessToken: "A1-refreshed"}))

	first, err := store.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "A1-refreshed", first.AccessToken)

	second, err := store.Get("2")
	require.NoError(t, err)
	assert.Equal(t, "A2", second.AccessToken)
}

func TestSessionPersistsRefreshedToken(t *testing.T) {
	store := newTestStore(t)

	acct := &Account{AccountID: "12345", AccessToken: "old", RefreshToken: "R"}
	require.NoError(t, store.Put(acct))

	session := NewSession(acct, store)
	assert.Equal(t, "12345", session.AccountID())
	assert.Equal(t, "old", session.AccessToken())
	assert.Equal(t, "R", session.RefreshToken())

	session.SetAccessToken("new")
	require.NoError(t, session.Save())

	persisted, err := store.Get("12345")
	require.NoError(t, err)
	assert.Equal(t, "new", persisted.AccessToken)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, "UTC", (&Account{}).Location().String())
	assert.Equal(t, "UTC", (&Account{Timezone: "Mars/Olympus"}).Location().String())
	assert.Equal(t, "America/Boise", (&Account{Timezone: "America/Boise"}).Location().String())
}
