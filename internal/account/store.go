package account

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"sync"
)

const filePerm = 0600

// Store is the opaque persistence collaborator for accounts. Get and Put are
// the whole contract; the rest of the system never sees storage mechanics.
type Store interface {
	Get(accountID string) (*Account, error)
	Put(acct *Account) error
}

// ErrNotFound reports a lookup for an account that was never connected.
type ErrNotFound struct {
	AccountID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("account %s is not connected", e.AccountID)
}

// FileStore keeps accounts as a JSON document on disk, which is plenty for a
// handful of connected stores. All mutations rewrite the whole file.
type FileStore struct {
	location string

	mu sync.Mutex
}

func NewFileStore(location string) *FileStore {
	return &FileStore{location: location}
}

func (f *FileStore) Get(accountID string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	accounts, err := f.load()
	if err != nil {
		return nil, err
	}

	acct, ok := accounts[accountID]
	if !ok {
		return nil, ErrNotFound{AccountID: accountID}
	}
	return acct, nil
}

func (f *FileStore) Put(acct *Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	accounts, err := f.load()
	if err != nil {
		return err
	}
	accounts[acct.AccountID] = acct

	file, err := json.MarshalIndent(accounts, "", " ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(f.location, file, filePerm)
}

func (f *FileStore) load() (map[string]*Account, error) {
	accounts := make(map[string]*Account)

	file, err := ioutil.ReadFile(f.location)
	if os.IsNotExist(err) {
		return accounts, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(file, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}
