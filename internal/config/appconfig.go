package config

import (
	"net/http"
	"time"

	"github.com/wildflower-dev/timecard-service/internal/account"
	"github.com/wildflower-dev/timecard-service/internal/customhttp"
	"github.com/wildflower-dev/timecard-service/internal/lightspeed"
)

type ApplicationConfig struct {
	envValues    *envConfig
	lsClient     lightspeed.ClientInterface
	tokenClient  *lightspeed.TokenClient
	accountStore account.Store
}

//Version returns application version
func (cfg *ApplicationConfig) Version() string {
	return cfg.envValues.Version
}

//ServerPort returns the port no to listen for requests
func (cfg *ApplicationConfig) ServerPort() int {
	return cfg.envValues.ServerPort
}

//LightspeedClient returns the resource API client
func (cfg *ApplicationConfig) LightspeedClient() lightspeed.ClientInterface {
	return cfg.lsClient
}

//TokenClient returns the OAuth token client
func (cfg *ApplicationConfig) TokenClient() *lightspeed.TokenClient {
	return cfg.tokenClient
}

//AccountStore returns the connected-accounts store
func (cfg *ApplicationConfig) AccountStore() account.Store {
	return cfg.accountStore
}

//LightspeedKey returns the Lightspeed client id
func (cfg *ApplicationConfig) LightspeedKey() string {
	return cfg.envValues.LightspeedKey
}

//LightspeedSecret returns the Lightspeed client secret
func (cfg *ApplicationConfig) LightspeedSecret() string {
	return cfg.envValues.LightspeedSecret
}

//LogLevel returns the configured logging level
func (cfg *ApplicationConfig) LogLevel() string {
	return cfg.envValues.LogLevel
}

//NewApplicationConfig loads config values from environment and initialises config
func NewApplicationConfig() *ApplicationConfig {
	envValues := NewEnvironmentConfig()
	httpCommand := NewHTTPCommand(envValues)
	tokenClient := lightspeed.NewTokenClient(envValues.LightspeedKey, envValues.LightspeedSecret, httpCommand)
	lsClient := lightspeed.NewClient(tokenClient, httpCommand)
	accountStore := account.NewFileStore(envValues.AccountsFileLocation)
	return &ApplicationConfig{
		envValues:    envValues,
		lsClient:     lsClient,
		tokenClient:  tokenClient,
		accountStore: accountStore,
	}
}

// NewHTTPCommand returns the HTTP client with a bounded timeout and retry
// policy for transient failures
func NewHTTPCommand(envValues *envConfig) customhttp.HTTPCommand {
	httpCommand := customhttp.New(
		customhttp.WithHTTPClient(&http.Client{Timeout: time.Duration(envValues.HTTPTimeoutSeconds) * time.Second}),
		customhttp.WithRetry(envValues.HTTPMaxRetries),
	).Build()

	return httpCommand
}
