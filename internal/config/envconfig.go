package config

import (
	"os"
	"strconv"
)

type envConfig struct {
	LogLevel               string
	ServerPort             int
	Version                string
	LightspeedKey          string
	LightspeedSecret       string
	AccountsFileLocation   string
	AuthSuccessRedirectURL string
	AuthErrorRedirectURL   string
	HTTPTimeoutSeconds     int
	HTTPMaxRetries         int
}

func NewEnvironmentConfig() *envConfig {
	return &envConfig{
		LogLevel:               getEnvString("LOG_LEVEL", "INFO"),
		ServerPort:             getEnvInt("SERVER_PORT", 0),
		Version:                getEnvString("VERSION", ""),
		LightspeedKey:          getEnvString("LIGHTSPEED_CLIENT_ID", ""),
		LightspeedSecret:       getEnvString("LIGHTSPEED_SECRET", ""),
		AccountsFileLocation:   getEnvString("ACCOUNTS_FILE_LOCATION", "accounts.json"),
		AuthSuccessRedirectURL: getEnvString("AUTH_SUCCESS_REDIRECT_URL", ""),
		AuthErrorRedirectURL:   getEnvString("AUTH_ERROR_REDIRECT_URL", ""),
		HTTPTimeoutSeconds:     getEnvInt("HTTP_TIMEOUT_SECONDS", 10),
		HTTPMaxRetries:         getEnvInt("HTTP_MAX_RETRIES", 2),
	}
}

// helper function to read an environment or return a default value
func getEnvString(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

// helper function to read an environment or return a default value
func getEnvInt(key string, defaultVal int) int {
	val, err := strconv.Atoi(getEnvString(key, strconv.Itoa(defaultVal)))
	if err == nil {
		return val
	}

	return defaultVal
}
