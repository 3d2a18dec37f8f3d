package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the map marker service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port of the HTTP API and monitoring server.
// - Provider: Geocoding provider selection and credentials.
// - NetworkEnabled: Whether geocoding may reach the network at all.
// - SanitizeMaxLength: Maximum length of sanitized text fields, in characters.
type Config struct {
	Env               string         `yaml:"env"`                 // Env is the current environment: local, development, production.
	Port              int            `yaml:"server.port"`         // Port is the API and monitoring server port.
	Provider          ProviderConfig `yaml:"provider"`            // Provider holds the geocoding provider configuration.
	NetworkEnabled    bool           `yaml:"network.enabled"`     // NetworkEnabled gates every outbound geocoding request.
	SanitizeMaxLength int            `yaml:"sanitize.max_length"` // SanitizeMaxLength bounds text fields.
}

// ProviderConfig holds the settings of the geocoding provider.
type ProviderConfig struct {
	Type    string        `yaml:"type"`    // Type is one of google, google-sdk, nominatim.
	APIKey  string        `yaml:"api_key"` // APIKey is required by google-sdk, optional otherwise.
	BaseURL string        `yaml:"url"`     // BaseURL overrides the provider endpoint.
	Timeout time.Duration `yaml:"timeout"` // Timeout bounds a single provider request.
}

// MustLoad loads the configuration from the environment (and an optional .env file)
// and returns a Config struct. It panics on values that cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	port, err := strconv.Atoi(setDeafultEnv("ATLAS_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for api server from configuration")
	}

	timeout, err := time.ParseDuration(setDeafultEnv("ATLAS_PROVIDER_TIMEOUT", "10s"))
	if err != nil {
		panic("failed to parse provider timeout from configuration")
	}

	networkEnabled, err := strconv.ParseBool(setDeafultEnv("ATLAS_NETWORK_ENABLED", "true"))
	if err != nil {
		panic("failed to parse network flag from configuration, must be a boolean")
	}

	maxLength, err := strconv.Atoi(setDeafultEnv("ATLAS_SANITIZE_MAX_LENGTH", "255"))
	if err != nil {
		panic("failed to parse sanitize max length from configuration, must be an integer types")
	}

	return &Config{
		Env:  setDeafultEnv("ATLAS_ENV", "production"),
		Port: port,
		Provider: ProviderConfig{
			Type:    setDeafultEnv("ATLAS_PROVIDER_TYPE", "google"),
			APIKey:  os.Getenv("ATLAS_PROVIDER_KEY"),
			BaseURL: os.Getenv("ATLAS_PROVIDER_URL"),
			Timeout: timeout,
		},
		NetworkEnabled:    networkEnabled,
		SanitizeMaxLength: maxLength,
	}
}

func setDeafultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}
