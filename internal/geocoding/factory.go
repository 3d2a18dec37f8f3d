package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeGoogle represents the Google geocode JSON endpoint queried over plain HTTP.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeGoogleSDK represents the Google Maps SDK client.
	ProviderTypeGoogleSDK ProviderType = "google-sdk"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim geocoding provider.
	ProviderTypeNominatim ProviderType = "nominatim"
)

// defaultTimeout is applied when ProviderConfig.Timeout is not set.
const defaultTimeout = 10 * time.Second

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type    ProviderType  // Type of provider to create
	APIKey  string        // API key (required by the SDK provider, optional for the HTTP one)
	BaseURL string        // Endpoint override for HTTP based providers
	Timeout time.Duration // Request timeout
	Logger  *slog.Logger  // Logger for the provider
}

// NewProvider creates a geocoding provider based on the provided configuration.
// It applies the Factory pattern to decouple provider instantiation from business logic.
//
// Supported provider types:
// - "google": Google geocode JSON endpoint (API key optional)
// - "google-sdk": Google Maps Geocoding API through the SDK (requires API key)
// - "nominatim": OpenStreetMap Nominatim API (free, no API key required)
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	switch config.Type {
	case ProviderTypeGoogle:
		return NewHTTPProvider(config.BaseURL, config.APIKey, config.Timeout, config.Logger), nil
	case ProviderTypeGoogleSDK:
		return newGoogleProvider(config)
	case ProviderTypeNominatim:
		return NewNominatimProvider(config.BaseURL, config.Timeout, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// newGoogleProvider creates a Google Maps SDK geocoding provider.
func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google SDK provider")
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
	}
	if config.BaseURL != "" {
		clientOpts = append(clientOpts, maps.WithBaseURL(config.BaseURL))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}
