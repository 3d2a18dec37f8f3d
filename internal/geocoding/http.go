package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// GoogleGeocodeURL is the Google geocode JSON endpoint.
const GoogleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// ErrUnexpectedStatusCode is returned when the endpoint answers with a non-200 HTTP status.
var ErrUnexpectedStatusCode = errors.New("geocode endpoint returned unexpected HTTP status")

// HTTPProvider looks addresses up with a plain GET against a Google compatible
// geocode JSON endpoint and decodes the body as is.
type HTTPProvider struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Geocode endpoint, without query
	apiKey  string       // Optional API key, sent as "key"
	log     *slog.Logger // Logger for logging operations
}

// NewHTTPProvider creates an HTTPProvider with its own http.Client.
// An empty baseURL selects GoogleGeocodeURL.
func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration, log *slog.Logger) *HTTPProvider {
	return NewHTTPProviderWithClient(&http.Client{Timeout: timeout}, baseURL, apiKey, log)
}

// NewHTTPProviderWithClient creates an HTTPProvider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewHTTPProviderWithClient(client HTTPClient, baseURL, apiKey string, log *slog.Logger) *HTTPProvider {
	if baseURL == "" {
		baseURL = GoogleGeocodeURL
	}

	return &HTTPProvider{client: client, baseURL: baseURL, apiKey: apiKey, log: log}
}

// Lookup issues GET <baseURL>?sensor=false&address=<address> and decodes the JSON answer.
// Provider level failures such as ZERO_RESULTS are not errors: they are reported
// through Response.Status.
func (hp *HTTPProvider) Lookup(ctx context.Context, address string) (*Response, error) {
	reqURL := hp.requestURL(address)
	hp.log.DebugContext(ctx, "Geocoding using HTTP endpoint", "address", address, "url", hp.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		hp.log.ErrorContext(ctx, "Geocode endpoint error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	hp.log.DebugContext(ctx, "Geocode raw response", "body", string(body))

	var result Response
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	return &result, nil
}

// requestURL keeps the parameter order of the legacy endpoint: sensor first, then address.
func (hp *HTTPProvider) requestURL(address string) string {
	query := "sensor=false&address=" + url.QueryEscape(address)
	if hp.apiKey != "" {
		query += "&key=" + url.QueryEscape(hp.apiKey)
	}

	return hp.baseURL + "?" + query
}
