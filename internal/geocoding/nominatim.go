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
	"strconv"
	"strings"
	"time"
)

// NominatimBaseURL is the public OpenStreetMap Nominatim search endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/search"

// nominatimUserAgent is required by the Nominatim usage policy:
// https://operations.osmfoundation.org/policies/nominatim/
const nominatimUserAgent = "MapMarker-Geocoder/1.0 (https://github.com/UnknownOlympus/mapmarker)"

// Place ranks separating buildings and streets from coarser matches.
const (
	placeRankBuilding = 30
	placeRankStreet   = 26
)

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// This is a free geocoding service with usage limits (1 request/second for fair use).
type NominatimProvider struct {
	client    HTTPClient   // HTTP client for making requests
	baseURL   string       // Base URL for the Nominatim API
	log       *slog.Logger // Logger for logging operations
	userAgent string
}

// nominatimResponse represents one element of the JSON response from Nominatim API.
type nominatimResponse struct {
	Lat       string           `json:"lat"`        // Latitude as string
	Lon       string           `json:"lon"`        // Longitude as string
	PlaceRank int              `json:"place_rank"` // Precision of the match, 30 is a building
	Address   nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	State        string `json:"state"`
	County       string `json:"county"`
	District     string `json:"district"`
	Municipality string `json:"municipality"`
	CityDistrict string `json:"city_district"`
}

// ErrNominatimInvalidCoords is returned when a result carries unparsable coordinates.
var ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")

// NewNominatimProvider creates a new Nominatim geocoding provider.
// Uses the public Nominatim API endpoint by default.
func NewNominatimProvider(baseURL string, timeout time.Duration, log *slog.Logger) *NominatimProvider {
	return NewNominatimProviderWithClient(&http.Client{Timeout: timeout}, baseURL, log)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, baseURL string, log *slog.Logger) *NominatimProvider {
	if baseURL == "" {
		baseURL = NominatimBaseURL
	}

	return &NominatimProvider{
		client:    client,
		baseURL:   baseURL,
		log:       log,
		userAgent: nominatimUserAgent,
	}
}

// Lookup converts an address to a Response using the Nominatim API.
//
// Uses a progressive fallback strategy: the full address is tried first, then the
// address without its leading components (street, then postal code), so a match
// on the town is still returned as an approximate result.
// An address without any match yields a ZERO_RESULTS response.
func (np *NominatimProvider) Lookup(ctx context.Context, address string) (*Response, error) {
	np.log.DebugContext(ctx, "Geocoding using Nominatim", "address", address)

	addressVariations := np.generateAddressFallbacks(address)

	for idx, addrVariation := range addressVariations {
		place, found, err := np.search(ctx, addrVariation)
		if err != nil {
			return nil, err
		}
		if !found {
			np.log.DebugContext(ctx, "Address variation returned no results, trying fallback",
				"variation", addrVariation,
				"fallback_level", idx)
			continue
		}

		if idx > 0 {
			np.log.InfoContext(ctx, "Geocoded using fallback address",
				"original", address,
				"fallback", addrVariation,
				"fallback_level", idx)
			// A fallback match never describes the full address.
			place.PlaceRank = 0
		}

		return place.toResponse()
	}

	np.log.WarnContext(ctx, "All address fallbacks exhausted",
		"address", address,
		"variations_tried", len(addressVariations))

	return &Response{Status: StatusZeroResults}, nil
}

// generateAddressFallbacks creates a list of progressively simpler address variations.
func (np *NominatimProvider) generateAddressFallbacks(address string) []string {
	seen := make(map[string]bool)
	variations := []string{}

	addVariation := func(v string) {
		v = strings.TrimSpace(v)
		if v != "" && !seen[v] {
			seen[v] = true
			variations = append(variations, v)
		}
	}

	addVariation(address)

	// "street ,postcode city": drop the street, then the postcode.
	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	for i := 1; i < len(parts); i++ {
		addVariation(strings.Join(parts[i:], ", "))
	}

	if last := parts[len(parts)-1]; strings.Contains(last, " ") {
		_, town, _ := strings.Cut(last, " ")
		addVariation(town)
	}

	return variations
}

// search performs a single Nominatim request without fallback logic.
func (np *NominatimProvider) search(ctx context.Context, address string) (nominatimResponse, bool, error) {
	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nominatimResponse{}, false, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")          // Only need the top result
	query.Set("addressdetails", "1") // Needed for administrative areas
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nominatimResponse{}, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", np.userAgent)

	resp, err := np.client.Do(req)
	if err != nil {
		return nominatimResponse{}, false, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nominatimResponse{}, false, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nominatimResponse{}, false, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nominatimResponse{}, false, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	if len(results) == 0 {
		return nominatimResponse{}, false, nil
	}

	return results[0], true, nil
}

// toResponse translates a Nominatim place into the Google geocode shape.
func (nr nominatimResponse) toResponse() (*Response, error) {
	lat, err := strconv.ParseFloat(nr.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, nr.Lat)
	}
	lng, err := strconv.ParseFloat(nr.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, nr.Lon)
	}

	locationType := LocationTypeApproximate
	switch {
	case nr.PlaceRank >= placeRankBuilding:
		locationType = LocationTypeRooftop
	case nr.PlaceRank >= placeRankStreet:
		locationType = LocationTypeGeometricCenter
	}

	var components []AddressComponent
	addComponent := func(componentType string, names ...string) {
		for _, name := range names {
			if name != "" {
				components = append(components, AddressComponent{LongName: name, Types: []string{componentType}})
				return
			}
		}
	}
	addComponent(TypeAdminAreaLevel3, nr.Address.Municipality, nr.Address.CityDistrict)
	addComponent(TypeAdminAreaLevel2, nr.Address.County, nr.Address.District)
	addComponent(TypeAdminAreaLevel1, nr.Address.State)

	return &Response{
		Status: StatusOK,
		Results: []Result{{
			AddressComponents: components,
			Geometry: Geometry{
				Location:     Location{Lat: lat, Lng: lng},
				LocationType: locationType,
			},
		}},
	}, nil
}
