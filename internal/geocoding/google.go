package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services through the official SDK.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// sdkStatusPrefix is how the SDK formats provider status failures: "maps: STATUS - message".
const sdkStatusPrefix = "maps: "

// NewGoogleProvider initializes a new GoogleProvider with the given client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Lookup geocodes the address with the Google Maps SDK and converts the answer into a Response.
// The SDK folds provider statuses into errors and empty slices; both are turned back into
// Response.Status so callers see the same shape as from the JSON endpoint.
func (gp *GoogleProvider) Lookup(ctx context.Context, address string) (*Response, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	req := maps.GeocodingRequest{Address: address}
	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		if status, message, ok := parseSDKStatus(err); ok {
			gp.log.DebugContext(ctx, "Google Maps returned status", "status", status, "message", message)
			return &Response{Status: status, ErrorMessage: message}, nil
		}
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return &Response{Status: StatusZeroResults}, nil
	}

	results := make([]Result, 0, len(geocodeResponse))
	for _, item := range geocodeResponse {
		components := make([]AddressComponent, 0, len(item.AddressComponents))
		for _, component := range item.AddressComponents {
			components = append(components, AddressComponent{
				LongName:  component.LongName,
				ShortName: component.ShortName,
				Types:     component.Types,
			})
		}

		results = append(results, Result{
			AddressComponents: components,
			Geometry: Geometry{
				Location:     Location{Lat: item.Geometry.Location.Lat, Lng: item.Geometry.Location.Lng},
				LocationType: item.Geometry.LocationType,
			},
		})
	}

	return &Response{Status: StatusOK, Results: results}, nil
}

// parseSDKStatus extracts the provider status from an SDK error such as
// "maps: OVER_QUERY_LIMIT - You have exceeded your daily request quota".
func parseSDKStatus(err error) (string, string, bool) {
	text, found := strings.CutPrefix(err.Error(), sdkStatusPrefix)
	if !found {
		return "", "", false
	}

	status, message, _ := strings.Cut(text, " - ")
	if status == "" || strings.ToUpper(status) != status || strings.ContainsAny(status, " :") {
		return "", "", false
	}

	return status, message, true
}
