package geocoding

import (
	"context"
	"net/http"
)

// Provider is an interface that defines a method for looking up an address.
// Lookup takes a context and a canonical address string as input and returns
// the provider response in the Google geocode shape, or an error when no
// response could be obtained or decoded.
type Provider interface {
	Lookup(ctx context.Context, address string) (*Response, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
