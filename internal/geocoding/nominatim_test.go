package geocoding_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/mapmarker/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimProvider_Lookup(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org")
				assert.Equal(t, "Khreshchatyk 22 ,01001 Kyiv", req.URL.Query().Get("q"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))
				assert.Equal(t, "1", req.URL.Query().Get("addressdetails"))
				assert.Equal(
					t,
					"MapMarker-Geocoder/1.0 (https://github.com/UnknownOlympus/mapmarker)",
					req.Header.Get("User-Agent"),
				)

				return jsonResponse(http.StatusOK, `[{"lat":"50.4474","lon":"30.5222","place_rank":30,`+
					`"address":{"state":"Kyiv","municipality":"Kyiv City Hromada","district":"Pecherskyi"}}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", logger)
		resp, err := provider.Lookup(ctx, "Khreshchatyk 22 ,01001 Kyiv")

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, geocoding.StatusOK, resp.Status)

		result, ok := resp.First()
		require.True(t, ok)
		assert.InEpsilon(t, 50.4474, result.Geometry.Location.Lat, 0.0001)
		assert.InEpsilon(t, 30.5222, result.Geometry.Location.Lng, 0.0001)
		assert.Equal(t, geocoding.LocationTypeRooftop, result.Geometry.LocationType)

		require.Len(t, result.AddressComponents, 3)
		assert.Equal(t, "Kyiv City Hromada", result.AddressComponents[0].LongName)
		assert.True(t, result.AddressComponents[0].HasType(geocoding.TypeAdminAreaLevel3))
		assert.Equal(t, "Pecherskyi", result.AddressComponents[1].LongName)
		assert.True(t, result.AddressComponents[1].HasType(geocoding.TypeAdminAreaLevel2))
		assert.Equal(t, "Kyiv", result.AddressComponents[2].LongName)
		assert.True(t, result.AddressComponents[2].HasType(geocoding.TypeAdminAreaLevel1))
	})

	t.Run("street level match", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"50.45","lon":"30.52","place_rank":26}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", logger)
		resp, err := provider.Lookup(ctx, "Khreshchatyk ,01001 Kyiv")

		require.NoError(t, err)
		result, ok := resp.First()
		require.True(t, ok)
		assert.Equal(t, geocoding.LocationTypeGeometricCenter, result.Geometry.LocationType)
		assert.Empty(t, result.AddressComponents)
	})

	t.Run("fallback to town", func(t *testing.T) {
		var queries []string
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				query := req.URL.Query().Get("q")
				queries = append(queries, query)
				if query == "Hrabovets" {
					return jsonResponse(http.StatusOK, `[{"lat":"49.1","lon":"23.9","place_rank":30}]`), nil
				}
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", logger)
		resp, err := provider.Lookup(ctx, "Polova 5 ,82400 Hrabovets")

		require.NoError(t, err)
		assert.Equal(t, []string{"Polova 5 ,82400 Hrabovets", "82400 Hrabovets", "Hrabovets"}, queries)

		result, ok := resp.First()
		require.True(t, ok)
		assert.Equal(t, geocoding.LocationTypeApproximate, result.Geometry.LocationType)
	})

	t.Run("no results after all fallbacks", func(t *testing.T) {
		calls := 0
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				calls++
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", logger)
		resp, err := provider.Lookup(ctx, "invalid ,00000 nowhere")

		require.NoError(t, err)
		assert.Equal(t, geocoding.StatusZeroResults, resp.Status)
		assert.Equal(t, 3, calls)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusTooManyRequests, `{"error":"Rate limit exceeded"}`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", logger)
		resp, err := provider.Lookup(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, resp)
		assert.Contains(t, err.Error(), "nominatim API returned status 429")
	})

	t.Run("transport error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, errors.New("dial tcp: timeout")
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", logger)
		resp, err := provider.Lookup(ctx, "some address")

		require.Nil(t, resp)
		require.ErrorContains(t, err, "failed to execute geocoding request")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `invalid json`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", logger)
		resp, err := provider.Lookup(ctx, "some address")

		require.Nil(t, resp)
		assert.ErrorContains(t, err, "failed to decode nominatim response")
	})

	t.Run("invalid latitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"invalid","lon":"-122.0842499"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", logger)
		resp, err := provider.Lookup(ctx, "some address")

		require.Nil(t, resp)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid latitude")
	})

	t.Run("invalid longitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"37.4224764","lon":"invalid"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", logger)
		resp, err := provider.Lookup(ctx, "some address")

		require.Nil(t, resp)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid longitude")
	})
}
