package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/mapmarker/internal/geocoding"
	"github.com/UnknownOlympus/mapmarker/internal/metrics"
	"github.com/UnknownOlympus/mapmarker/internal/models"
)

// Messages sent to the Reporter.
const (
	msgTransportDisabled = "Geocode is not supported because outbound network access is disabled"
	msgGeocodeFailed     = "Error geocoding address"
)

// Geocoder resolves map markers to coordinates through a geocoding provider.
// A marker whose canonical address did not change since its last attempt is not
// looked up again, whatever the outcome of that attempt was.
//
// Geocoder holds no per-marker state and may be shared, but a single marker must
// not be resolved or mutated concurrently.
type Geocoder struct {
	log          *slog.Logger       // Logger for logging service activities
	provider     geocoding.Provider // Geocoding provider for external geocoding services
	providerName string             // Name of the provider for metrics labeling
	metrics      *metrics.Metrics   // Metrics for tracking service performance
	reporter     Reporter           // Sink for non-fatal errors and notices
	online       TransportGate      // Gate checked before any network I/O
}

// NewGeocoder creates a new instance of Geocoder. It takes a logger, a geocoding
// provider, the provider name for metrics, metrics for monitoring, a reporter for
// non-fatal messages and the transport gate. A nil gate means the network is available.
func NewGeocoder(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
	reporter Reporter,
	online TransportGate,
) *Geocoder {
	if online == nil {
		online = StaticGate(true)
	}

	return &Geocoder{
		log:          log,
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
		reporter:     reporter,
		online:       online,
	}
}

// Resolve geocodes marker and returns its resulting status. It never fails: every
// problem is reported to the Reporter and expressed in the returned status.
//
// When the network is disabled the marker keeps its fields and status, and
// StatusNotApplicable is returned.
func (g *Geocoder) Resolve(ctx context.Context, marker *models.MapMarker) models.Status {
	address := marker.CanonicalAddress()
	if address == marker.ResolvedAddress() {
		g.metrics.CacheHits.Inc()
		g.log.DebugContext(ctx, "Address already geocoded", "address", address, "status", marker.Status().Label())
		return marker.Status()
	}

	// Recorded before the lookup so an unchanged bad address is not retried.
	marker.MarkResolved(address)

	if !g.online() {
		g.reporter.Error(ctx, msgTransportDisabled, "address", address)
		return models.StatusNotApplicable
	}

	startTime := time.Now()
	resp, err := g.provider.Lookup(ctx, address)
	duration := time.Since(startTime).Seconds()
	g.metrics.RequestSeconds.WithLabelValues(g.providerName).Observe(duration)

	if err != nil {
		g.metrics.APIErrors.Inc()
		g.log.WarnContext(ctx, "Geocoding lookup failed", "address", address, "error", err)
		return g.fail(ctx, marker, nil, address)
	}

	result, ok := resp.First()
	if resp == nil || resp.Status != geocoding.StatusOK || !ok {
		return g.fail(ctx, marker, resp, address)
	}

	return g.apply(ctx, marker, result, address)
}

// fail records an unsuccessful lookup. resp is nil when no response could be read.
func (g *Geocoder) fail(
	ctx context.Context,
	marker *models.MapMarker,
	resp *geocoding.Response,
	address string,
) models.Status {
	status := models.StatusUnknown
	providerStatus := ""
	if resp != nil {
		providerStatus = resp.Status
		// An OK without results is as unusable as a missing status.
		if code, ok := models.ParseStatus(resp.Status); ok && resp.Status != geocoding.StatusOK {
			status = code
		}
	}

	g.reporter.Error(ctx, msgGeocodeFailed, "address", address, "provider_status", providerStatus)

	marker.SetStatus(int(status))
	marker.SetPosition(0, 0)
	g.metrics.Resolutions.WithLabelValues(marker.Status().Label()).Inc()

	return marker.Status()
}

// apply copies a successful result onto marker.
func (g *Geocoder) apply(
	ctx context.Context,
	marker *models.MapMarker,
	result geocoding.Result,
	address string,
) models.Status {
	// Checked per component, so a later duplicate of a level replaces an earlier one.
	for _, component := range result.AddressComponents {
		if component.HasType(geocoding.TypeAdminAreaLevel3) {
			marker.SetAdminArea3(component.LongName)
		}
		if component.HasType(geocoding.TypeAdminAreaLevel2) {
			marker.SetAdminArea2(component.LongName)
		}
		if component.HasType(geocoding.TypeAdminAreaLevel1) {
			marker.SetAdminArea1(component.LongName)
		}
	}

	location := result.Geometry.Location
	marker.SetPosition(location.Lat, location.Lng)

	status, ok := models.ParseStatus(geocoding.StatusOK + "_" + result.Geometry.LocationType)
	if !ok {
		status = models.StatusOK
	}
	marker.SetStatus(int(status))

	g.metrics.Resolutions.WithLabelValues(marker.Status().Label()).Inc()
	g.reporter.Info(ctx, "Geocode "+marker.StatusLabel(), "address", address)

	return marker.Status()
}
