package repository

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/UnknownOlympus/mapmarker/internal/metrics"
	"github.com/UnknownOlympus/mapmarker/internal/models"
	"github.com/google/uuid"
)

// ErrMarkerNotFound is returned when no marker is stored under the requested ID.
var ErrMarkerNotFound = errors.New("marker not found")

// Interface describes the marker registry used by the HTTP handlers.
type Interface interface {
	Create(ctx context.Context, fn func(marker *models.MapMarker) error) (string, error)
	View(ctx context.Context, id string, fn func(marker *models.MapMarker) error) error
	Update(ctx context.Context, id string, fn func(marker *models.MapMarker) error) error
	Delete(ctx context.Context, id string) error
	Len() int
}

var _ Interface = (*Repository)(nil)

// entry pairs a marker with the lock serializing every access to it.
type entry struct {
	mu     sync.Mutex
	marker *models.MapMarker
}

// Repository keeps markers in memory for the lifetime of the process.
// Access to a single marker is serialized, so field updates and geocoding
// of the same marker never interleave.
type Repository struct {
	mu        sync.RWMutex
	markers   map[string]*entry
	newMarker func() *models.MapMarker
	metrics   *metrics.Metrics
	log       *slog.Logger
}

// NewRepository creates a new instance of Repository. newMarker builds the empty
// markers handed to Create.
func NewRepository(newMarker func() *models.MapMarker, metrics *metrics.Metrics, log *slog.Logger) *Repository {
	return &Repository{
		markers:   make(map[string]*entry),
		newMarker: newMarker,
		metrics:   metrics,
		log:       log,
	}
}

// Create stores a new empty marker after fn initialized it and returns its ID.
// Nothing is stored if fn returns an error.
func (r *Repository) Create(ctx context.Context, fn func(marker *models.MapMarker) error) (string, error) {
	marker := r.newMarker()
	if fn != nil {
		if err := fn(marker); err != nil {
			return "", err
		}
	}

	id := uuid.NewString()

	r.mu.Lock()
	r.markers[id] = &entry{marker: marker}
	r.metrics.MarkersTracked.Set(float64(len(r.markers)))
	r.mu.Unlock()

	r.log.DebugContext(ctx, "Marker created", "id", id)

	return id, nil
}

// View calls fn with the marker stored under id while holding its lock.
func (r *Repository) View(ctx context.Context, id string, fn func(marker *models.MapMarker) error) error {
	return r.Update(ctx, id, fn)
}

// Update calls fn with the marker stored under id while holding its lock.
// Changes made by fn are kept even if it returns an error.
func (r *Repository) Update(_ context.Context, id string, fn func(marker *models.MapMarker) error) error {
	r.mu.RLock()
	item, ok := r.markers[id]
	r.mu.RUnlock()
	if !ok {
		return ErrMarkerNotFound
	}

	item.mu.Lock()
	defer item.mu.Unlock()

	return fn(item.marker)
}

// Delete removes the marker stored under id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.markers[id]; !ok {
		return ErrMarkerNotFound
	}
	delete(r.markers, id)
	r.metrics.MarkersTracked.Set(float64(len(r.markers)))

	r.log.DebugContext(ctx, "Marker deleted", "id", id)

	return nil
}

// Len returns the number of stored markers.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.markers)
}
