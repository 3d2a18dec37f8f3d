package repository_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/UnknownOlympus/mapmarker/internal/metrics"
	"github.com/UnknownOlympus/mapmarker/internal/models"
	"github.com/UnknownOlympus/mapmarker/internal/repository"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepository() (*repository.Repository, *metrics.Metrics) {
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	return repository.NewRepository(models.NewMapMarker, appMetrics, slog.Default()), appMetrics
}

func TestRepository_CreateAndView(t *testing.T) {
	t.Parallel()
	repo, appMetrics := newRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, func(marker *models.MapMarker) error {
		marker.SetCity("Kyiv")
		return nil
	})
	require.NoError(t, err)

	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Len())
	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.MarkersTracked), 0)

	var city string
	err = repo.View(ctx, id, func(marker *models.MapMarker) error {
		city = marker.City()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Kyiv", city)
}

func TestRepository_CreateRejected(t *testing.T) {
	t.Parallel()
	repo, _ := newRepository()

	id, err := repo.Create(context.Background(), func(_ *models.MapMarker) error {
		return assert.AnError
	})

	require.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, id)
	assert.Equal(t, 0, repo.Len())
}

func TestRepository_Update(t *testing.T) {
	t.Parallel()
	repo, _ := newRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, nil)
	require.NoError(t, err)

	err = repo.Update(ctx, id, func(marker *models.MapMarker) error {
		return marker.Set(models.FieldLatitude, "50,45")
	})
	require.NoError(t, err)

	err = repo.Update(ctx, id, func(_ *models.MapMarker) error {
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	err = repo.View(ctx, id, func(marker *models.MapMarker) error {
		assert.Equal(t, "50.45", marker.Latitude().String())
		return nil
	})
	require.NoError(t, err)
}

func TestRepository_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepository()
	ctx := context.Background()
	noop := func(_ *models.MapMarker) error { return nil }

	require.ErrorIs(t, repo.View(ctx, "missing", noop), repository.ErrMarkerNotFound)
	require.ErrorIs(t, repo.Update(ctx, "missing", noop), repository.ErrMarkerNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "missing"), repository.ErrMarkerNotFound)
}

func TestRepository_Delete(t *testing.T) {
	t.Parallel()
	repo, appMetrics := newRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))
	assert.Equal(t, 0, repo.Len())
	assert.InDelta(t, 0, testutil.ToFloat64(appMetrics.MarkersTracked), 0)
}

func TestRepository_UpdateIsSerialized(t *testing.T) {
	t.Parallel()
	repo, _ := newRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, nil)
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Update(ctx, id, func(marker *models.MapMarker) error {
				marker.SetStreet(marker.Street() + "x")
				return nil
			})
		}()
	}
	wg.Wait()

	err = repo.View(ctx, id, func(marker *models.MapMarker) error {
		assert.Len(t, marker.Street(), workers)
		return nil
	})
	require.NoError(t, err)
}
