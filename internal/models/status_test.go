package models_test

import (
	"testing"

	"github.com/UnknownOlympus/mapmarker/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, status := range models.Statuses() {
		parsed, ok := models.ParseStatus(status.Label())
		assert.True(t, ok, "label %s", status.Label())
		assert.Equal(t, status, parsed)
	}

	_, ok := models.ParseStatus("UNKNOWN_ERROR")
	assert.False(t, ok)

	_, ok = models.ParseStatus("ok_rooftop")
	assert.False(t, ok)
}

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.StatusOKApproximate, models.NormalizeStatus(5))
	assert.Equal(t, models.StatusInvalidRequest, models.NormalizeStatus(-5))
	assert.Equal(t, models.StatusUnknown, models.NormalizeStatus(6))
	assert.Equal(t, models.StatusUnknown, models.NormalizeStatus(-6))
}

func TestStatus_Labels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "OK_RANGE_INTERPOLATED", models.StatusOKRangeInterpolated.Label())
	assert.Equal(t, "OK RANGE INTERPOLATED", models.StatusOKRangeInterpolated.String())
	assert.Equal(t, "ZERO RESULTS", models.StatusZeroResults.String())
	assert.Equal(t, "UNKNOWN", models.Status(42).Label())
	assert.False(t, models.Status(42).Valid())
}

func TestStatuses(t *testing.T) {
	t.Parallel()

	statuses := models.Statuses()

	assert.Len(t, statuses, 11)
	assert.Equal(t, models.StatusInvalidRequest, statuses[0])
	assert.Equal(t, models.StatusOKApproximate, statuses[len(statuses)-1])
	assert.IsIncreasing(t, statuses)
}
