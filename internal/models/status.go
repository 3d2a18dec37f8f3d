package models

import (
	"sort"
	"strings"
)

// Status is a geocoding status code. Positive codes are successful resolutions,
// negative codes are failures reported by the provider, zero means not geocoded.
type Status int

// Known geocoding statuses.
const (
	StatusNotApplicable       Status = 0
	StatusOK                  Status = 1
	StatusOKRooftop           Status = 2
	StatusOKRangeInterpolated Status = 3
	StatusOKGeometricCenter   Status = 4
	StatusOKApproximate       Status = 5
	StatusUnknown             Status = -1
	StatusZeroResults         Status = -2
	StatusOverQueryLimit      Status = -3
	StatusRequestDenied       Status = -4
	StatusInvalidRequest      Status = -5
)

// statusLabels is the only place where codes and labels are paired.
var statusLabels = map[Status]string{
	StatusNotApplicable:       "NOT_APPLICABLE",
	StatusOK:                  "OK",
	StatusOKRooftop:           "OK_ROOFTOP",
	StatusOKRangeInterpolated: "OK_RANGE_INTERPOLATED",
	StatusOKGeometricCenter:   "OK_GEOMETRIC_CENTER",
	StatusOKApproximate:       "OK_APPROXIMATE",
	StatusUnknown:             "UNKNOWN",
	StatusZeroResults:         "ZERO_RESULTS",
	StatusOverQueryLimit:      "OVER_QUERY_LIMIT",
	StatusRequestDenied:       "REQUEST_DENIED",
	StatusInvalidRequest:      "INVALID_REQUEST",
}

var statusCodes = invertStatusLabels(statusLabels)

func invertStatusLabels(labels map[Status]string) map[string]Status {
	codes := make(map[string]Status, len(labels))
	for code, label := range labels {
		codes[label] = code
	}

	return codes
}

// ParseStatus returns the status whose label is exactly label.
func ParseStatus(label string) (Status, bool) {
	code, ok := statusCodes[label]
	return code, ok
}

// NormalizeStatus converts an arbitrary integer into a known status.
// Codes outside of the taxonomy become StatusUnknown.
func NormalizeStatus(code int) Status {
	status := Status(code)
	if !status.Valid() {
		return StatusUnknown
	}

	return status
}

// Valid reports whether s is part of the taxonomy.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the raw taxonomy label, e.g. "OK_ROOFTOP".
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}

	return statusLabels[StatusUnknown]
}

// String returns the human readable label, e.g. "OK ROOFTOP".
func (s Status) String() string {
	return strings.ReplaceAll(s.Label(), "_", " ")
}

// Statuses returns every known status ordered by code.
func Statuses() []Status {
	list := make([]Status, 0, len(statusLabels))
	for code := range statusLabels {
		list = append(list, code)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })

	return list
}
