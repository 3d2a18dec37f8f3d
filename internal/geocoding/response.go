package geocoding

import "slices"

// Provider status strings.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// Address component types that carry administrative areas.
const (
	TypeAdminAreaLevel1 = "administrative_area_level_1"
	TypeAdminAreaLevel2 = "administrative_area_level_2"
	TypeAdminAreaLevel3 = "administrative_area_level_3"
)

// Location types reported in a result geometry.
const (
	LocationTypeRooftop           = "ROOFTOP"
	LocationTypeRangeInterpolated = "RANGE_INTERPOLATED"
	LocationTypeGeometricCenter   = "GEOMETRIC_CENTER"
	LocationTypeApproximate       = "APPROXIMATE"
)

// Response is a geocode response as returned by the Google geocode JSON endpoint.
// Other providers translate their answers into this shape.
type Response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Results      []Result `json:"results"`
}

// Result is a single geocode match.
type Result struct {
	AddressComponents []AddressComponent `json:"address_components"`
	Geometry          Geometry           `json:"geometry"`
}

// Geometry holds the matched position and its precision.
type Geometry struct {
	Location     Location `json:"location"`
	LocationType string   `json:"location_type"`
}

// Location is a latitude/longitude pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AddressComponent is one part of the matched address, e.g. a city or a region.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// HasType reports whether the component is tagged with componentType.
func (ac AddressComponent) HasType(componentType string) bool {
	return slices.Contains(ac.Types, componentType)
}

// First returns the first result, or false if the response has none.
func (r *Response) First() (Result, bool) {
	if r == nil || len(r.Results) == 0 {
		return Result{}, false
	}

	return r.Results[0], true
}
