package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/mapmarker/internal/sanitize"
)

// Field names a settable or readable attribute of a MapMarker.
type Field string

// Marker fields.
const (
	FieldLatitude    Field = "latitude"
	FieldLongitude   Field = "longitude"
	FieldStreet      Field = "street"
	FieldCity        Field = "city"
	FieldPostalCode  Field = "postalCode"
	FieldAdminArea1  Field = "adminArea1"
	FieldAdminArea2  Field = "adminArea2"
	FieldAdminArea3  Field = "adminArea3"
	FieldStatus      Field = "status"
	FieldStatusLabel Field = "statusLabel" // read only
)

var (
	// ErrUnknownField is returned by Set and Get for names that are not marker fields.
	ErrUnknownField = errors.New("unknown marker field")
	// ErrReadOnlyField is returned by Set for derived fields.
	ErrReadOnlyField = errors.New("marker field is read only")
)

// Sanitizer cleans free text before it is stored on a marker.
type Sanitizer interface {
	Text(raw string) string
}

// MapMarker holds a postal address, its geocoded position and the status of the last geocoding.
// Every setter normalizes its input, so a marker never holds invalid coordinates or an
// unknown status. A MapMarker is not safe for concurrent use.
type MapMarker struct {
	latitude   Coordinate
	longitude  Coordinate
	street     string
	city       string
	postalCode string
	adminArea1 string
	adminArea2 string
	adminArea3 string
	status     Status

	resolvedAddress string // canonical address of the last geocoding attempt
	sanitizer       Sanitizer
}

// NewMapMarker returns an empty marker that sanitizes text with sanitize.Default.
func NewMapMarker() *MapMarker {
	return NewMapMarkerWithSanitizer(sanitize.Default)
}

// NewMapMarkerWithSanitizer returns an empty marker that cleans text fields with sanitizer.
func NewMapMarkerWithSanitizer(sanitizer Sanitizer) *MapMarker {
	return &MapMarker{status: StatusNotApplicable, sanitizer: sanitizer}
}

// fieldSetters maps every writable field to its validator.
var fieldSetters = map[Field]func(m *MapMarker, raw any){
	FieldLatitude:   func(m *MapMarker, raw any) { m.latitude = coordinateFrom(raw) },
	FieldLongitude:  func(m *MapMarker, raw any) { m.longitude = coordinateFrom(raw) },
	FieldStreet:     func(m *MapMarker, raw any) { m.SetStreet(textFrom(raw)) },
	FieldCity:       func(m *MapMarker, raw any) { m.SetCity(textFrom(raw)) },
	FieldPostalCode: func(m *MapMarker, raw any) { m.SetPostalCode(textFrom(raw)) },
	FieldAdminArea1: func(m *MapMarker, raw any) { m.SetAdminArea1(textFrom(raw)) },
	FieldAdminArea2: func(m *MapMarker, raw any) { m.SetAdminArea2(textFrom(raw)) },
	FieldAdminArea3: func(m *MapMarker, raw any) { m.SetAdminArea3(textFrom(raw)) },
	FieldStatus:     func(m *MapMarker, raw any) { m.status = statusFrom(raw) },
}

// Writable reports whether f can be assigned with Set.
func (f Field) Writable() bool {
	_, ok := fieldSetters[f]
	return ok
}

// Set assigns raw to field after normalizing it. Invalid values never fail: they are
// replaced by a safe default (unset coordinate, sanitized text, StatusUnknown).
// An error is returned only when field is not a writable marker field.
func (m *MapMarker) Set(field Field, raw any) error {
	if field == FieldStatusLabel {
		return fmt.Errorf("%w: %s", ErrReadOnlyField, field)
	}

	setter, ok := fieldSetters[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	setter(m, raw)

	return nil
}

// Get returns the string form of field. Unset coordinates render as "".
func (m *MapMarker) Get(field Field) (string, error) {
	switch field {
	case FieldLatitude:
		return m.latitude.String(), nil
	case FieldLongitude:
		return m.longitude.String(), nil
	case FieldStreet:
		return m.street, nil
	case FieldCity:
		return m.city, nil
	case FieldPostalCode:
		return m.postalCode, nil
	case FieldAdminArea1:
		return m.adminArea1, nil
	case FieldAdminArea2:
		return m.adminArea2, nil
	case FieldAdminArea3:
		return m.adminArea3, nil
	case FieldStatus:
		return strconv.Itoa(int(m.status)), nil
	case FieldStatusLabel:
		return m.StatusLabel(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
}

// SetLatitude parses raw as a decimal latitude; see ParseCoordinate.
func (m *MapMarker) SetLatitude(raw string) { m.latitude = ParseCoordinate(raw) }

// SetLongitude parses raw as a decimal longitude; see ParseCoordinate.
func (m *MapMarker) SetLongitude(raw string) { m.longitude = ParseCoordinate(raw) }

// SetPosition stores both coordinates.
func (m *MapMarker) SetPosition(lat, lng float64) {
	m.latitude = NewCoordinate(lat)
	m.longitude = NewCoordinate(lng)
}

// Text setters store raw after sanitizing it.
func (m *MapMarker) SetStreet(raw string)     { m.street = m.clean(raw) }
func (m *MapMarker) SetCity(raw string)       { m.city = m.clean(raw) }
func (m *MapMarker) SetPostalCode(raw string) { m.postalCode = m.clean(raw) }
func (m *MapMarker) SetAdminArea1(raw string) { m.adminArea1 = m.clean(raw) }
func (m *MapMarker) SetAdminArea2(raw string) { m.adminArea2 = m.clean(raw) }
func (m *MapMarker) SetAdminArea3(raw string) { m.adminArea3 = m.clean(raw) }

// SetStatus stores code, or StatusUnknown if code is not part of the taxonomy.
func (m *MapMarker) SetStatus(code int) { m.status = NormalizeStatus(code) }

// Field getters.
func (m *MapMarker) Latitude() Coordinate  { return m.latitude }
func (m *MapMarker) Longitude() Coordinate { return m.longitude }
func (m *MapMarker) Street() string        { return m.street }
func (m *MapMarker) City() string          { return m.city }
func (m *MapMarker) PostalCode() string    { return m.postalCode }
func (m *MapMarker) AdminArea1() string    { return m.adminArea1 }
func (m *MapMarker) AdminArea2() string    { return m.adminArea2 }
func (m *MapMarker) AdminArea3() string    { return m.adminArea3 }
func (m *MapMarker) Status() Status        { return m.status }

// StatusLabel returns the status label with underscores rendered as spaces.
func (m *MapMarker) StatusLabel() string {
	return m.status.String()
}

// CanonicalAddress is the query sent to the geocoding provider and the key used to
// detect whether the marker changed since it was last geocoded.
// The " ," separator is kept as is for compatibility with existing provider matches.
func (m *MapMarker) CanonicalAddress() string {
	return m.street + " ," + m.postalCode + " " + m.city
}

// ResolvedAddress returns the canonical address of the last geocoding attempt.
func (m *MapMarker) ResolvedAddress() string {
	return m.resolvedAddress
}

// MarkResolved records address as the last geocoding attempt.
func (m *MapMarker) MarkResolved(address string) {
	m.resolvedAddress = address
}

// String renders the marker as "street, postcode city (lat, lng) [status]".
func (m *MapMarker) String() string {
	return fmt.Sprintf("%s, %s %s (%s, %s) [%s]",
		m.street, m.postalCode, m.city, m.latitude, m.longitude, m.StatusLabel())
}

func (m *MapMarker) clean(raw string) string {
	if m.sanitizer == nil {
		return strings.TrimSpace(raw)
	}

	return m.sanitizer.Text(raw)
}

func textFrom(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func coordinateFrom(raw any) Coordinate {
	switch v := raw.(type) {
	case string:
		return ParseCoordinate(v)
	case json.Number:
		return ParseCoordinate(v.String())
	case float64:
		return NewCoordinate(v)
	case float32:
		return NewCoordinate(float64(v))
	case int:
		return NewCoordinate(float64(v))
	case int64:
		return NewCoordinate(float64(v))
	case Coordinate:
		return v
	default:
		return Coordinate{}
	}
}

// numericPrefix matches the leading decimal number of a status string, so "3abc" reads as 3.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// statusFrom coerces raw to an integer code, truncating fractions, and normalizes it.
func statusFrom(raw any) Status {
	switch v := raw.(type) {
	case Status:
		return NormalizeStatus(int(v))
	case int:
		return NormalizeStatus(v)
	case int64:
		return statusFromFloat(float64(v))
	case float32:
		return statusFromFloat(float64(v))
	case float64:
		return statusFromFloat(v)
	case bool:
		if v {
			return NormalizeStatus(1)
		}
		return NormalizeStatus(0)
	case json.Number:
		return statusFrom(v.String())
	case string:
		prefix := numericPrefix.FindString(strings.TrimSpace(v))
		if prefix == "" {
			return StatusUnknown
		}
		value, err := strconv.ParseFloat(prefix, 64)
		if err != nil {
			return StatusUnknown
		}
		return statusFromFloat(value)
	default:
		return StatusUnknown
	}
}

func statusFromFloat(v float64) Status {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
		return StatusUnknown
	}

	return NormalizeStatus(int(math.Trunc(v)))
}
