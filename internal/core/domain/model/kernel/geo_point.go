package kernel

import (
	"errors"
	"fmt"
	"math"

	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0088

	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0

	// MaxSurfaceDistanceKm is the largest great-circle distance between two points.
	MaxSurfaceDistanceKm = math.Pi * EarthRadiusKm

	// distanceToleranceKm absorbs floating point noise in radius comparisons.
	distanceToleranceKm = 1e-9
	boxMarginDeg        = 1e-9
)

var (
	// ErrInvalidCoordinate is returned when a latitude or longitude is out of range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
		"geo point must be created via NewGeoPoint")
)

// GeoPoint is a position on the Earth's surface in decimal degrees.
// Latitude lies in [-90, 90] and longitude in [-180, 180].
//
// Example:
//
//	p, err := kernel.NewGeoPoint(52.52, 13.405)
//	if err != nil {
//	    // errors.Is(err, kernel.ErrInvalidCoordinate)
//	}
//	fmt.Println(p) // GeoPoint(52.520000,13.405000)
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint validates both coordinates and reports every violation at once.
// Each violation matches ErrInvalidCoordinate and errs.ErrValueIsOutOfRange.
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	p := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setLat(lat), p.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// NewOptionalGeoPoint builds a point only when both coordinates are present.
// A half-specified pair is a validation error.
func NewOptionalGeoPoint(lat, lng *float64) (*GeoPoint, error) {
	switch {
	case lat == nil && lng == nil:
		return nil, nil
	case lat == nil:
		return nil, fmt.Errorf("%w: %w", ErrInvalidCoordinate, errs.NewValueIsRequiredError("latitude"))
	case lng == nil:
		return nil, fmt.Errorf("%w: %w", ErrInvalidCoordinate, errs.NewValueIsRequiredError("longitude"))
	}

	p, err := NewGeoPoint(*lat, *lng)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

func (p GeoPoint) Lat() float64 {
	return p.lat
}

func (p GeoPoint) Lng() float64 {
	return p.lng
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%f,%f)", p.lat, p.lng)
}

// IsEqual reports whether both points are constructed and share coordinates.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return p.lat == other.lat && p.lng == other.lng, nil
}

// DistanceKm returns the great-circle distance in kilometres computed with the
// haversine formula. Both points must be constructed.
func (p GeoPoint) DistanceKm(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return haversineKm(p.lat, p.lng, other.lat, other.lng), nil
}

// WithinRadius reports whether other lies within radiusKm of p, tolerating
// floating point noise so that a zero radius matches the point itself.
func (p GeoPoint) WithinRadius(other GeoPoint, radiusKm float64) (bool, float64, error) {
	d, err := p.DistanceKm(other)
	if err != nil {
		return false, 0, err
	}
	return d <= radiusKm+distanceToleranceKm, d, nil
}

func (p *GeoPoint) setLat(lat float64) error {
	// written as a negated range so that NaN is rejected
	if !(lat >= MinLatitude && lat <= MaxLatitude) {
		return fmt.Errorf("%w: %w", ErrInvalidCoordinate,
			errs.NewValueIsOutOfRangeError("latitude", lat, MinLatitude, MaxLatitude))
	}

	p.lat = lat
	return nil
}

func (p *GeoPoint) setLng(lng float64) error {
	if !(lng >= MinLongitude && lng <= MaxLongitude) {
		return fmt.Errorf("%w: %w", ErrInvalidCoordinate,
			errs.NewValueIsOutOfRangeError("longitude", lng, MinLongitude, MaxLongitude))
	}

	p.lng = lng
	return nil
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lng2 - lng1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	a = math.Min(1, math.Max(0, a))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// BoundingBox is a latitude/longitude rectangle that contains every point
// within some radius of a centre. It only ever over-approximates the circle;
// the authoritative cutoff is the haversine distance.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// BoundingBoxAround returns the box enclosing the circle of radiusKm around
// center. Circles touching a pole or crossing the antimeridian get the full
// longitude range. A radius covering half the circumference yields the whole globe.
func BoundingBoxAround(center GeoPoint, radiusKm float64) BoundingBox {
	if radiusKm >= MaxSurfaceDistanceKm {
		return WholeGlobe()
	}
	radiusKm = math.Max(0, radiusKm)

	angular := radiusKm / EarthRadiusKm
	dLat := toDegrees(angular) + boxMarginDeg

	box := BoundingBox{
		MinLat: center.lat - dLat,
		MaxLat: center.lat + dLat,
	}
	if box.MinLat <= MinLatitude || box.MaxLat >= MaxLatitude {
		box.MinLat = math.Max(box.MinLat, MinLatitude)
		box.MaxLat = math.Min(box.MaxLat, MaxLatitude)
		box.MinLng, box.MaxLng = MinLongitude, MaxLongitude
		return box
	}

	ratio := math.Sin(angular) / math.Cos(toRadians(center.lat))
	if ratio >= 1 {
		box.MinLng, box.MaxLng = MinLongitude, MaxLongitude
		return box
	}
	dLng := toDegrees(math.Asin(ratio)) + boxMarginDeg

	box.MinLng = center.lng - dLng
	box.MaxLng = center.lng + dLng
	if box.MinLng < MinLongitude || box.MaxLng > MaxLongitude {
		box.MinLng, box.MaxLng = MinLongitude, MaxLongitude
	}
	return box
}

// Contains reports whether p falls inside the box, edges included.
func (b BoundingBox) Contains(p GeoPoint) bool {
	return p.lat >= b.MinLat && p.lat <= b.MaxLat &&
		p.lng >= b.MinLng && p.lng <= b.MaxLng
}

// IsWholeGlobe reports whether the box places no restriction at all.
func (b BoundingBox) IsWholeGlobe() bool {
	return b.MinLat <= MinLatitude && b.MaxLat >= MaxLatitude &&
		b.MinLng <= MinLongitude && b.MaxLng >= MaxLongitude
}

// WholeGlobe returns the box that restricts nothing.
func WholeGlobe() BoundingBox {
	return BoundingBox{MinLat: MinLatitude, MaxLat: MaxLatitude, MinLng: MinLongitude, MaxLng: MaxLongitude}
}
