// Package routing contains the route-ordering and directions core: the
// nearest-neighbor sequencer, the Korea-region classifier, the polyline
// codec, and one directions client per mapping provider (Kakao for domestic
// itineraries, Google Routes for everything else).
package routing

import (
	"context"
	"errors"
)

// Sentinel errors shared by both directions clients.
var (
	// ErrMissingAPIKey indicates the credential for the selected provider is
	// not configured. This is an operator problem, not a transient one, and
	// is never absorbed into a degraded result.
	ErrMissingAPIKey = errors.New("routing: missing provider API key")

	// ErrTooFewPlaces is returned when a route is requested for fewer than
	// two places.
	ErrTooFewPlaces = errors.New("routing: at least 2 places are required")
)

// Provider identifies which mapping backend produced a route.
type Provider string

const (
	ProviderKakao  Provider = "kakao"
	ProviderGoogle Provider = "google"
)

// GeoPoint is a WGS-84 coordinate pair. Immutable value type.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within the WGS-84 coordinate domain.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Place is a stop on an itinerary. Identity is ID; Name and Location are
// display strings also used to resolve provider place IDs.
type Place struct {
	ID       string
	Name     string
	Location string
	Point    GeoPoint

	// ResolvedID is a provider-specific location id filled in by a
	// PlaceResolver for higher-quality routing. Empty when resolution missed
	// or was skipped; clients then use the raw coordinates.
	ResolvedID string
}

// RouteResult is the unified outcome of one directions call.
//
// Degraded is true when at least one segment (or the whole request) fell back
// to straight-line interpolation. DurationSeconds and DistanceMeters sum over
// successfully resolved segments only; failed segments contribute zero but
// still contribute their straight-line path so the drawn route stays
// continuous.
type RouteResult struct {
	Path            []GeoPoint
	DurationSeconds int
	DistanceMeters  int
	Provider        Provider
	Degraded        bool
}

// Bounds is an axis-aligned bounding box enclosing a path. The rendering
// boundary uses it to fit the map viewport to the full route.
type Bounds struct {
	MinLat, MinLng float64
	MaxLat, MaxLng float64
}

// BoundsOf computes the bounding box of a path. Returns ok=false for an
// empty path.
func BoundsOf(path []GeoPoint) (Bounds, bool) {
	if len(path) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinLat: path[0].Lat, MaxLat: path[0].Lat,
		MinLng: path[0].Lng, MaxLng: path[0].Lng,
	}
	for _, p := range path[1:] {
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
		if p.Lng < b.MinLng {
			b.MinLng = p.Lng
		}
		if p.Lng > b.MaxLng {
			b.MaxLng = p.Lng
		}
	}
	return b, true
}

// DirectionsClient fetches a road path for an already-sequenced list of
// places.
//
// Implementations never return an error for partial failures — they degrade
// to straight-line segments and set RouteResult.Degraded instead. An error is
// returned only for ErrMissingAPIKey or ErrTooFewPlaces.
type DirectionsClient interface {
	FetchRoute(ctx context.Context, places []Place) (*RouteResult, error)
}

// straightLinePath connects the given places with straight lines, in order.
// Used as the whole-route fallback when a provider call fails entirely.
func straightLinePath(places []Place) []GeoPoint {
	path := make([]GeoPoint, len(places))
	for i, p := range places {
		path[i] = p.Point
	}
	return path
}
