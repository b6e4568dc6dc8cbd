package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/azerckid/C-Stay-tinder/internal/routing"
)

// ErrTooFewPlaces is returned by ComputeItinerary when fewer than two places
// with usable coordinates remain after filtering. Surfaced before any
// network activity.
var ErrTooFewPlaces = errors.New("itinerary: at least 2 places are required")

// Itinerary is the outcome of one itinerary computation: the visiting order,
// the road path for it, and the viewport that encloses the whole path.
type Itinerary struct {
	// Ordered is the visiting order: sequenced routable places first, then
	// any places without coordinates appended for display.
	Ordered []routing.Place
	Route   *routing.RouteResult
	// Bounds encloses the full route path so the rendering boundary can fit
	// its viewport from complete data rather than a partial mid-fetch one.
	Bounds routing.Bounds
}

// ItineraryService orders liked places into a visiting sequence and fetches
// a road path for it, dispatching to the provider that matches the
// itinerary's region.
type ItineraryService struct {
	domestic routing.DirectionsClient
	global   routing.DirectionsClient
	region   routing.RegionPolicy
	resolver routing.PlaceResolver
}

// ItineraryOption customizes an ItineraryService.
type ItineraryOption func(*ItineraryService)

// WithResolver enables place-id resolution for global itineraries. Resolved
// ids let the directions provider snap waypoints to venue entrances instead
// of raw coordinates.
func WithResolver(r routing.PlaceResolver) ItineraryOption {
	return func(s *ItineraryService) { s.resolver = r }
}

// NewItineraryService creates an ItineraryService.
//
//   - domestic should be a *routing.KakaoClient in production.
//   - global should be a *routing.GoogleClient in production.
//   - region decides which of the two serves a given point set.
func NewItineraryService(domestic, global routing.DirectionsClient, region routing.RegionPolicy, opts ...ItineraryOption) *ItineraryService {
	s := &ItineraryService{domestic: domestic, global: global, region: region}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeItinerary sequences places and fetches the road path.
//
// Error contract: ErrTooFewPlaces for malformed input and
// routing.ErrMissingAPIKey (wrapped) when the selected provider has no
// credential — an operator-fixable condition that must not be silently
// degraded. Transient provider failures never surface here; they come back
// as a degraded result with straight-line geometry.
func (s *ItineraryService) ComputeItinerary(ctx context.Context, places []routing.Place) (*Itinerary, error) {
	routable, unroutable := splitRoutable(places)
	if len(routable) < 2 {
		return nil, ErrTooFewPlaces
	}

	ordered := routing.Sequence(routable)

	points := make([]routing.GeoPoint, len(ordered))
	for i, p := range ordered {
		points[i] = p.Point
	}

	provider := s.region.Classify(points)
	client := s.global
	if provider == routing.ProviderKakao {
		client = s.domestic
	}

	// Kakao's directions API takes coordinates only, so id resolution would
	// be wasted work on the domestic path.
	if provider == routing.ProviderGoogle && s.resolver != nil {
		s.resolvePlaceIDs(ctx, ordered)
	}

	route, err := client.FetchRoute(ctx, ordered)
	if err != nil {
		return nil, fmt.Errorf("itinerary: fetch %s route: %w", provider, err)
	}
	if route.Degraded {
		log.Printf("itinerary: %s route degraded to straight-line geometry for %d place(s)", provider, len(ordered))
	}

	bounds, _ := routing.BoundsOf(route.Path)

	return &Itinerary{
		Ordered: append(ordered, unroutable...),
		Route:   route,
		Bounds:  bounds,
	}, nil
}

// resolvePlaceIDs fills in ResolvedID for each named place, one lookup per
// place concurrently. Misses and lookup failures leave ResolvedID empty and
// the place routes by raw coordinates.
func (s *ItineraryService) resolvePlaceIDs(ctx context.Context, places []routing.Place) {
	var wg sync.WaitGroup
	for i := range places {
		if places[i].Name == "" {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := s.resolver.Resolve(ctx, places[i].Name, places[i].Location, places[i].Point)
			if err != nil {
				log.Printf("itinerary: resolve %q: %v", places[i].Name, err)
				return
			}
			places[i].ResolvedID = id
		}(i)
	}
	wg.Wait()
}

// splitRoutable partitions places into those with valid coordinates and
// those without. Coordinate-less places are excluded from route geometry but
// kept for the display order.
func splitRoutable(places []routing.Place) (routable, unroutable []routing.Place) {
	for _, p := range places {
		if p.Point.Valid() && (p.Point.Lat != 0 || p.Point.Lng != 0) {
			routable = append(routable, p)
		} else {
			unroutable = append(unroutable, p)
		}
	}
	return routable, unroutable
}
