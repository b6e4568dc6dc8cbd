package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	// routesAPIURL is the Google Routes API v2 endpoint.
	routesAPIURL = "https://routes.googleapis.com/directions/v2:computeRoutes"

	// googleTimeout is the maximum duration for a Google API call.
	googleTimeout = 5 * time.Second

	// DefaultTransitIntermediates is the intermediate count at which the
	// Routes API is asked for TRANSIT instead of DRIVE. Observed provider
	// tuning, hence configurable on the client rather than hard-coded.
	DefaultTransitIntermediates = 2

	// httpMaxIdleConns is the maximum number of idle (keep-alive) connections
	// kept in the transport pool across all hosts.
	httpMaxIdleConns = 10

	// httpIdleConnTimeout is how long an idle connection is kept in the pool
	// before being closed. 30 s is a safe value for APIs that enforce shorter
	// server-side keep-alive timeouts.
	httpIdleConnTimeout = 30 * time.Second
)

// GoogleClient implements DirectionsClient using the Google Routes API v2.
// One call covers origin, destination, and all intermediate points; the
// Routes API intermediate limit is far above realistic itinerary sizes, so
// no segmentation is needed on this side.
type GoogleClient struct {
	apiKey     string
	httpClient *http.Client
	// apiURL is the Google Routes API endpoint. Overrideable in tests.
	apiURL string

	// transitIntermediates selects the intermediate count that switches the
	// travel mode to TRANSIT. Negative disables the switch entirely.
	transitIntermediates int
}

// NewGoogleClient creates a DirectionsClient backed by the Google Routes API
// v2. apiKey must be a Google Cloud API key with the Routes API enabled.
func NewGoogleClient(apiKey string) *GoogleClient {
	transport := &http.Transport{
		MaxIdleConns:        httpMaxIdleConns,
		MaxIdleConnsPerHost: httpMaxIdleConns,
		IdleConnTimeout:     httpIdleConnTimeout,
	}
	return &GoogleClient{
		apiKey:               apiKey,
		apiURL:               routesAPIURL,
		transitIntermediates: DefaultTransitIntermediates,
		httpClient: &http.Client{
			Timeout:   googleTimeout,
			Transport: transport,
		},
	}
}

// WithTransitIntermediates overrides the intermediate count that triggers
// TRANSIT mode. Pass a negative value to always request DRIVE.
func (g *GoogleClient) WithTransitIntermediates(n int) *GoogleClient {
	g.transitIntermediates = n
	return g
}

// FetchRoute satisfies DirectionsClient.
//
// On any API failure the whole route falls back to straight lines through
// the sequenced places with Degraded set; only a missing key or a malformed
// request surfaces as an error.
func (g *GoogleClient) FetchRoute(ctx context.Context, places []Place) (*RouteResult, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("routing: google: %w", ErrMissingAPIKey)
	}
	if len(places) < 2 {
		return nil, ErrTooFewPlaces
	}

	res, err := g.callAPI(ctx, places)
	if err != nil {
		log.Printf("routing: google: API error (using straight-line fallback): %v", err)
		return &RouteResult{
			Path:     straightLinePath(places),
			Provider: ProviderGoogle,
			Degraded: true,
		}, nil
	}
	return res, nil
}

// travelMode picks the mode for the request. TRANSIT is requested only at
// the configured intermediate count; everything else drives.
func (g *GoogleClient) travelMode(intermediates int) string {
	if g.transitIntermediates >= 0 && intermediates == g.transitIntermediates {
		return "TRANSIT"
	}
	return "DRIVE"
}

// callAPI performs the actual HTTP call to the Google Routes API v2.
func (g *GoogleClient) callAPI(ctx context.Context, places []Place) (*RouteResult, error) {
	origin := places[0]
	destination := places[len(places)-1]
	intermediates := make([]routesAPIWaypoint, 0, len(places)-2)
	for _, p := range places[1 : len(places)-1] {
		intermediates = append(intermediates, newRoutesAPIWaypoint(p))
	}

	body := routesAPIRequest{
		Origin:        newRoutesAPIWaypoint(origin),
		Destination:   newRoutesAPIWaypoint(destination),
		Intermediates: intermediates,
		TravelMode:    g.travelMode(len(intermediates)),
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, googleTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, g.apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", g.apiKey)
	// Request only the fields we need to minimize response size and latency.
	httpReq.Header.Set("X-Goog-FieldMask", "routes.duration,routes.distanceMeters,routes.polyline.encodedPolyline,routes.legs")

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", httpResp.StatusCode, string(respBytes))
	}

	var apiResp routesAPIResponse
	if err := json.Unmarshal(respBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(apiResp.Routes) == 0 {
		return nil, fmt.Errorf("no routes returned")
	}

	route := apiResp.Routes[0]

	path := extractStepsPath(route.Legs)
	if len(path) == 0 {
		// No per-step detail in the response; decode the route-level polyline.
		path = DecodePolyline(route.Polyline.EncodedPolyline)
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("empty path in response")
	}

	// Google returns the duration as e.g. "123s".
	durationS, err := parseDurationSeconds(route.Duration)
	if err != nil {
		return nil, fmt.Errorf("parse duration %q: %w", route.Duration, err)
	}

	return &RouteResult{
		Path:            path,
		DurationSeconds: durationS,
		DistanceMeters:  route.DistanceMeters,
		Provider:        ProviderGoogle,
	}, nil
}

// extractStepsPath decodes every leg's steps in order into one flat path.
func extractStepsPath(legs []routesAPILeg) []GeoPoint {
	var path []GeoPoint
	for _, leg := range legs {
		for _, step := range leg.Steps {
			path = append(path, DecodePolyline(step.Polyline.EncodedPolyline)...)
		}
	}
	return path
}

// parseDurationSeconds parses a Google duration string like "123s" into an
// integer second count.
func parseDurationSeconds(s string) (int, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("empty duration string")
	}
	if s[len(s)-1] != 's' {
		return 0, fmt.Errorf("expected duration ending in 's', got %q", s)
	}
	numStr := s[:len(s)-1]
	if len(numStr) == 0 {
		return 0, fmt.Errorf("no number before 's' in %q", s)
	}
	// Reject floats and other non-integer strings.
	for _, ch := range numStr {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("non-integer duration %q", s)
		}
	}
	var seconds int
	if _, err := fmt.Sscanf(numStr, "%d", &seconds); err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return seconds, nil
}

// --- JSON types for the Google Routes API v2 ---

type routesAPIRequest struct {
	Origin        routesAPIWaypoint   `json:"origin"`
	Destination   routesAPIWaypoint   `json:"destination"`
	Intermediates []routesAPIWaypoint `json:"intermediates,omitempty"`
	TravelMode    string              `json:"travelMode"`
}

type routesAPIWaypoint struct {
	PlaceID  string             `json:"placeId,omitempty"`
	Location *routesAPILocation `json:"location,omitempty"`
}

// newRoutesAPIWaypoint prefers a resolved place id over raw coordinates —
// id-based waypoints snap to the venue entrance rather than the rooftop
// coordinate.
func newRoutesAPIWaypoint(p Place) routesAPIWaypoint {
	if p.ResolvedID != "" {
		return routesAPIWaypoint{PlaceID: p.ResolvedID}
	}
	return routesAPIWaypoint{
		Location: &routesAPILocation{
			LatLng: routesAPILatLng{Latitude: p.Point.Lat, Longitude: p.Point.Lng},
		},
	}
}

type routesAPILocation struct {
	LatLng routesAPILatLng `json:"latLng"`
}

type routesAPILatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type routesAPIResponse struct {
	Routes []routesAPIRoute `json:"routes"`
}

type routesAPIRoute struct {
	DistanceMeters int               `json:"distanceMeters"`
	Duration       string            `json:"duration"`
	Polyline       routesAPIPolyline `json:"polyline"`
	Legs           []routesAPILeg    `json:"legs"`
}

type routesAPIPolyline struct {
	EncodedPolyline string `json:"encodedPolyline"`
}

type routesAPILeg struct {
	Steps []routesAPIStep `json:"steps"`
}

type routesAPIStep struct {
	Polyline routesAPIPolyline `json:"polyline"`
}
