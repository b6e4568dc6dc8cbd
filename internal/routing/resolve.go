package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	// placesSearchTextURL is the Google Places API (New) text search endpoint.
	placesSearchTextURL = "https://places.googleapis.com/v1/places:searchText"

	// resolveTimeout bounds a single place-id lookup.
	resolveTimeout = 3 * time.Second

	// resolveBiasRadiusM is the location-bias circle radius for text search.
	resolveBiasRadiusM = 5000.0
)

// PlaceResolver turns a fuzzy place name into a provider-specific location
// id for higher-quality routing.
//
// Resolution is strictly best-effort: a miss or a lookup error yields an
// empty id and a nil error, and callers proceed with raw coordinates. A
// failed name lookup must never sink the whole route.
type PlaceResolver interface {
	Resolve(ctx context.Context, query, locality string, bias GeoPoint) (string, error)
}

// resolveQuery joins the locality and name the way the search providers
// expect ("Seoul Gyeongbokgung").
func resolveQuery(query, locality string) string {
	return strings.TrimSpace(strings.TrimSpace(locality) + " " + strings.TrimSpace(query))
}

// --- Google Places text search ---

// GoogleResolver resolves place names through the Places API text search.
type GoogleResolver struct {
	apiKey     string
	httpClient *http.Client
	apiURL     string
}

// NewGoogleResolver creates a PlaceResolver backed by Google Places.
func NewGoogleResolver(apiKey string) *GoogleResolver {
	return &GoogleResolver{
		apiKey:     apiKey,
		apiURL:     placesSearchTextURL,
		httpClient: &http.Client{Timeout: resolveTimeout},
	}
}

// Resolve looks up the best-matching Google place id near the bias point.
func (r *GoogleResolver) Resolve(ctx context.Context, query, locality string, bias GeoPoint) (string, error) {
	if r.apiKey == "" {
		return "", nil
	}

	body := placesSearchRequest{
		TextQuery: resolveQuery(query, locality),
		LocationBias: &placesLocationBias{
			Circle: placesCircle{
				Center: routesAPILatLng{Latitude: bias.Lat, Longitude: bias.Lng},
				Radius: resolveBiasRadiusM,
			},
		},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, r.apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", r.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", "places.id")

	httpResp, err := r.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("routing: resolve: google lookup %q failed (using raw coordinates): %v", query, err)
		return "", nil
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		log.Printf("routing: resolve: google lookup %q status %d: %s", query, httpResp.StatusCode, body)
		return "", nil
	}

	var apiResp placesSearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&apiResp); err != nil {
		return "", nil
	}
	if len(apiResp.Places) == 0 {
		return "", nil
	}
	return apiResp.Places[0].ID, nil
}

type placesSearchRequest struct {
	TextQuery    string              `json:"textQuery"`
	LocationBias *placesLocationBias `json:"locationBias,omitempty"`
}

type placesLocationBias struct {
	Circle placesCircle `json:"circle"`
}

type placesCircle struct {
	Center routesAPILatLng `json:"center"`
	Radius float64         `json:"radius"`
}

type placesSearchResponse struct {
	Places []placesSearchResult `json:"places"`
}

type placesSearchResult struct {
	ID string `json:"id"`
}
