package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// kakaoAPIURL is the Kakao Mobility directions endpoint.
	kakaoAPIURL = "https://apis-navi.kakaomobility.com/v1/directions"

	// kakaoTimeout is the maximum duration for one Kakao API call.
	kakaoTimeout = 5 * time.Second

	// kakaoMaxPoints is the maximum number of points per Kakao request:
	// 1 origin + 5 waypoints + 1 destination.
	kakaoMaxPoints = 7
)

// KakaoClient implements DirectionsClient using the Kakao Mobility
// directions API.
//
// Kakao caps each request at kakaoMaxPoints points, so longer itineraries
// are partitioned into overlapping segments (the destination of segment i is
// the origin of segment i+1). Segment calls run concurrently and are merged
// back in segment order, which bounds end-to-end latency to the slowest
// single segment.
type KakaoClient struct {
	apiKey     string
	httpClient *http.Client
	// apiURL is the directions endpoint. Overrideable in tests.
	apiURL string
}

// NewKakaoClient creates a DirectionsClient backed by the Kakao Mobility API.
// apiKey must be a Kakao REST API key.
func NewKakaoClient(apiKey string) *KakaoClient {
	transport := &http.Transport{
		MaxIdleConns:        httpMaxIdleConns,
		MaxIdleConnsPerHost: httpMaxIdleConns,
		IdleConnTimeout:     httpIdleConnTimeout,
	}
	return &KakaoClient{
		apiKey: apiKey,
		apiURL: kakaoAPIURL,
		httpClient: &http.Client{
			Timeout:   kakaoTimeout,
			Transport: transport,
		},
	}
}

// segmentResult is the outcome of one segment fetch, indexed by segment
// position so merging never depends on completion order.
type segmentResult struct {
	path     []GeoPoint
	duration int
	distance int
	ok       bool
}

// FetchRoute satisfies DirectionsClient.
//
// Each segment that fails (network error, non-200, no routes, empty path)
// degrades to a straight line between its own origin and destination and
// contributes zero duration/distance; one segment's failure never aborts the
// others.
func (k *KakaoClient) FetchRoute(ctx context.Context, places []Place) (*RouteResult, error) {
	if k.apiKey == "" {
		return nil, fmt.Errorf("routing: kakao: %w", ErrMissingAPIKey)
	}
	if len(places) < 2 {
		return nil, ErrTooFewPlaces
	}

	segments := segmentPlaces(places, kakaoMaxPoints)

	// Fan out: segments are independent network calls. Each goroutine writes
	// only its own slot, so no synchronization beyond the WaitGroup is needed.
	results := make([]segmentResult, len(segments))
	var wg sync.WaitGroup
	for i, seg := range segments {
		wg.Add(1)
		go func(i int, seg []Place) {
			defer wg.Done()
			results[i] = k.fetchSegment(ctx, i, seg)
		}(i, seg)
	}
	wg.Wait()

	return mergeSegments(results), nil
}

// segmentPlaces partitions an ordered place list into chunks of up to
// maxPoints points where consecutive chunks share exactly one boundary point.
func segmentPlaces(places []Place, maxPoints int) [][]Place {
	var segments [][]Place
	for i := 0; i < len(places)-1; i += maxPoints - 1 {
		end := i + maxPoints
		if end > len(places) {
			end = len(places)
		}
		chunk := places[i:end]
		if len(chunk) < 2 {
			break
		}
		segments = append(segments, chunk)
	}
	return segments
}

// mergeSegments concatenates segment paths in segment order. Every segment
// after the first drops its leading point — it duplicates the previous
// segment's last point at the shared boundary. Duration and distance sum
// over successful segments only.
func mergeSegments(results []segmentResult) *RouteResult {
	merged := &RouteResult{Provider: ProviderKakao}
	for i, res := range results {
		if i == 0 {
			merged.Path = append(merged.Path, res.path...)
		} else {
			merged.Path = append(merged.Path, res.path[1:]...)
		}
		merged.DurationSeconds += res.duration
		merged.DistanceMeters += res.distance
		if !res.ok {
			merged.Degraded = true
		}
	}
	return merged
}

// fetchSegment fetches one segment's road path. On any failure it logs and
// substitutes a 2-point straight line so the merged route stays continuous.
func (k *KakaoClient) fetchSegment(ctx context.Context, index int, seg []Place) segmentResult {
	res, err := k.callSegment(ctx, index, seg)
	if err != nil {
		log.Printf("routing: kakao: segment %d failed (using straight-line fallback): %v", index, err)
		return segmentResult{
			path: []GeoPoint{seg[0].Point, seg[len(seg)-1].Point},
		}
	}
	return *res
}

// callSegment performs the HTTP call for one segment and parses the nested
// sections/roads/vertexes structure into a flat path.
func (k *KakaoClient) callSegment(ctx context.Context, index int, seg []Place) (*segmentResult, error) {
	origin := seg[0]
	destination := seg[len(seg)-1]

	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f,name=P%d", origin.Point.Lng, origin.Point.Lat, index))
	params.Set("destination", fmt.Sprintf("%f,%f,name=P%d", destination.Point.Lng, destination.Point.Lat, index+1))
	params.Set("priority", "RECOMMEND")

	if len(seg) > 2 {
		waypoints := make([]string, 0, len(seg)-2)
		for _, w := range seg[1 : len(seg)-1] {
			waypoints = append(waypoints, fmt.Sprintf("%f,%f", w.Point.Lng, w.Point.Lat))
		}
		params.Set("waypoints", strings.Join(waypoints, "|"))
	}

	reqCtx, cancel := context.WithTimeout(ctx, kakaoTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, k.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "KakaoAK "+k.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := k.httpClient.Do(httpReq)
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

	var apiResp kakaoAPIResponse
	if err := json.Unmarshal(respBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(apiResp.Routes) == 0 {
		return nil, fmt.Errorf("no routes returned")
	}

	route := apiResp.Routes[0]
	path := flattenVertexes(route.Sections)
	if len(path) == 0 {
		return nil, fmt.Errorf("empty path in response")
	}

	return &segmentResult{
		path:     path,
		duration: route.Summary.Duration,
		distance: route.Summary.Distance,
		ok:       true,
	}, nil
}

// flattenVertexes walks sections → roads → vertexes and pairs the flat
// lng,lat value stream (note: longitude first) into GeoPoints.
func flattenVertexes(sections []kakaoAPISection) []GeoPoint {
	var path []GeoPoint
	for _, section := range sections {
		for _, road := range section.Roads {
			for i := 0; i+1 < len(road.Vertexes); i += 2 {
				path = append(path, GeoPoint{
					Lng: road.Vertexes[i],
					Lat: road.Vertexes[i+1],
				})
			}
		}
	}
	return path
}

// --- JSON types for the Kakao directions API ---

type kakaoAPIResponse struct {
	Routes []kakaoAPIRoute `json:"routes"`
}

type kakaoAPIRoute struct {
	Summary  kakaoAPISummary   `json:"summary"`
	Sections []kakaoAPISection `json:"sections"`
}

type kakaoAPISummary struct {
	Duration int `json:"duration"`
	Distance int `json:"distance"`
}

type kakaoAPISection struct {
	Roads []kakaoAPIRoad `json:"roads"`
}

type kakaoAPIRoad struct {
	Vertexes []float64 `json:"vertexes"`
}
