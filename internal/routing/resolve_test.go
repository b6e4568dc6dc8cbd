package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveQuery(t *testing.T) {
	tests := []struct {
		query, locality, want string
	}{
		{"Gyeongbokgung", "Seoul", "Seoul Gyeongbokgung"},
		{"Gyeongbokgung", "", "Gyeongbokgung"},
		{"  Eiffel Tower  ", " Paris ", "Paris Eiffel Tower"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := resolveQuery(tt.query, tt.locality); got != tt.want {
			t.Errorf("resolveQuery(%q, %q) = %q, want %q", tt.query, tt.locality, got, tt.want)
		}
	}
}

func TestGoogleResolver_Success(t *testing.T) {
	var gotBody placesSearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if mask := r.Header.Get("X-Goog-FieldMask"); mask != "places.id" {
			t.Errorf("field mask = %q, want places.id", mask)
		}
		fmt.Fprint(w, `{"places": [{"id": "ChIJod7tSseifDUR9hXHLFNGMIs"}]}`)
	}))
	defer server.Close()

	r := NewGoogleResolver("test-key")
	r.apiURL = server.URL

	id, err := r.Resolve(context.Background(), "Gyeongbokgung", "Seoul", testBias)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "ChIJod7tSseifDUR9hXHLFNGMIs" {
		t.Errorf("id = %q, want the first result's id", id)
	}
	if gotBody.TextQuery != "Seoul Gyeongbokgung" {
		t.Errorf("textQuery = %q, want locality-prefixed query", gotBody.TextQuery)
	}
	if gotBody.LocationBias == nil {
		t.Fatal("request carries no location bias")
	}
	if got := gotBody.LocationBias.Circle.Center.Latitude; got != testBias.Lat {
		t.Errorf("bias latitude = %f, want %f", got, testBias.Lat)
	}
}

func TestGoogleResolver_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"places": []}`)
	}))
	defer server.Close()

	r := NewGoogleResolver("test-key")
	r.apiURL = server.URL

	id, err := r.Resolve(context.Background(), "Nonexistent Venue", "", testBias)
	if err != nil {
		t.Fatalf("a miss must not error, got: %v", err)
	}
	if id != "" {
		t.Errorf("id = %q, want empty on no results", id)
	}
}

func TestGoogleResolver_APIErrorIsSilent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	r := NewGoogleResolver("test-key")
	r.apiURL = server.URL

	id, err := r.Resolve(context.Background(), "Gyeongbokgung", "Seoul", testBias)
	if err != nil {
		t.Fatalf("lookup failures must not error, got: %v", err)
	}
	if id != "" {
		t.Errorf("id = %q, want empty on API error", id)
	}
}

func TestGoogleResolver_MissingKeySkipsLookup(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	r := NewGoogleResolver("")
	r.apiURL = server.URL

	id, err := r.Resolve(context.Background(), "Gyeongbokgung", "Seoul", testBias)
	if err != nil || id != "" {
		t.Errorf("Resolve = (%q, %v), want silent empty result without a key", id, err)
	}
	if called {
		t.Error("HTTP call made despite missing API key")
	}
}
