package routing

import (
	"math"
	"testing"
)

func TestDecodePolyline_KnownVector(t *testing.T) {
	// Reference example from the Encoded Polyline Algorithm Format docs.
	got := DecodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	want := []GeoPoint{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}

	if len(got) != len(want) {
		t.Fatalf("decoded %d points, want %d", len(got), len(want))
	}
	for i := range want {
		if !closePoint(got[i], want[i]) {
			t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDecodePolyline_Empty(t *testing.T) {
	if got := DecodePolyline(""); len(got) != 0 {
		t.Errorf("decoded %d points from empty string, want 0", len(got))
	}
}

func TestDecodePolyline_TruncatedInput(t *testing.T) {
	full := "_p~iF~ps|U_ulLnnqC"
	// Cut mid-value: the decoder must return the points decoded so far
	// instead of panicking or inventing a partial point.
	for cut := 1; cut < len(full); cut++ {
		got := DecodePolyline(full[:cut])
		if len(got) > 2 {
			t.Errorf("cut=%d decoded %d points, want at most 2", cut, len(got))
		}
	}
}

func TestEncodePolyline_KnownVector(t *testing.T) {
	points := []GeoPoint{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}
	want := "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	if got := EncodePolyline(points); got != want {
		t.Errorf("EncodePolyline = %q, want %q", got, want)
	}
}

func TestEncodePolyline_Empty(t *testing.T) {
	if got := EncodePolyline(nil); got != "" {
		t.Errorf("EncodePolyline(nil) = %q, want empty", got)
	}
}

func TestPolyline_RoundTrip(t *testing.T) {
	paths := [][]GeoPoint{
		{{Lat: 37.5665, Lng: 126.978}},
		{{Lat: 37.5665, Lng: 126.978}, {Lat: 35.1796, Lng: 129.0756}},
		{{Lat: -33.86785, Lng: 151.20732}, {Lat: 0, Lng: 0}, {Lat: 64.14648, Lng: -21.94241}},
		{{Lat: 37.56651, Lng: 126.97801}, {Lat: 37.56652, Lng: 126.97802}}, // 1e-5 deltas
	}

	for _, path := range paths {
		got := DecodePolyline(EncodePolyline(path))
		if len(got) != len(path) {
			t.Fatalf("round trip of %d points returned %d", len(path), len(got))
		}
		for i := range path {
			if !closePoint(got[i], path[i]) {
				t.Errorf("round trip point %d = %+v, want %+v", i, got[i], path[i])
			}
		}
	}
}

// closePoint compares coordinates within the codec's 1e-5 quantization.
func closePoint(a, b GeoPoint) bool {
	const tol = 1e-5
	return math.Abs(a.Lat-b.Lat) < tol && math.Abs(a.Lng-b.Lng) < tol
}
