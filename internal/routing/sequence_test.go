package routing

import (
	"math"
	"testing"
)

func TestHaversineMeters_Zero(t *testing.T) {
	p := GeoPoint{Lat: 37.5665, Lng: 126.9780}
	if d := HaversineMeters(p, p); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}
}

func TestHaversineMeters_Symmetric(t *testing.T) {
	a := GeoPoint{Lat: 37.5665, Lng: 126.9780}
	b := GeoPoint{Lat: 35.1796, Lng: 129.0756}
	if d1, d2 := HaversineMeters(a, b), HaversineMeters(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("asymmetric distances: %f vs %f", d1, d2)
	}
}

func TestHaversineMeters_KnownDistance(t *testing.T) {
	// Seoul City Hall to Busan Station is roughly 325 km great-circle.
	seoul := GeoPoint{Lat: 37.5665, Lng: 126.9780}
	busan := GeoPoint{Lat: 35.1151, Lng: 129.0403}

	d := HaversineMeters(seoul, busan)
	if d < 315_000 || d > 335_000 {
		t.Errorf("Seoul-Busan distance = %.0f m, want ~325 km", d)
	}
}

func TestSequence_TwoOrFewerUnchanged(t *testing.T) {
	two := []Place{
		{ID: "a", Point: GeoPoint{Lat: 37.57, Lng: 126.98}},
		{ID: "b", Point: GeoPoint{Lat: 37.55, Lng: 126.99}},
	}
	got := Sequence(two)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("Sequence of 2 reordered: %v", ids(got))
	}

	one := []Place{{ID: "a"}}
	if got := Sequence(one); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Sequence of 1 changed: %v", ids(got))
	}

	if got := Sequence(nil); len(got) != 0 {
		t.Errorf("Sequence(nil) = %v, want empty", ids(got))
	}
}

func TestSequence_AnchorFixed(t *testing.T) {
	places := []Place{
		{ID: "anchor", Point: GeoPoint{Lat: 37.5665, Lng: 126.9780}},
		{ID: "far", Point: GeoPoint{Lat: 35.1796, Lng: 129.0756}},
		{ID: "near", Point: GeoPoint{Lat: 37.5512, Lng: 126.9882}},
	}
	got := Sequence(places)
	if got[0].ID != "anchor" {
		t.Errorf("first place = %q, want anchor preserved", got[0].ID)
	}
	if got[1].ID != "near" {
		t.Errorf("second place = %q, want the nearest neighbor %q", got[1].ID, "near")
	}
}

func TestSequence_GreedyNearestNeighbor(t *testing.T) {
	// Four points on a line of longitude; input deliberately shuffled.
	// Greedy from the westmost anchor must walk east in order.
	places := []Place{
		{ID: "p0", Point: GeoPoint{Lat: 37.5, Lng: 127.00}},
		{ID: "p3", Point: GeoPoint{Lat: 37.5, Lng: 127.30}},
		{ID: "p1", Point: GeoPoint{Lat: 37.5, Lng: 127.10}},
		{ID: "p2", Point: GeoPoint{Lat: 37.5, Lng: 127.20}},
	}
	got := Sequence(places)
	want := []string{"p0", "p1", "p2", "p3"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("order = %v, want %v", ids(got), want)
		}
	}
}

func TestSequence_IsPermutation(t *testing.T) {
	places := []Place{
		{ID: "a", Point: GeoPoint{Lat: 37.57, Lng: 126.98}},
		{ID: "b", Point: GeoPoint{Lat: 35.18, Lng: 129.08}},
		{ID: "c", Point: GeoPoint{Lat: 33.50, Lng: 126.53}},
		{ID: "d", Point: GeoPoint{Lat: 37.46, Lng: 126.70}},
		{ID: "e", Point: GeoPoint{Lat: 35.87, Lng: 128.60}},
	}

	got := Sequence(places)
	if len(got) != len(places) {
		t.Fatalf("output length = %d, want %d", len(got), len(places))
	}
	seen := make(map[string]int)
	for _, p := range got {
		seen[p.ID]++
	}
	for _, p := range places {
		if seen[p.ID] != 1 {
			t.Errorf("place %q appears %d times in output", p.ID, seen[p.ID])
		}
	}
}

func TestSequence_Deterministic(t *testing.T) {
	places := []Place{
		{ID: "a", Point: GeoPoint{Lat: 37.57, Lng: 126.98}},
		{ID: "b", Point: GeoPoint{Lat: 35.18, Lng: 129.08}},
		{ID: "c", Point: GeoPoint{Lat: 33.50, Lng: 126.53}},
		{ID: "d", Point: GeoPoint{Lat: 37.46, Lng: 126.70}},
	}

	first := ids(Sequence(places))
	for i := 0; i < 10; i++ {
		if got := ids(Sequence(places)); !equalStrings(got, first) {
			t.Fatalf("run %d produced %v, first run produced %v", i, got, first)
		}
	}
}

func TestSequence_EquidistantPrefersEarlierInput(t *testing.T) {
	// b and c are the same point, so both are equidistant from the anchor.
	// The earlier input entry must win.
	places := []Place{
		{ID: "a", Point: GeoPoint{Lat: 37.50, Lng: 127.00}},
		{ID: "b", Point: GeoPoint{Lat: 37.51, Lng: 127.00}},
		{ID: "c", Point: GeoPoint{Lat: 37.51, Lng: 127.00}},
	}
	got := Sequence(places)
	want := []string{"a", "b", "c"}
	if !equalStrings(ids(got), want) {
		t.Errorf("order = %v, want %v", ids(got), want)
	}
}

func ids(places []Place) []string {
	out := make([]string, len(places))
	for i, p := range places {
		out[i] = p.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
