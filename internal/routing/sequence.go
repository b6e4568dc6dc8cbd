package routing

import "math"

// Sequence orders places into a visiting sequence using a greedy
// nearest-neighbor heuristic: the first input place is fixed as the anchor
// (it represents the current location or the first-liked place) and each
// following stop is the closest unvisited place by great-circle distance.
//
// The output is always a permutation of the input. Lists of two or fewer
// places are returned unchanged. Equidistant candidates resolve to the one
// appearing earlier in the remaining input order, so the result is
// deterministic.
//
// This is O(n²) and deliberately not an optimal TSP solve — itineraries are
// small (≤ ~30 places) and the heuristic's suboptimality is an accepted
// limitation.
func Sequence(places []Place) []Place {
	if len(places) <= 2 {
		return places
	}

	unvisited := make([]Place, len(places)-1)
	copy(unvisited, places[1:])

	ordered := make([]Place, 0, len(places))
	current := places[0]
	ordered = append(ordered, current)

	for len(unvisited) > 0 {
		nearest := 0
		minDist := math.Inf(1)
		for i, candidate := range unvisited {
			if d := HaversineMeters(current.Point, candidate.Point); d < minDist {
				minDist = d
				nearest = i
			}
		}
		current = unvisited[nearest]
		ordered = append(ordered, current)
		unvisited = append(unvisited[:nearest], unvisited[nearest+1:]...)
	}

	return ordered
}

// HaversineMeters computes the great-circle distance in meters between two
// WGS-84 points over a spherical earth model.
func HaversineMeters(a, b GeoPoint) float64 {
	const earthRadiusM = 6_371_000.0
	const deg2rad = math.Pi / 180.0

	dLat := (b.Lat - a.Lat) * deg2rad
	dLng := (b.Lng - a.Lng) * deg2rad
	lat1 := a.Lat * deg2rad
	lat2 := b.Lat * deg2rad

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusM * c
}
