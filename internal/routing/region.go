package routing

// Korea bounding box covering the mainland plus the major outlying islands
// (Jeju, Ulleungdo, Dokdo).
const (
	koreaMinLat = 33.0
	koreaMaxLat = 39.0
	koreaMinLng = 124.0
	koreaMaxLng = 132.0
)

// DefaultDomesticRatio is the fraction of in-region points required before an
// itinerary is routed through the domestic provider. The value is an
// empirical tuning, not a semantic requirement, so it lives in RegionPolicy
// rather than being hard-coded at the call site.
const DefaultDomesticRatio = 0.7

// IsKoreanRegion reports whether a point falls inside the South Korea
// bounding box.
func IsKoreanRegion(p GeoPoint) bool {
	return p.Lat >= koreaMinLat && p.Lat <= koreaMaxLat &&
		p.Lng >= koreaMinLng && p.Lng <= koreaMaxLng
}

// RegionPolicy decides which provider serves a set of points.
type RegionPolicy struct {
	// DomesticRatio is the minimum fraction of points inside Korea for the
	// itinerary to count as domestic. Zero value falls back to
	// DefaultDomesticRatio.
	DomesticRatio float64
}

// Classify returns ProviderKakao when at least DomesticRatio of the points
// lie inside Korea, ProviderGoogle otherwise. An empty input classifies as
// ProviderGoogle, the safe worldwide default.
func (rp RegionPolicy) Classify(points []GeoPoint) Provider {
	if len(points) == 0 {
		return ProviderGoogle
	}

	ratio := rp.DomesticRatio
	if ratio == 0 {
		ratio = DefaultDomesticRatio
	}

	inRegion := 0
	for _, p := range points {
		if IsKoreanRegion(p) {
			inRegion++
		}
	}

	if float64(inRegion)/float64(len(points)) >= ratio {
		return ProviderKakao
	}
	return ProviderGoogle
}
