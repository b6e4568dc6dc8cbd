package routing

import "strings"

// polylinePrecision is the coordinate scale of Google's Encoded Polyline
// Algorithm Format: 5 decimal places.
const polylinePrecision = 1e5

// DecodePolyline converts an encoded polyline string into coordinates.
// The format is a base64-like character stream of 5-bit chunks carrying
// zig-zag-encoded lat/lng deltas at 1e-5 precision.
func DecodePolyline(encoded string) []GeoPoint {
	var points []GeoPoint
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		dLat, next, ok := decodeChunk(encoded, index)
		if !ok {
			return points
		}
		lat += dLat

		dLng, next2, ok := decodeChunk(encoded, next)
		if !ok {
			return points
		}
		lng += dLng
		index = next2

		points = append(points, GeoPoint{
			Lat: float64(lat) / polylinePrecision,
			Lng: float64(lng) / polylinePrecision,
		})
	}
	return points
}

// decodeChunk reads one varint-style value starting at index and returns the
// zig-zag-decoded delta plus the next read position. ok is false when the
// string ends mid-value (truncated input).
func decodeChunk(encoded string, index int) (delta, next int, ok bool) {
	shift, result := 0, 0
	for {
		if index >= len(encoded) {
			return 0, 0, false
		}
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), index, true
	}
	return result >> 1, index, true
}

// EncodePolyline is the inverse of DecodePolyline. Coordinates are rounded
// to 1e-5 before delta encoding, so decode(encode(points)) matches the input
// within that tolerance.
func EncodePolyline(points []GeoPoint) string {
	var sb strings.Builder
	prevLat, prevLng := 0, 0

	for _, p := range points {
		lat := roundE5(p.Lat)
		lng := roundE5(p.Lng)
		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return sb.String()
}

func roundE5(v float64) int {
	if v < 0 {
		return int(v*polylinePrecision - 0.5)
	}
	return int(v*polylinePrecision + 0.5)
}

func encodeValue(sb *strings.Builder, v int) {
	// Zig-zag: left shift, invert when negative.
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		sb.WriteByte(byte((0x20 | (u & 0x1f)) + 63))
		u >>= 5
	}
	sb.WriteByte(byte(u + 63))
}
