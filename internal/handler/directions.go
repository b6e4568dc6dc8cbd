package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/azerckid/C-Stay-tinder/internal/routing"
	"github.com/azerckid/C-Stay-tinder/internal/service"
	"github.com/gin-gonic/gin"
)

// directionsRequest is the expected body for POST /api/v1/directions.
type directionsRequest struct {
	Places []directionsPlace `json:"places" binding:"required"`
}

type directionsPlace struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

// GetDirections handles POST /api/v1/directions
//
// Request body:
//
//	{"places": [{"lat": 37.5665, "lng": 126.9780}, {"lat": 37.5512, "lng": 126.9882}]}
//
// Response 200:
//
//	{"routes": [{"duration": "1234s", "distanceMeters": 8200,
//	             "path": [{"lat": ..., "lng": ...}, ...],
//	             "provider": "kakao", "degraded": false}],
//	 "bounds": {"min_lat": ..., "min_lng": ..., "max_lat": ..., "max_lng": ...}}
//
// Response 400: fewer than 2 places with usable coordinates.
// Response 500: missing provider credential or unexpected internal failure,
// with a JSON {"error": ..., "details": ...} body.
//
// A degraded route is still a 200: part (or all) of the path is straight-line
// interpolation and duration/distance cover the resolved portion only. The
// caller decides whether to retry — degradation is data, not an error.
func (h *Handler) GetDirections(c *gin.Context) {
	var req directionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "places array is required"})
		return
	}

	places := make([]routing.Place, len(req.Places))
	for i, p := range req.Places {
		places[i] = routing.Place{
			ID:       p.ID,
			Name:     p.Name,
			Location: p.Location,
			Point:    routing.GeoPoint{Lat: p.Lat, Lng: p.Lng},
		}
	}

	itinerary, err := h.itineraryService.ComputeItinerary(c.Request.Context(), places)
	if err != nil {
		if errors.Is(err, service.ErrTooFewPlaces) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at least 2 places are required"})
			return
		}
		if errors.Is(err, routing.ErrMissingAPIKey) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "configuration error: missing provider API key",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch directions", "details": err.Error()})
		return
	}

	route := itinerary.Route
	c.JSON(http.StatusOK, gin.H{
		"routes": []gin.H{{
			"duration":       fmt.Sprintf("%ds", route.DurationSeconds),
			"distanceMeters": route.DistanceMeters,
			"path":           route.Path,
			"provider":       route.Provider,
			"degraded":       route.Degraded,
		}},
		"bounds": gin.H{
			"min_lat": itinerary.Bounds.MinLat,
			"min_lng": itinerary.Bounds.MinLng,
			"max_lat": itinerary.Bounds.MaxLat,
			"max_lng": itinerary.Bounds.MaxLng,
		},
	})
}
