package handler

import (
	"net/http"
	"strconv"

	"github.com/azerckid/C-Stay-tinder/internal/middleware"
	"github.com/azerckid/C-Stay-tinder/internal/storage"
	"github.com/gin-gonic/gin"
)

// defaultFeedLimit caps the swipe deck size per request.
const defaultFeedLimit = 20

// GetFeed handles GET /api/v1/places/feed
//
// Query params:
//   - limit (optional) int — maximum number of cards, default 20
//
// Returns places the authenticated user has not swiped yet, newest first.
func (h *Handler) GetFeed(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	limit := defaultFeedLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 100"})
			return
		}
		limit = v
	}

	places, err := h.placesRepo.ListUnswiped(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load places"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"places": placesJSON(places)})
}

// GetPlace handles GET /api/v1/places/:id
func (h *Handler) GetPlace(c *gin.Context) {
	place, err := h.placesRepo.GetPlace(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load place"})
		return
	}
	if place == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
		return
	}
	c.JSON(http.StatusOK, placeJSON(*place))
}

// placeJSON shapes one place record for API responses.
func placeJSON(p storage.PlaceRecord) gin.H {
	out := gin.H{
		"id":           p.ID,
		"name":         p.Name,
		"location":     p.Location,
		"country":      p.Country,
		"description":  p.Description,
		"image_url":    p.ImageURL,
		"rating":       p.Rating,
		"review_count": p.ReviewCount,
		"tags":         p.Tags,
	}
	if p.HasPoint() {
		out["lat"] = *p.Lat
		out["lng"] = *p.Lng
	}
	return out
}

func placesJSON(places []storage.PlaceRecord) []gin.H {
	out := make([]gin.H, len(places))
	for i, p := range places {
		out[i] = placeJSON(p)
	}
	return out
}
