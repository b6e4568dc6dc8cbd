package handler

import (
	"errors"
	"net/http"

	"github.com/azerckid/C-Stay-tinder/internal/middleware"
	"github.com/azerckid/C-Stay-tinder/internal/service"
	"github.com/azerckid/C-Stay-tinder/internal/storage"
	"github.com/gin-gonic/gin"
)

// CreateTrip handles POST /api/v1/trips
//
// Builds a trip from the user's liked places: routable places are sequenced
// with the nearest-neighbor heuristic, coordinate-less ones are appended at
// the end, and the consumed likes are cleared.
//
// Response 200: {"success": true, "trip_id": "..."}
// Response 400: the user has no liked places.
func (h *Handler) CreateTrip(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	trip, err := h.tripService.CreateFromLikes(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoLikedPlaces) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no liked places found"})
			return
		}
		if trip != nil {
			// Trip was created but cleanup failed; still a success for the caller.
			c.JSON(http.StatusOK, gin.H{"success": true, "trip_id": trip.ID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create trip"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "trip_id": trip.ID})
}

// ListTrips handles GET /api/v1/trips
func (h *Handler) ListTrips(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	trips, err := h.tripService.ListTrips(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trips"})
		return
	}

	out := make([]gin.H, len(trips))
	for i, t := range trips {
		out[i] = gin.H{
			"id":         t.ID,
			"title":      t.Title,
			"status":     t.Status,
			"created_at": t.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"trips": out})
}

// GetTrip handles GET /api/v1/trips/:id
//
// Returns the trip with its items ordered by position, each item joined with
// its place.
func (h *Handler) GetTrip(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	trip, items, err := h.tripService.GetTrip(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeTripError(c, err)
		return
	}

	itemsOut := make([]gin.H, len(items))
	for i, item := range items {
		itemsOut[i] = gin.H{
			"id":       item.ID,
			"position": item.Position,
			"notes":    item.Notes,
			"place":    placeJSON(item.Place),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         trip.ID,
		"title":      trip.Title,
		"status":     trip.Status,
		"created_at": trip.CreatedAt,
		"items":      itemsOut,
	})
}

// reorderRequest is the expected body for PUT /api/v1/trips/:id/reorder.
type reorderRequest struct {
	Items []struct {
		ID       int32 `json:"id" binding:"required"`
		Position int32 `json:"position" binding:"required"`
	} `json:"items" binding:"required"`
}

// ReorderTrip handles PUT /api/v1/trips/:id/reorder
//
// Applies a manual position override to the trip's items, e.g. after the
// user drags stops around on the itinerary screen.
func (h *Handler) ReorderTrip(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items array is required"})
		return
	}

	items := make([]storage.ItemPosition, len(req.Items))
	for i, item := range req.Items {
		items[i] = storage.ItemPosition{ItemID: item.ID, Position: item.Position}
	}

	if err := h.tripService.Reorder(c.Request.Context(), userID, c.Param("id"), items); err != nil {
		writeTripError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// writeTripError maps trip service errors to HTTP responses.
func writeTripError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTripNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
	case errors.Is(err, service.ErrNotTripOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "trip belongs to another user"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "trip operation failed"})
	}
}
