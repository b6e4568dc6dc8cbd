package handler

import (
	"net/http"

	"github.com/azerckid/C-Stay-tinder/internal/middleware"
	"github.com/azerckid/C-Stay-tinder/internal/storage"
	"github.com/gin-gonic/gin"
)

// swipeRequest is the expected body for POST /api/v1/swipes.
type swipeRequest struct {
	PlaceID string `json:"place_id" binding:"required"`
	Action  string `json:"action" binding:"required"`
}

// CreateSwipe handles POST /api/v1/swipes
//
// Request body:
//
//	{"place_id": "...", "action": "like"}
//
// Action must be one of "like", "pass", "superlike".
func (h *Handler) CreateSwipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "place_id and action are required"})
		return
	}

	switch req.Action {
	case storage.SwipeLike, storage.SwipePass, storage.SwipeSuperlike:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be one of like, pass, superlike"})
		return
	}

	place, err := h.placesRepo.GetPlace(c.Request.Context(), req.PlaceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record swipe"})
		return
	}
	if place == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
		return
	}

	if err := h.swipesRepo.CreateSwipe(c.Request.Context(), userID, req.PlaceID, req.Action); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record swipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
