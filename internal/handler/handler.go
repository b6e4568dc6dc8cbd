// Package handler contains the gin HTTP handlers for the API surface.
package handler

import (
	"github.com/azerckid/C-Stay-tinder/internal/service"
	"github.com/azerckid/C-Stay-tinder/internal/storage"
)

// Handler holds the domain dependencies for all HTTP handlers.
// A single Handler is shared across all route groups; individual methods are
// registered as gin handler functions.
type Handler struct {
	placesRepo       storage.PlacesRepository
	swipesRepo       storage.SwipesRepository
	itineraryService *service.ItineraryService
	tripService      *service.TripService
}

// New creates a Handler with the given dependencies.
func New(
	placesRepo storage.PlacesRepository,
	swipesRepo storage.SwipesRepository,
	itineraryService *service.ItineraryService,
	tripService *service.TripService,
) *Handler {
	return &Handler{
		placesRepo:       placesRepo,
		swipesRepo:       swipesRepo,
		itineraryService: itineraryService,
		tripService:      tripService,
	}
}
