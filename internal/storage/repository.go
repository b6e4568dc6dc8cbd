// Package storage provides PostgreSQL-backed repository implementations.
package storage

import (
	"context"
	"time"
)

// PlaceRecord is a candidate travel destination as stored in the places
// table. Lat/Lng are pointers because imported records occasionally lack
// coordinates; such places are excluded from route geometry but still appear
// at the end of a trip's display order.
type PlaceRecord struct {
	ID          string
	Name        string
	Location    string
	Country     string
	Description string
	ImageURL    string
	Rating      float64
	ReviewCount int32
	Tags        []string
	Lat         *float64
	Lng         *float64
	CreatedAt   time.Time
}

// HasPoint reports whether the record carries usable coordinates.
func (p *PlaceRecord) HasPoint() bool {
	return p.Lat != nil && p.Lng != nil
}

// Swipe actions recorded per user and place.
const (
	SwipeLike      = "like"
	SwipePass      = "pass"
	SwipeSuperlike = "superlike"
)

// Trip is a saved itinerary owned by one user.
type Trip struct {
	ID        string
	UserID    string
	Title     string
	Status    string // "draft" or "published"
	CreatedAt time.Time
}

// TripItem is one ordered stop of a trip.
type TripItem struct {
	ID       int32
	TripID   string
	PlaceID  string
	Position int32
	Notes    string
}

// TripItemDetail joins a trip item with its place for display.
type TripItemDetail struct {
	TripItem
	Place PlaceRecord
}

// ItemPosition is a (trip item id, new position) pair for manual reordering.
type ItemPosition struct {
	ItemID   int32
	Position int32
}

// PlacesRepository defines read operations on the places table.
type PlacesRepository interface {
	// ListUnswiped returns up to limit places the user has not swiped yet,
	// newest first. This feeds the swipe deck.
	ListUnswiped(ctx context.Context, userID string, limit int) ([]PlaceRecord, error)

	// GetPlace returns a single place by ID, or (nil, nil) if not found.
	GetPlace(ctx context.Context, id string) (*PlaceRecord, error)
}

// SwipesRepository defines operations on the user_swipes table.
type SwipesRepository interface {
	// CreateSwipe records one swipe decision.
	CreateSwipe(ctx context.Context, userID, placeID, action string) error

	// ListLikedPlaces returns the places the user has liked, most recent
	// like first.
	ListLikedPlaces(ctx context.Context, userID string) ([]PlaceRecord, error)

	// ClearLikes removes the user's like records, typically after they have
	// been consumed into a trip.
	ClearLikes(ctx context.Context, userID string) error
}

// TripsRepository defines operations on the trips and trip_items tables.
type TripsRepository interface {
	// CreateTripWithItems inserts the trip and its ordered items in one
	// transaction. Item positions follow the order of placeIDs, starting at 1.
	CreateTripWithItems(ctx context.Context, trip *Trip, placeIDs []string) error

	// ListTrips returns the user's trips, newest first.
	ListTrips(ctx context.Context, userID string) ([]Trip, error)

	// GetTrip returns a trip by ID, or (nil, nil) if not found.
	GetTrip(ctx context.Context, id string) (*Trip, error)

	// ListTripItems returns the trip's items joined with their places,
	// ordered by position.
	ListTripItems(ctx context.Context, tripID string) ([]TripItemDetail, error)

	// UpdateItemPositions applies a manual reorder to the trip's items.
	UpdateItemPositions(ctx context.Context, tripID string, items []ItemPosition) error
}
