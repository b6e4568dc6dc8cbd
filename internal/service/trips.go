package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/azerckid/C-Stay-tinder/internal/routing"
	"github.com/azerckid/C-Stay-tinder/internal/storage"
	"github.com/google/uuid"
)

// Sentinel errors for trip operations. Callers use errors.Is to map these to
// HTTP statuses.
var (
	ErrNoLikedPlaces = errors.New("trips: no liked places to build a trip from")
	ErrTripNotFound  = errors.New("trips: trip not found")
	ErrNotTripOwner  = errors.New("trips: trip belongs to another user")
)

// TripService builds trips from a user's liked places and manages them.
type TripService struct {
	swipesRepo storage.SwipesRepository
	tripsRepo  storage.TripsRepository
}

// NewTripService creates a TripService.
func NewTripService(swipesRepo storage.SwipesRepository, tripsRepo storage.TripsRepository) *TripService {
	return &TripService{swipesRepo: swipesRepo, tripsRepo: tripsRepo}
}

// CreateFromLikes turns the user's liked places into a trip.
//
// Places with coordinates are sequenced with the nearest-neighbor heuristic
// (the most recently liked place is the anchor); places without coordinates
// are appended at the end of the display order. The consumed likes are
// cleared so the next swipe session starts fresh.
func (s *TripService) CreateFromLikes(ctx context.Context, userID string) (*storage.Trip, error) {
	liked, err := s.swipesRepo.ListLikedPlaces(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("trips: list liked places: %w", err)
	}
	if len(liked) == 0 {
		return nil, ErrNoLikedPlaces
	}

	routable, unroutable := splitRecords(liked)
	ordered := routing.Sequence(routable)

	placeIDs := make([]string, 0, len(liked))
	for _, p := range ordered {
		placeIDs = append(placeIDs, p.ID)
	}
	for _, p := range unroutable {
		placeIDs = append(placeIDs, p.ID)
	}

	trip := &storage.Trip{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  fmt.Sprintf("My Auto-Planned Trip %s", time.Now().Format("2006-01-02")),
		Status: "draft",
	}

	if err := s.tripsRepo.CreateTripWithItems(ctx, trip, placeIDs); err != nil {
		return nil, fmt.Errorf("trips: create trip: %w", err)
	}

	if err := s.swipesRepo.ClearLikes(ctx, userID); err != nil {
		// The trip exists; stale likes are an annoyance, not a failure.
		return trip, fmt.Errorf("trips: clear consumed likes: %w", err)
	}

	return trip, nil
}

// ListTrips returns the user's trips, newest first.
func (s *TripService) ListTrips(ctx context.Context, userID string) ([]storage.Trip, error) {
	trips, err := s.tripsRepo.ListTrips(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("trips: list: %w", err)
	}
	return trips, nil
}

// GetTrip returns one of the user's trips with its ordered items.
func (s *TripService) GetTrip(ctx context.Context, userID, tripID string) (*storage.Trip, []storage.TripItemDetail, error) {
	trip, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.tripsRepo.ListTripItems(ctx, tripID)
	if err != nil {
		return nil, nil, fmt.Errorf("trips: list items: %w", err)
	}
	return trip, items, nil
}

// Reorder applies a manual position override to the trip's items.
func (s *TripService) Reorder(ctx context.Context, userID, tripID string, items []storage.ItemPosition) error {
	if _, err := s.ownedTrip(ctx, userID, tripID); err != nil {
		return err
	}
	if err := s.tripsRepo.UpdateItemPositions(ctx, tripID, items); err != nil {
		return fmt.Errorf("trips: reorder: %w", err)
	}
	return nil
}

// ownedTrip fetches a trip and verifies ownership.
func (s *TripService) ownedTrip(ctx context.Context, userID, tripID string) (*storage.Trip, error) {
	trip, err := s.tripsRepo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("trips: fetch trip %s: %w", tripID, err)
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	if trip.UserID != userID {
		return nil, ErrNotTripOwner
	}
	return trip, nil
}

// splitRecords converts storage records into routing places, separating the
// ones without coordinates.
func splitRecords(records []storage.PlaceRecord) (routable, unroutable []routing.Place) {
	for _, rec := range records {
		p := routing.Place{ID: rec.ID, Name: rec.Name, Location: rec.Location}
		if rec.HasPoint() {
			p.Point = routing.GeoPoint{Lat: *rec.Lat, Lng: *rec.Lng}
			if p.Point.Valid() {
				routable = append(routable, p)
				continue
			}
		}
		unroutable = append(unroutable, p)
	}
	return routable, unroutable
}
