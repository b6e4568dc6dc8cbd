package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgTripsRepository is the pgx-backed implementation of TripsRepository.
type pgTripsRepository struct {
	pool *pgxpool.Pool
}

// NewTripsRepository creates a TripsRepository backed by the given pool.
func NewTripsRepository(pool *pgxpool.Pool) TripsRepository {
	return &pgTripsRepository{pool: pool}
}

func (r *pgTripsRepository) CreateTripWithItems(ctx context.Context, trip *Trip, placeIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storage: CreateTripWithItems: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO trips (id, user_id, title, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		trip.ID, trip.UserID, trip.Title, trip.Status,
	).Scan(&trip.CreatedAt)
	if err != nil {
		return fmt.Errorf("storage: CreateTripWithItems: insert trip: %w", err)
	}

	for i, placeID := range placeIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO trip_items (trip_id, place_id, position)
			VALUES ($1, $2, $3)`,
			trip.ID, placeID, i+1)
		if err != nil {
			return fmt.Errorf("storage: CreateTripWithItems: insert item %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("storage: CreateTripWithItems: commit: %w", err)
	}
	return nil
}

func (r *pgTripsRepository) ListTrips(ctx context.Context, userID string) ([]Trip, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, status, created_at
		FROM trips
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("storage: ListTrips: %w", err)
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var t Trip
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: ListTrips: scan: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (r *pgTripsRepository) GetTrip(ctx context.Context, id string) (*Trip, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var t Trip
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, status, created_at
		FROM trips WHERE id = $1`, id,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Status, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: GetTrip: %w", err)
	}
	return &t, nil
}

func (r *pgTripsRepository) ListTripItems(ctx context.Context, tripID string) ([]TripItemDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT i.id, i.trip_id, i.place_id, i.position, COALESCE(i.notes, ''),
		       %s
		FROM trip_items i
		JOIN places p ON p.id = i.place_id
		WHERE i.trip_id = $1
		ORDER BY i.position`, placeColumns), tripID)
	if err != nil {
		return nil, fmt.Errorf("storage: ListTripItems: %w", err)
	}
	defer rows.Close()

	var items []TripItemDetail
	for rows.Next() {
		var d TripItemDetail
		p := &d.Place
		if err := rows.Scan(&d.ID, &d.TripID, &d.PlaceID, &d.Position, &d.Notes,
			&p.ID, &p.Name, &p.Location, &p.Country, &p.Description, &p.ImageURL,
			&p.Rating, &p.ReviewCount, &p.Tags, &p.Lat, &p.Lng, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: ListTripItems: scan: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *pgTripsRepository) UpdateItemPositions(ctx context.Context, tripID string, items []ItemPosition) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storage: UpdateItemPositions: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		_, err = tx.Exec(ctx, `
			UPDATE trip_items SET position = $1
			WHERE id = $2 AND trip_id = $3`,
			item.Position, item.ItemID, tripID)
		if err != nil {
			return fmt.Errorf("storage: UpdateItemPositions: item %d: %w", item.ItemID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("storage: UpdateItemPositions: commit: %w", err)
	}
	return nil
}
