package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queryTimeout is applied to every database query.
const queryTimeout = 5 * time.Second

// pgPlacesRepository is the pgx-backed implementation of PlacesRepository.
type pgPlacesRepository struct {
	pool *pgxpool.Pool
}

// NewPlacesRepository creates a PlacesRepository backed by the given pool.
func NewPlacesRepository(pool *pgxpool.Pool) PlacesRepository {
	return &pgPlacesRepository{pool: pool}
}

// placeColumns selects every PlaceRecord field; queries using it must alias
// the places table as p.
const placeColumns = `p.id, p.name, p.location, p.country,
	COALESCE(p.description, ''), COALESCE(p.image_url, ''),
	COALESCE(p.rating, 0), COALESCE(p.review_count, 0),
	COALESCE(p.tags, '{}'), p.lat, p.lng, p.created_at`

func (r *pgPlacesRepository) ListUnswiped(ctx context.Context, userID string, limit int) ([]PlaceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM places p
		WHERE NOT EXISTS (
			SELECT 1 FROM user_swipes s
			WHERE s.place_id = p.id AND s.user_id = $1
		)
		ORDER BY p.created_at DESC
		LIMIT $2`, placeColumns), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: ListUnswiped: %w", err)
	}
	defer rows.Close()

	return scanPlaces(rows, "ListUnswiped")
}

func (r *pgPlacesRepository) GetPlace(ctx context.Context, id string) (*PlaceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var p PlaceRecord
	err := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM places p WHERE id = $1`, placeColumns), id,
	).Scan(&p.ID, &p.Name, &p.Location, &p.Country, &p.Description, &p.ImageURL,
		&p.Rating, &p.ReviewCount, &p.Tags, &p.Lat, &p.Lng, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: GetPlace: %w", err)
	}
	return &p, nil
}

// scanPlaces drains a row set whose columns match placeColumns.
func scanPlaces(rows pgx.Rows, op string) ([]PlaceRecord, error) {
	var places []PlaceRecord
	for rows.Next() {
		var p PlaceRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.Location, &p.Country, &p.Description,
			&p.ImageURL, &p.Rating, &p.ReviewCount, &p.Tags, &p.Lat, &p.Lng, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: %s: scan: %w", op, err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}
