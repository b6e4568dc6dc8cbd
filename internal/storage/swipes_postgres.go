package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pgSwipesRepository is the pgx-backed implementation of SwipesRepository.
type pgSwipesRepository struct {
	pool *pgxpool.Pool
}

// NewSwipesRepository creates a SwipesRepository backed by the given pool.
func NewSwipesRepository(pool *pgxpool.Pool) SwipesRepository {
	return &pgSwipesRepository{pool: pool}
}

func (r *pgSwipesRepository) CreateSwipe(ctx context.Context, userID, placeID, action string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_swipes (user_id, place_id, action)
		VALUES ($1, $2, $3)`,
		userID, placeID, action)
	if err != nil {
		return fmt.Errorf("storage: CreateSwipe: %w", err)
	}
	return nil
}

func (r *pgSwipesRepository) ListLikedPlaces(ctx context.Context, userID string) ([]PlaceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// Most recent like first: the newest liked place becomes the anchor when
	// a trip is built from these.
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM user_swipes s
		JOIN places p ON p.id = s.place_id
		WHERE s.user_id = $1 AND s.action IN ($2, $3)
		ORDER BY s.created_at DESC`, placeColumns),
		userID, SwipeLike, SwipeSuperlike)
	if err != nil {
		return nil, fmt.Errorf("storage: ListLikedPlaces: %w", err)
	}
	defer rows.Close()

	return scanPlaces(rows, "ListLikedPlaces")
}

func (r *pgSwipesRepository) ClearLikes(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		DELETE FROM user_swipes
		WHERE user_id = $1 AND action IN ($2, $3)`,
		userID, SwipeLike, SwipeSuperlike)
	if err != nil {
		return fmt.Errorf("storage: ClearLikes: %w", err)
	}
	return nil
}
