package routing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mmcloughlin/geohash"
)

const (
	// resolutionTTL is how long a cached place-id entry remains valid.
	// Resolution results for a given name+location are idempotent within a
	// session, so a generous TTL is safe.
	resolutionTTL = 24 * time.Hour

	// cacheQueryTimeout is the deadline for each cache read/write query.
	cacheQueryTimeout = 5 * time.Second

	// geohashPrecision controls the spatial resolution of the bias hash.
	// Precision 7 ≈ ±76m latitude / ±152m longitude cell, tight enough that
	// two different venues rarely share both name and cell.
	geohashPrecision = 7
)

// ResolutionStore abstracts the persistence layer for place-id resolution
// caching, so the pgx implementation can be swapped for a test double.
type ResolutionStore interface {
	// GetResolution returns a cached place id for the key, or ("", false)
	// when there is no valid (non-expired) entry.
	GetResolution(ctx context.Context, key string) (string, bool, error)

	// SetResolution upserts an entry with an expiry of now + resolutionTTL.
	SetResolution(ctx context.Context, key, placeID string) error
}

// Logger is a printf-style logging function injected into CachedResolver.
// A function type rather than an interface keeps the dependency minimal and
// makes test doubles trivial.
type Logger func(format string, args ...any)

// CachedResolver wraps another PlaceResolver and transparently caches its
// hits. Cache keys combine the normalized query with a geohash of the bias
// coordinate. Misses are not cached: a venue that failed to resolve once may
// resolve later.
type CachedResolver struct {
	inner      PlaceResolver
	store      ResolutionStore
	logger     Logger // called when async cache writes fail; nil = silent
	afterStore func() // test-only hook, called after every async store attempt
}

// CachedResolverOption configures a CachedResolver.
type CachedResolverOption func(*CachedResolver)

// WithLogger sets a logger that is called when the async cache write fails.
// If not set, write errors are silently dropped to keep the hot path clean.
func WithLogger(l Logger) CachedResolverOption {
	return func(r *CachedResolver) { r.logger = l }
}

// withAfterStore sets a hook called after every async store attempt.
// Intended exclusively for test synchronization.
func withAfterStore(fn func()) CachedResolverOption {
	return func(r *CachedResolver) { r.afterStore = fn }
}

// NewCachedResolver wraps inner with a cache-aside layer backed by store.
func NewCachedResolver(inner PlaceResolver, store ResolutionStore, opts ...CachedResolverOption) *CachedResolver {
	r := &CachedResolver{inner: inner, store: store}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve satisfies PlaceResolver. It checks the cache first; on a miss it
// delegates to the inner resolver and persists a hit asynchronously.
func (r *CachedResolver) Resolve(ctx context.Context, query, locality string, bias GeoPoint) (string, error) {
	key := resolutionKey(query, locality, bias)

	cached, ok, err := r.store.GetResolution(ctx, key)
	if err != nil && r.logger != nil {
		// Read failures are non-fatal: fall through to the resolver.
		r.logger("routing: resolve cache: read failed (key=%s): %v", key, err)
	}
	if ok {
		return cached, nil
	}

	id, err := r.inner.Resolve(ctx, query, locality, bias)
	if err != nil || id == "" {
		return id, err
	}

	// Persist asynchronously on a background context so the write survives
	// the caller's context expiring right after the lookup.
	go func() {
		storeCtx, cancel := context.WithTimeout(context.Background(), cacheQueryTimeout)
		defer cancel()

		if err := r.store.SetResolution(storeCtx, key, id); err != nil {
			if r.logger != nil {
				r.logger("routing: resolve cache: async write failed (key=%s): %v", key, err)
			}
		}

		if r.afterStore != nil {
			r.afterStore()
		}
	}()

	return id, nil
}

// resolutionKey builds the cache key from the normalized query text and the
// geohash cell of the bias coordinate.
func resolutionKey(query, locality string, bias GeoPoint) string {
	normalized := strings.ToLower(resolveQuery(query, locality))
	return normalized + "|" + geohash.EncodeWithPrecision(bias.Lat, bias.Lng, geohashPrecision)
}

// --- pgx-backed ResolutionStore implementation ---

type pgResolutionStore struct {
	pool *pgxpool.Pool
}

// NewPgResolutionStore creates a ResolutionStore backed by the given pool.
func NewPgResolutionStore(pool *pgxpool.Pool) ResolutionStore {
	return &pgResolutionStore{pool: pool}
}

func (s *pgResolutionStore) GetResolution(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, cacheQueryTimeout)
	defer cancel()

	var placeID string
	err := s.pool.QueryRow(ctx, `
		SELECT place_id
		FROM place_resolution_cache
		WHERE query_key = $1 AND expires_at > NOW()`,
		key,
	).Scan(&placeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return placeID, true, nil
}

func (s *pgResolutionStore) SetResolution(ctx context.Context, key, placeID string) error {
	ctx, cancel := context.WithTimeout(ctx, cacheQueryTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO place_resolution_cache (query_key, place_id, expires_at)
		VALUES ($1, $2, NOW() + $3::interval)
		ON CONFLICT (query_key)
		DO UPDATE SET place_id = EXCLUDED.place_id, expires_at = EXCLUDED.expires_at`,
		key, placeID, resolutionTTL.String(),
	)
	return err
}
