// Package app wires the application dependencies and HTTP routes.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/azerckid/C-Stay-tinder/internal/config"
	"github.com/azerckid/C-Stay-tinder/internal/handler"
	"github.com/azerckid/C-Stay-tinder/internal/middleware"
	"github.com/azerckid/C-Stay-tinder/internal/migrations"
	"github.com/azerckid/C-Stay-tinder/internal/routing"
	"github.com/azerckid/C-Stay-tinder/internal/service"
	"github.com/azerckid/C-Stay-tinder/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBError represents a database-related error.
type DBError struct {
	Op  string
	Err error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("db error during %q: %v", e.Op, e.Err)
}

func (e *DBError) Unwrap() error { return e.Err }

// App holds the application-level dependencies.
type App struct {
	DB     *pgxpool.Pool
	Router *gin.Engine
	cfg    *config.Config
}

// New initializes the application: connects to Postgres, runs migrations,
// wires all domain dependencies, and configures the HTTP engine with routes.
func New(cfg *config.Config) (*App, error) {
	// --- Database pool ---
	poolCfg, err := pgxpool.ParseConfig(cfg.DBDSN)
	if err != nil {
		return nil, &DBError{Op: "parse_dsn", Err: err}
	}

	poolCfg.MaxConns = 20
	poolCfg.MaxConnLifetime = 30 * time.Second
	poolCfg.MaxConnIdleTime = 10 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, &DBError{Op: "connect", Err: err}
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, &DBError{Op: "ping", Err: err}
	}

	log.Println("database connection pool established")

	// --- Migrations ---
	if err := migrations.Run(context.Background(), pool); err != nil {
		return nil, fmt.Errorf("app: run migrations: %w", err)
	}

	// --- Domain dependencies ---
	placesRepo := storage.NewPlacesRepository(pool)
	swipesRepo := storage.NewSwipesRepository(pool)
	tripsRepo := storage.NewTripsRepository(pool)

	kakaoClient := routing.NewKakaoClient(cfg.KakaoAPIKey)
	googleClient := routing.NewGoogleClient(cfg.GoogleAPIKey)
	region := routing.RegionPolicy{DomesticRatio: cfg.DomesticRatio}

	// Place-id resolution for global itineraries, cache-aside over Postgres.
	resolver := routing.NewCachedResolver(
		routing.NewGoogleResolver(cfg.GoogleAPIKey),
		routing.NewPgResolutionStore(pool),
		routing.WithLogger(log.Printf),
	)

	itineraryService := service.NewItineraryService(
		kakaoClient, googleClient, region,
		service.WithResolver(resolver),
	)
	tripService := service.NewTripService(swipesRepo, tripsRepo)

	// Auth dependencies.
	usersRepo := storage.NewUsersRepository(pool)
	tokensRepo := storage.NewRefreshTokensRepository(pool)
	authService := service.NewAuthService(
		usersRepo, tokensRepo,
		cfg.JWTSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	// --- HTTP engine ---
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.Timeout(10 * time.Second))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes.
	h := handler.New(placesRepo, swipesRepo, itineraryService, tripService)
	ah := handler.NewAuthHandler(authService)

	api := router.Group("/api/v1")
	{
		// Directions (public): the itinerary screen calls this with raw
		// coordinates, no account needed to preview a route.
		api.POST("/directions", h.GetDirections)

		// Place detail (public).
		api.GET("/places/:id", h.GetPlace)

		// Auth endpoints (no auth required to call these).
		auth := api.Group("/auth")
		{
			auth.POST("/register", ah.Register)
			auth.POST("/login", ah.Login)
			auth.POST("/refresh", ah.Refresh)
			auth.POST("/logout", ah.Logout)
		}

		// Protected endpoints: swipe deck and trips.
		user := api.Group("/")
		user.Use(middleware.JWTAuth(authService))
		{
			user.GET("/places/feed", h.GetFeed)
			user.POST("/swipes", h.CreateSwipe)
			user.POST("/trips", h.CreateTrip)
			user.GET("/trips", h.ListTrips)
			user.GET("/trips/:id", h.GetTrip)
			user.PUT("/trips/:id/reorder", h.ReorderTrip)
		}
	}

	return &App{
		DB:     pool,
		Router: router,
		cfg:    cfg,
	}, nil
}

// Shutdown gracefully closes the database pool.
func (a *App) Shutdown() {
	if a.DB != nil {
		a.DB.Close()
		log.Println("database connection pool closed")
	}
}
