package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"trip-analytics-service/internal/adapters/cache"
	"trip-analytics-service/internal/adapters/events"
	"trip-analytics-service/internal/adapters/geocode"
	"trip-analytics-service/internal/adapters/warehouse"
	"trip-analytics-service/internal/api"
	"trip-analytics-service/internal/config"
	"trip-analytics-service/internal/platform/db"
	"trip-analytics-service/internal/ports"
	"trip-analytics-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, ORS) behind ports and
// starts the HTTP server.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found (using environment variables)")
	}

	cfg := config.Load()

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	if strings.TrimSpace(cfg.GeocodeAPIKey) == "" {
		log.Fatal().Msg("GEOCODE_API_KEY is required")
	}

	ctx := context.Background()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open warehouse pool")
	}
	defer pool.Close()

	if err := warehouse.InitSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("init warehouse schema")
	}

	geocoder, err := geocode.NewORSGeocoder(cfg.GeocodeAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("construct geocoder")
	}

	// Prefer Redis for the cross-run geocode cache and batch progress
	// events; fall back to the warehouse-resident cache and no events.
	var (
		store     ports.LocationStore
		publisher ports.BatchEventPublisher = events.NoopPublisher{}
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store = cache.NewRedisLocationStore(client)
		publisher = events.NewRedisEventPublisher(client, cfg.EventChannel)
	} else {
		store = cache.NewPgLocationStore(pool)
	}

	locations := cache.NewLocationCache(geocoder, store)

	enricher := services.NewEnricher(locations)
	enricher.Workers = cfg.EnrichWorkers

	repo := warehouse.NewPgTripRepository(pool)
	loader := services.NewLoader(repo)

	ingest := services.NewIngestService(enricher, loader, publisher)
	ingest.BatchSize = cfg.BatchSize
	ingest.LoadWorkers = cfg.LoadWorkers

	agg := services.NewAggregationService(repo)

	router := api.NewRouter(ingest, agg)

	// Write timeout covers whole-file ingestion runs on cold caches.
	log.Info().Str("addr", ":"+cfg.Port).Msg("server listening")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Minute,
		WriteTimeout:      30 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal().Err(srv.ListenAndServe()).Msg("server stopped")
}
