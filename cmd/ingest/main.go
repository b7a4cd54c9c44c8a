package main

import (
	"context"
	"flag"
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
	"trip-analytics-service/internal/config"
	"trip-analytics-service/internal/platform/db"
	"trip-analytics-service/internal/ports"
	"trip-analytics-service/internal/services"
)

// Command ingest enriches coordinates and bulk-loads one CSV file into
// the warehouse, then prints the run's outcome.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	file := flag.String("file", "", "path to the input CSV file")
	flag.Parse()

	if strings.TrimSpace(*file) == "" {
		log.Fatal().Msg("--file is required")
	}

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

	log.Info().Msg("initializing warehouse schema")
	if err := warehouse.InitSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("init warehouse schema")
	}

	geocoder, err := geocode.NewORSGeocoder(cfg.GeocodeAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("construct geocoder")
	}

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

	enricher := services.NewEnricher(cache.NewLocationCache(geocoder, store))
	enricher.Workers = cfg.EnrichWorkers

	loader := services.NewLoader(warehouse.NewPgTripRepository(pool))

	ingest := services.NewIngestService(enricher, loader, publisher)
	ingest.BatchSize = cfg.BatchSize
	ingest.LoadWorkers = cfg.LoadWorkers

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("open input file")
	}
	defer f.Close()

	log.Info().Str("file", *file).Msg("starting ingestion run")

	result, err := ingest.Ingest(ctx, f)
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion failed")
	}

	for _, failure := range result.Failed {
		log.Error().Int("batch_index", failure.BatchIndex).Str("error", failure.Err).Msg("batch failed")
	}

	log.Info().
		Int("rows_read", result.RowsRead).
		Int("rows_loaded", result.RowsLoaded).
		Int("malformed_rows", result.MalformedRows).
		Int("failed_batches", len(result.Failed)).
		Msg("pipeline completed")

	if len(result.Failed) > 0 {
		os.Exit(1)
	}
}
