// Package main provides the GEFS forecast API HTTP server.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"go.ngs.io/gefs-api/internal/adapter/geocode"
	"go.ngs.io/gefs-api/internal/adapter/store"
	"go.ngs.io/gefs-api/internal/adapter/store/netcdf"
	"go.ngs.io/gefs-api/internal/config"
	httpHandler "go.ngs.io/gefs-api/internal/http"
	"go.ngs.io/gefs-api/internal/observability"
	"go.ngs.io/gefs-api/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	debug := flag.Bool("debug", false, "Verbose logging and Gin debug mode")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("gefs-api version %s\n", version)
		return
	}

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *debug {
		cfg.Debug = true
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	sugar := logger.Sugar()

	sugar.Infow("starting GEFS forecast API",
		"version", version,
		"addr", cfg.Addr,
		"data_path", cfg.DataPath,
		"cache_ttl", cfg.CacheTTL,
	)

	metrics := observability.NewMetrics()

	// Initialize the dataset store and its cache.
	bbox := netcdf.BBox{
		LatMin: cfg.LatMin, LatMax: cfg.LatMax,
		LonMin: cfg.LonMin, LonMax: cfg.LonMax,
	}
	ncStore := netcdf.NewStore(cfg.DataPath, bbox, sugar)
	cached := store.NewCachedLoader(ncStore, cfg.CacheTTL, nil, sugar)
	cached.OnHit = func() { metrics.CacheLookups.WithLabelValues("hit").Inc() }
	cached.OnMiss = func() { metrics.CacheLookups.WithLabelValues("miss").Inc() }
	cached.OnLoaded = func(elapsed time.Duration) {
		metrics.DatasetLoads.Observe(elapsed.Seconds())
		metrics.DatasetReady.Set(1)
	}

	// Initialize the location index, with an optional CSV override.
	cities := geocode.NewIndex()
	if cfg.CitiesPath != "" {
		cities, err = geocode.LoadCSV(cfg.CitiesPath)
		if err != nil {
			sugar.Fatalw("failed to load cities file", "path", cfg.CitiesPath, "err", err)
		}
		sugar.Infow("loaded location index", "path", cfg.CitiesPath, "count", len(cities.Cities()))
	}

	// Initialize the forecast service.
	svc := usecase.NewForecastService(cached, cities, sugar)

	// Setup router.
	router := httpHandler.SetupRouter(svc, metrics, cfg.CORSOrigins, cfg.Debug, sugar)

	sugar.Infow("server listening", "addr", cfg.Addr)
	if err := router.Run(cfg.Addr); err != nil {
		sugar.Fatalw("server exited", "err", err)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("GEFS Forecast API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  gefs-api [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println("  -debug         Verbose logging and Gin debug mode")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  ADDR                    Listen address (default: :8080)")
	fmt.Println("  GEFS_DATA_PATH          Path to the regional NetCDF cache (default: ./cache/gefs_subset.nc)")
	fmt.Println("  CITIES_PATH             Optional CSV of locations (name,lat,lon)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  CACHE_TTL               How long the loaded dataset stays fresh (default: 1h)")
	fmt.Println("  DEBUG                   Verbose logging and Gin debug mode (default: false)")
	fmt.Println("  LAT_MIN, LAT_MAX        Latitude bounds in degrees (default: 30, 50)")
	fmt.Println("  LON_MIN, LON_MAX        Longitude bounds in degrees (default: -125, -100)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                    Health check")
	fmt.Println("  GET /metrics                   Prometheus metrics")
	fmt.Println("  GET /v1/variables              List forecast variables")
	fmt.Println("  GET /v1/locations              List named locations")
	fmt.Println("  GET /v1/forecast/timeseries    Ensemble summary at a point")
	fmt.Println("  GET /v1/forecast/grid          Ensemble statistic over the map")
	fmt.Println()
}
