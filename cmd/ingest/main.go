// Command ingest fills the local movie catalog from TMDB.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"movienight/proj/internal/clients/tmdb"
	"movienight/proj/internal/config"
	"movienight/proj/internal/lib/logger"
	"movienight/proj/internal/services/ingest"
	"movienight/proj/internal/services/movies"
	"movienight/proj/internal/storage/postgres"
	pgmodels "movienight/proj/internal/storage/postgres/models"
	rediscache "movienight/proj/internal/storage/redis"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file (defaults to $CONFIG_PATH or config/local.yml)")
	pages := flag.Int("pages", 0, "number of popular pages to fetch (overrides tmdb.pages)")
	flag.Parse()
	if *cfgPath == "" && os.Getenv("CONFIG_PATH") == "" {
		*cfgPath = "config/local.yml"
	}
	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)
	if *pages > 0 {
		cfg.TMDB.Pages = *pages
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, log); err != nil {
		log.Error("ingestion failed", "reason", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.TMDB.ApiKey == "" {
		return errors.New("tmdb.api_key (TMDB_API_KEY) is required")
	}
	if cfg.DB.Driver != config.DriverPostgres {
		return errors.New("ingestion needs the postgres driver, the in-memory store does not outlive this process")
	}
	storage, err := postgres.New(ctx, cfg.DB.Dsn, cfg.DB.MaxConns, cfg.DB.MaxConnIdleTime)
	if err != nil {
		return err
	}
	defer storage.Close()
	if cfg.DB.Migrate {
		if err := storage.Migrate(ctx); err != nil {
			return err
		}
	}

	var cache movies.TrendingCache
	if cfg.Redis.Addr != "" {
		client, err := rediscache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		cache = rediscache.NewTrendingCache(client, cfg.Redis.TTL)
	}
	catalog := movies.New(log, pgmodels.New(storage).Movie, cache, cfg.Pagination.MaxLimit)
	source := tmdb.New(log, cfg.TMDB.BaseURL, cfg.TMDB.ApiKey, cfg.TMDB.Timeout)

	report, err := ingest.New(log, source, catalog).Run(ctx, cfg.TMDB.Pages)
	if err != nil {
		return err
	}
	log.Info("done", "fetched", report.Fetched, "upserted", report.Upserted)
	return nil
}
