package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"movienight/proj/internal/api/tasks"
	"movienight/proj/internal/config"
	"movienight/proj/internal/lib/logger"
	"movienight/proj/internal/mails"
	"movienight/proj/internal/services"
	"movienight/proj/internal/storage/memory"
	"movienight/proj/internal/storage/postgres"
	pgmodels "movienight/proj/internal/storage/postgres/models"
	rediscache "movienight/proj/internal/storage/redis"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "", "path to config file (defaults to $CONFIG_PATH or config/local.yml)")
	flag.Parse()
	if *cfgPath == "" && os.Getenv("CONFIG_PATH") == "" {
		*cfgPath = "config/local.yml"
	}
	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)
	if err := run(cfg, log); err != nil {
		log.Error("shutting down the server", "reason", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	storages, closeStorage, err := openStorages(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	var deps services.Deps
	if cfg.Redis.Addr != "" {
		client, err := rediscache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		deps.Cache = rediscache.NewTrendingCache(client, cfg.Redis.TTL)
		log.Info("trending cache enabled", "addr", cfg.Redis.Addr)
	}

	bgTasks := tasks.New(log, cfg.Tasks.Workers, cfg.Tasks.QueueSize)
	bgTasks.Run()
	deps.Tasks = bgTasks
	if cfg.SMTPServer.Host != "" {
		deps.Mailer = mails.New(
			cfg.SMTPServer.Host,
			cfg.SMTPServer.Port,
			cfg.SMTPServer.Timeout,
			cfg.SMTPServer.Username,
			cfg.SMTPServer.Password,
			cfg.SMTPServer.Sender,
			cfg.SMTPServer.RetriesCount,
		)
		log.Info("welcome emails enabled", "smtp_host", cfg.SMTPServer.Host)
	}

	app := NewApplication(cfg, log, services.New(log, cfg, storages, deps), bgTasks)
	return app.serve()
}

func openStorages(ctx context.Context, cfg *config.Config, log *slog.Logger) (services.Storages, func(), error) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		m := memory.New()
		return services.Storages{Users: m.User, Movies: m.Movie, Favorites: m.Favorite, Ratings: m.Rating}, func() {}, nil
	}
	storage, err := postgres.New(ctx, cfg.DB.Dsn, cfg.DB.MaxConns, cfg.DB.MaxConnIdleTime)
	if err != nil {
		return services.Storages{}, nil, err
	}
	log.Info("database connection established")
	if cfg.DB.Migrate {
		if err := storage.Migrate(ctx); err != nil {
			storage.Close()
			return services.Storages{}, nil, err
		}
		log.Info("database schema is up to date")
	}
	m := pgmodels.New(storage)
	return services.Storages{Users: m.User, Movies: m.Movie, Favorites: m.Favorite, Ratings: m.Rating}, storage.Close, nil
}
