package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sessionlab/identity-system/internal/api"
	"github.com/sessionlab/identity-system/internal/core/ports"
	"github.com/sessionlab/identity-system/internal/infrastructure/config"
	filestore "github.com/sessionlab/identity-system/internal/infrastructure/db/file"
	mongostore "github.com/sessionlab/identity-system/internal/infrastructure/db/mongo"
	redisdb "github.com/sessionlab/identity-system/internal/infrastructure/db/redis"
	"github.com/sessionlab/identity-system/pkg/logger"

	"github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg := config.Load(slog.Default())

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx := context.Background()

	// The store backend is chosen once here, never at call time. A set
	// MONGO_URI selects the managed backend; a connection failure falls back
	// to the file simulator so local development keeps working, matching the
	// credential-detection behaviour this service replaces.
	var (
		store ports.DocumentStore
		db    *mongodriver.Database
	)
	if cfg.Store.MongoURI != "" {
		client, database, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Store.MongoURI,
			Database: cfg.Store.MongoDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("mongo unavailable, falling back to file-backed store")
		} else {
			defer client.Disconnect(ctx)
			db = database
			store = mongostore.NewStore(database)
			log.Info().Str("database", cfg.Store.MongoDB).Msg("using mongo document store")
		}
	}
	if store == nil {
		store = filestore.New(cfg.Store.File)
		log.Info().Str("file", cfg.Store.File).Msg("using file-backed document store")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, readiness probe will omit it")
		} else {
			rdb = client
		}
	}

	e := api.NewRouter(store, db, rdb, cfg.JWTSecret, cfg.TokenTTL, log)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting identity service")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
