package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"churn-dashboard/config"
	"churn-dashboard/dashboard"
	"churn-dashboard/dataset"
	"churn-dashboard/handlers"
	"churn-dashboard/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg.LogLevel)
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := datasetSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up dataset source")
	}
	dash := dashboard.NewService(dataset.NewLoader(src, cfg.Dataset.Cache))
	log.Info().Str("source", src.Name()).Bool("cache", cfg.Dataset.Cache).Msg("dataset source ready")

	// Session history lives in redis when it answers, in process otherwise
	var store services.HistoryStore
	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour
	redisClient, err := services.NewRedisClient(cfg.Redis, cfg.Redis.ConnectAttempts)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, keeping session history in memory")
		store = services.NewMemoryHistoryStore(ttl)
	} else {
		defer redisClient.Close()
		store = services.NewRedisHistoryStore(redisClient, ttl)
	}
	sessions := services.NewSessionService(cfg.Session, store)

	router, err := handlers.NewRouter(cfg, dash, sessions)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Str("history_store", store.Backend()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Warn().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	if lvl <= zerolog.DebugLevel {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// datasetSource picks the CSV file or, for DATASET_SOURCE=postgres, the
// configured table through gorm.
func datasetSource(cfg *config.Config) (dataset.Source, error) {
	if cfg.Dataset.Source != config.SourcePostgres {
		return dataset.FileSource{Path: cfg.Dataset.Path}, nil
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return dataset.TableSource{DB: db, Table: cfg.Dataset.Table}, nil
}
