package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/agritrace/produce-chain/internal/api"
	"github.com/agritrace/produce-chain/internal/core/ports"
	"github.com/agritrace/produce-chain/internal/core/service"
	mongodb "github.com/agritrace/produce-chain/internal/infrastructure/db/mongo"
	redisdb "github.com/agritrace/produce-chain/internal/infrastructure/db/redis"
	"github.com/agritrace/produce-chain/internal/infrastructure/ledger"
	"github.com/agritrace/produce-chain/internal/infrastructure/notifier"
	"github.com/agritrace/produce-chain/internal/infrastructure/queue"
	"github.com/agritrace/produce-chain/internal/pkg/config"
	"github.com/agritrace/produce-chain/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	identities := mongodb.NewIdentityRepository(db)
	if err := identities.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongo index creation failed")
	}
	challenges := redisdb.NewChallengeStore(rdb)

	// --- External collaborators ---
	ledgerClient := buildLedger(cfg, log)
	smsNotifier := buildNotifier(cfg, log)

	dispatcher := queue.NewDispatcher(cfg.Notifier.Workers, smsNotifier, log)
	dispatcher.Start(ctx)

	// --- Services ---
	tokens := service.NewTokenIssuer(cfg.JWTSecret, time.Hour)
	authService := service.NewAuthService(identities, tokens)
	otpService := service.NewOTPService(challenges, identities, smsNotifier, tokens, log)
	custodyService := service.NewCustodyService(ledgerClient, identities, dispatcher, log)

	e := api.NewRouter(api.Dependencies{
		AuthService:    authService,
		OTPService:     otpService,
		CustodyService: custodyService,
		Tokens:         tokens,
		Mongo:          db,
		Redis:          rdb,
		Logger:         log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func buildLedger(cfg *config.Config, log zerolog.Logger) ports.Ledger {
	if cfg.Ledger.Mode == "memory" {
		log.Warn().Msg("using in-memory ledger, data will not survive restarts")
		return ledger.NewInMemory()
	}
	return ledger.NewClient(ledger.Config{
		BaseURL: cfg.Ledger.BaseURL,
		Timeout: cfg.Ledger.Timeout,
	}, log)
}

func buildNotifier(cfg *config.Config, log zerolog.Logger) ports.Notifier {
	if cfg.Notifier.Mode == "sms" {
		return notifier.NewSMSNotifier(notifier.Config{
			BaseURL: cfg.Notifier.BaseURL,
			APIKey:  cfg.Notifier.APIKey,
			Timeout: cfg.Notifier.Timeout,
		}, log)
	}
	return notifier.NewLogNotifier(log)
}
