// @title        Home-care Portal Session API
// @version      1.0
// @description  Session store, route guard and notification feed of the home-care portal.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/careline/homecare-portal/internal/api"
	"github.com/careline/homecare-portal/internal/api/handler"
	"github.com/careline/homecare-portal/internal/core/ports"
	"github.com/careline/homecare-portal/internal/core/service"
	"github.com/careline/homecare-portal/internal/infrastructure/db/memory"
	mongodb "github.com/careline/homecare-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/careline/homecare-portal/internal/infrastructure/db/redis"
	"github.com/careline/homecare-portal/internal/infrastructure/db/seed"
	"github.com/careline/homecare-portal/internal/infrastructure/queue"
	"github.com/careline/homecare-portal/internal/infrastructure/slot"
	"github.com/careline/homecare-portal/internal/pkg/config"
	"github.com/careline/homecare-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// credentialStore is the repository plus its readiness probe.
type credentialStore interface {
	ports.CredentialRepository
	handler.Pinger
}

// identitySlot is the slot plus its readiness probe.
type identitySlot interface {
	ports.IdentitySlot
	handler.Pinger
}

func main() {
	cfg := config.Load()

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "homecare-portal",
	})
	log := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds, closeCreds, err := openCredentials(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open credential store")
	}
	defer closeCreds()

	idSlot, closeSlot, err := openSlot(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open identity slot")
	}
	defer closeSlot()

	codec, err := newCodec(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build identity codec")
	}

	notifications := service.NewNotificationService(seed.Notifications(time.Now().UTC()), logger.Named("notifications"))
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, notifications, logger.Named("dispatcher"))
	dispatcher.Start(ctx)

	session := service.NewSessionStore(creds, idSlot, codec, logger.Named("session"),
		service.WithLatency(cfg.Session.Latency),
		service.WithPublisher(dispatcher),
	)
	snap := session.Restore(ctx)
	log.Info().Bool("authenticated", snap.IsAuthenticated()).Msg("session restored")

	table, err := service.NewRouteTable(service.DefaultRoutes()...)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid route table")
	}
	guard := service.NewRouteGuard(table, logger.Named("guard"))

	e := api.NewRouter(api.Deps{
		Session:       session,
		Guard:         guard,
		Notifications: notifications,
		Probes: map[string]handler.Pinger{
			"identity_slot": idSlot,
			"credentials":   creds,
		},
		Log: logger.Named("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func openCredentials(ctx context.Context, cfg *config.Config) (credentialStore, func(), error) {
	log := logger.Named("credentials")

	var (
		repo    credentialStore
		closeFn = func() {}
	)
	switch cfg.Credentials.Store {
	case config.CredentialStoreMongo:
		mrepo, err := mongodb.OpenCredentialRepository(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		closeFn = func() { _ = mrepo.Close(context.Background()) }
		repo = mrepo
	default:
		repo = memory.NewCredentialRepository()
	}

	if cfg.Credentials.Seed {
		recs, err := seed.Credentials(bcrypt.DefaultCost, time.Now().UTC())
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		n, err := seed.Apply(ctx, repo, recs)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		log.Info().Int("inserted", n).Str("store", cfg.Credentials.Store).Msg("fixture accounts seeded")
	}
	return repo, closeFn, nil
}

func openSlot(ctx context.Context, cfg *config.Config) (identitySlot, func(), error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		rs, err := redisdb.OpenIdentitySlot(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		}, logger.Named("identity_slot"))
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	case config.SessionStoreMemory:
		return slot.NewMemorySlot(), func() {}, nil
	default:
		fs, err := slot.NewFileSlot(cfg.Session.File)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
}

func newCodec(cfg *config.Config) (ports.IdentityCodec, error) {
	if cfg.Session.SigningKey == "" {
		return slot.JSONCodec{}, nil
	}
	codec, err := slot.NewSignedCodec(cfg.Session.SigningKey)
	if err != nil {
		return nil, err
	}
	return codec, nil
}
