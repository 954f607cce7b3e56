package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "hotel_pms/internal/adapters/http_server"
	"hotel_pms/internal/adapters/mq"
	"hotel_pms/internal/adapters/observability"
	redisad "hotel_pms/internal/adapters/redis"
	"hotel_pms/internal/app"
	"hotel_pms/internal/domain"
	"hotel_pms/internal/shared"
	"hotel_pms/internal/storage/memory"
	mysqlrepo "hotel_pms/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, "hotel-pms-api", cfg.OTLPEndpoint, cfg.AppEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("tracer init failed")
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	store := openStore(cfg)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, catalog cache disabled")
			_ = rc.Close()
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	var opts []app.Option
	if cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("rabbitmq publisher init failed")
		}
		defer pub.Close()
		opts = append(opts, app.WithEvents(pub))
		log.Info().Str("exchange", cfg.EventsExchange).Msg("publishing lifecycle events")
	}

	// deps
	catalog := app.NewCatalogService(store, cache, cfg.CacheTTL)
	pricing := app.NewPricingService(catalog, cfg.TaxRatePercent)
	checker := app.NewAvailabilityChecker(store)
	search := app.NewRoomSearch(store, checker)

	// http
	var srvOpts []server.ServerOption
	if cfg.APIKey != "" {
		srvOpts = append(srvOpts, server.WithAPIKey(cfg.APIKey))
	}
	srv := server.New(srvOpts...)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	metricsSrv := observability.Serve(cfg.MetricsAddr, reg)
	srv.MountHandlers(&server.Handlers{
		Catalog:      catalog,
		Pricing:      pricing,
		Search:       search,
		Alternatives: app.NewAlternativeFinder(catalog, search),
		Reservations: app.NewReservationService(store, checker, pricing, opts...),
		Groups:       app.NewGroupService(store, checker, opts...),
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("metrics shutdown")
		}
	}
}

func openStore(cfg shared.Config) domain.Store {
	if cfg.StoreDriver == shared.StoreMemory {
		return memory.New()
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db)
}
