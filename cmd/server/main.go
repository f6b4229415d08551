package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"permitdesk/internal/application"
	apphandler "permitdesk/internal/application/handler"
	appservice "permitdesk/internal/application/service"
	"permitdesk/internal/blob"
	"permitdesk/internal/compliance"
	"permitdesk/internal/document"
	dochandler "permitdesk/internal/document/handler"
	docservice "permitdesk/internal/document/service"
	"permitdesk/internal/fee"
	"permitdesk/internal/history"
	"permitdesk/internal/platform/config"
	"permitdesk/internal/platform/httpserver"
	"permitdesk/internal/platform/logger"
	"permitdesk/internal/platform/metrics"
	"permitdesk/internal/platform/postgres"
	platformredis "permitdesk/internal/platform/redis"
	"permitdesk/internal/zoning"
	txcontext "permitdesk/pkg/platform/tx"

	httptransport "permitdesk/internal/transport/http"
)

// main wires dependencies and owns the server lifecycle. Postgres, S3, and
// Redis are each optional: an unconfigured section falls back to the
// in-memory implementation so the service still runs for local development.
func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	m := metrics.New()

	// Persistence.
	var (
		db        *sql.DB
		appStore  application.Store
		docStore  document.Store
		histStore history.Store
		refs      application.ReferenceAllocator
		runner    txcontext.Runner = txcontext.NoopRunner{}
	)
	if cfg.Database.Enabled() {
		db, err = postgres.Open(cfg.Database)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := postgres.Migrate(cfg.Database); err != nil {
			log.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		appStore = application.NewPostgresStore(db)
		docStore = document.NewPostgresStore(db)
		histStore = history.NewPostgresStore(db)
		refs = application.NewPostgresAllocator(db)
		runner = txcontext.NewSQLRunner(db)
		log.Info("using postgres stores", "host", cfg.Database.Host)
	} else {
		appStore = application.NewInMemoryStore()
		docStore = document.NewInMemoryStore()
		histStore = history.NewInMemoryStore()
		refs = application.NewInMemoryAllocator()
		log.Warn("database not configured, using in-memory stores")
	}

	// Blob storage.
	var blobs blob.Store
	if cfg.S3.Enabled() {
		s3Store, err := blob.NewS3Store(cfg.S3)
		if err != nil {
			log.Error("failed to initialize blob storage", "error", err)
			os.Exit(1)
		}
		blobs = s3Store
		log.Info("using s3 blob storage", "bucket", cfg.S3.Bucket)
	} else {
		blobs = blob.NewInMemoryStore()
		log.Warn("s3 not configured, using in-memory blob storage")
	}

	// Zone resolution, optionally cached in redis.
	var zones zoning.Resolver = zoning.NewStaticResolver(zoning.DefaultZoneTable())
	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		zones = zoning.NewCachedResolver(zones, rdb.Client, cfg.Redis.ZoneCacheTTL, log)
		log.Info("zone cache enabled", "ttl", cfg.Redis.ZoneCacheTTL)
	}

	// Domain services.
	assessor := fee.NewAssessor(zones, fee.NewCalculator(fee.DefaultSchedule()), log)
	publisher := history.NewPublisher(histStore)
	complianceSvc := compliance.NewService(appStore, docStore, m)
	appSvc := appservice.New(appStore, refs, complianceSvc, publisher, assessor, runner, m, log)
	docSvc := docservice.New(docStore, appStore, blobs, appSvc, runner, m, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Applications: apphandler.New(appSvc, complianceSvc, log),
		Documents:    dochandler.New(docSvc, log),
		Metrics:      m,
		Logger:       log,
		Health:       healthCheck(db, rdb),
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

const healthTimeout = 5 * time.Second

// healthCheck reports the state of each optional backend.
func healthCheck(db *sql.DB, rdb *platformredis.Client) func() map[string]string {
	return func() map[string]string {
		components := map[string]string{"server": "ok"}
		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()
		if db != nil {
			components["database"] = "ok"
			if err := db.PingContext(ctx); err != nil {
				components["database"] = err.Error()
			}
		}
		if rdb != nil {
			components["redis"] = "ok"
			if err := rdb.Health(ctx); err != nil {
				components["redis"] = err.Error()
			}
		}
		return components
	}
}
