package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Overland-East-Bay/club-portal-api/internal/adapters/httpapi"
	"github.com/Overland-East-Bay/club-portal-api/internal/adapters/lognotice"
	memactivityrepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/activityrepo"
	memclubrepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/clubrepo"
	memedgerepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/edgerepo"
	"github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/seed"
	"github.com/Overland-East-Bay/club-portal-api/internal/adapters/natsnotice"
	postgres "github.com/Overland-East-Bay/club-portal-api/internal/adapters/postgres"
	pgactivityrepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/postgres/activityrepo"
	pgclubrepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/postgres/clubrepo"
	pgedgerepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/postgres/edgerepo"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/clubs"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/mutation"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/notifications"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/status"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/auth/jwtverifier"
	platformclock "github.com/Overland-East-Bay/club-portal-api/internal/platform/clock"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/config"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/inflight"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/logger"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/metrics"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/tracing"
	activityrepoport "github.com/Overland-East-Bay/club-portal-api/internal/ports/out/activityrepo"
	clubrepoport "github.com/Overland-East-Bay/club-portal-api/internal/ports/out/clubrepo"
	edgerepoport "github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/noticesink"
)

const serviceName = "club-portal-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Error(context.Background(), "api exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, lg logger.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	m, err := metrics.NewManager()
	if err != nil {
		return err
	}

	clk := platformclock.NewSystemClock()

	// Auth configuration:
	// - Production: verify bearer JWTs against the configured JWKS
	// - Local dev: auth_mode=dev trusts X-Debug-* headers
	var authMW func(http.Handler) http.Handler
	switch cfg.AuthMode {
	case config.AuthModeDev:
		lg.Warn(ctx, "dev auth enabled; do not use in production", logger.String("dev_subject", cfg.DevSubject))
		authMW = httpapi.NewDevAuthMiddleware(cfg.DevSubject, cfg.DevRole)
	default:
		authMW = httpapi.NewAuthMiddleware(jwtverifier.New(cfg.JWT()))
	}

	var (
		clubRepo clubrepoport.Repository
		edges    edgerepoport.Repository
		activity activityrepoport.Repository
	)
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{Tracing: cfg.DBTracing})
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
		clubRepo = pgclubrepo.NewRepo(pool)
		edges = pgedgerepo.NewRepo(pool)
		activity = pgactivityrepo.NewRepo(pool)
	default:
		memClubs := memclubrepo.NewRepo()
		memEdges := memedgerepo.NewRepoForClubs(memClubs)
		memActivity := memactivityrepo.NewRepo(memClubs, memEdges)
		if cfg.SeedDemo {
			ids, err := seed.Demo(ctx, seed.Stores{Clubs: memClubs, Edges: memEdges, Activity: memActivity}, clk.Now())
			if err != nil {
				return err
			}
			for _, id := range ids {
				lg.Info(ctx, "seeded demo club", logger.String("club_id", string(id)))
			}
		}
		clubRepo, edges, activity = memClubs, memEdges, memActivity
	}

	var sink noticesink.Sink = lognotice.NewSink(lg)
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name(serviceName))
		if err != nil {
			return err
		}
		defer nc.Drain()
		sink = natsnotice.NewPublisher(nc, cfg.NATSSubject, lg)
	}

	lookup := status.NewLookup(edges,
		status.WithLogger(lg),
		status.WithMetrics(m),
		status.WithLookupTimeout(cfg.LookupTimeout),
	)
	agg := notifications.NewAggregator(activity,
		notifications.WithLogger(lg),
		notifications.WithMetrics(m),
	)
	deps := mutation.Deps{
		Edges:        edges,
		Guard:        inflight.NewGuard(),
		Sink:         sink,
		Clock:        clk,
		Logger:       lg,
		Metrics:      m,
		WriteTimeout: cfg.MutationTimeout,
	}
	sessions, err := httpapi.NewSessions(cfg.SessionCacheSize, lookup, agg, deps, m)
	if err != nil {
		return err
	}

	api := httpapi.NewServer(clubs.NewService(clubRepo, activity), sessions, lg)
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		AuthMiddleware: authMW,
		Metrics:        m,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info(ctx, "api listening",
			logger.String("addr", cfg.Addr),
			logger.String("storage_backend", cfg.StorageBackend),
			logger.String("auth_mode", cfg.AuthMode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
