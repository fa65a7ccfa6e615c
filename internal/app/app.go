package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/fplstats/fpl-stats/external/fplfeed"
	"github.com/fplstats/fpl-stats/external/histfeed"
	"github.com/fplstats/fpl-stats/internal/config"
	"github.com/fplstats/fpl-stats/internal/domain/archive"
	"github.com/fplstats/fpl-stats/internal/infrastructure/repository/postgres"
	"github.com/fplstats/fpl-stats/internal/interfaces/httpapi"
	"github.com/fplstats/fpl-stats/internal/platform/cache"
	"github.com/fplstats/fpl-stats/internal/platform/logging"
	"github.com/fplstats/fpl-stats/internal/platform/resilience"
	"github.com/fplstats/fpl-stats/internal/usecase"
)

// NewHTTPServer wires the feed clients, services and HTTP router. The
// returned cleanup closes resources the server holds open (currently
// the archive database handle).
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	feedClient := fplfeed.NewClient(fplfeed.ClientConfig{
		BaseURL: cfg.FeedBaseURL,
		Timeout: cfg.FeedTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FeedCircuitEnabled,
			FailureThreshold: cfg.FeedCircuitFailureCount,
			OpenTimeout:      cfg.FeedCircuitOpenTimeout,
			HalfOpenLimit:    cfg.FeedCircuitHalfOpenLimit,
		},
	})
	historyClient := histfeed.NewClient(histfeed.ClientConfig{
		URLTemplate: cfg.HistoryURLTemplate,
		Timeout:     cfg.HistoryTimeout,
		Logger:      logger,
	})

	cleanup := func() error { return nil }

	var archiveRepo archive.Repository
	if cfg.DBEnabled {
		db, err := openDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		archiveRepo = postgres.NewSnapshotPayloadRepository(db)
		cleanup = db.Close
		logger.Info("snapshot archive enabled", "db", dbNameFromURL(cfg.DBURL))
	}

	snapshotSvc := usecase.NewSnapshotService(feedClient, cache.NewStore(cfg.SnapshotTTL), archiveRepo, logger)
	statsSvc := usecase.NewStatsService(snapshotSvc)
	historySvc := usecase.NewHistoryService(snapshotSvc, historyClient, cache.NewStore(cfg.HistoryTTL), logger)

	handler := httpapi.NewHandler(snapshotSvc, statsSvc, historySvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return db, nil
}
