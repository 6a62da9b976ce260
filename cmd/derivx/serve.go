package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/derivx/api"
	"github.com/seenimoa/derivx/internal/config"
	"github.com/seenimoa/derivx/internal/datasource"
	"github.com/seenimoa/derivx/internal/infra"
	"github.com/seenimoa/derivx/internal/logging"
	"github.com/seenimoa/derivx/internal/metrics"
)

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}

		log, err := logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = log.Sync() }()
		zap.ReplaceGlobals(log)

		m := metrics.New()
		store, closeStore, err := newStore(cmd.Context(), cfg, log, m)
		if err != nil {
			return err
		}
		defer closeStore()

		if len(cfg.Data.Preload) > 0 {
			start := time.Now()
			if err := store.Preload(cmd.Context(), cfg.Data.Preload, cfg.Data.ConcurrentFetches); err != nil {
				log.Warn("preload incomplete", zap.Error(err))
			} else {
				log.Info("preload complete",
					zap.Int("symbols", len(cfg.Data.Preload)),
					zap.Duration("took", time.Since(start)),
				)
			}
		}

		srv := api.NewServer(cfg, store, log, m)
		return srv.ListenAndServe(cmd.Context(), cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port override")
}

// newStore wires the configured data source behind the shared candle cache.
// The returned func releases the cache.
func newStore(ctx context.Context, cfg *config.Config, log *zap.Logger, m *metrics.Metrics) (*datasource.Store, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var src datasource.SeriesSource
	switch cfg.Data.Source {
	case config.SourceS3:
		s3cfg := cfg.Data.S3
		s3src, err := datasource.NewS3Source(ctx, datasource.S3Config{
			Endpoint:          s3cfg.Endpoint,
			Region:            s3cfg.Region,
			Bucket:            s3cfg.Bucket,
			Prefix:            s3cfg.Prefix,
			AccessKey:         s3cfg.AccessKey,
			SecretKey:         s3cfg.SecretKey,
			UseSSL:            s3cfg.UseSSL,
			ForcePathStyle:    s3cfg.ForcePathStyle,
			RequestsPerSecond: s3cfg.RequestsPerSecond,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init s3 source: %w", err)
		}
		src = s3src
	default:
		src = datasource.NewFileSource(cfg.Data.Dir)
	}

	ttl := time.Duration(cfg.Data.CacheTTL) * time.Second
	cache, err := infra.NewCache(cfg.Data.CacheMaxCost, ttl)
	if err != nil {
		return nil, nil, fmt.Errorf("init cache: %w", err)
	}

	log.Info("data source ready", zap.String("source", src.Name()))
	return datasource.NewStore(src, cache, log, m), cache.Close, nil
}
