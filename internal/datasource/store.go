package datasource

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/seenimoa/derivx/internal/infra"
	"github.com/seenimoa/derivx/internal/metrics"
	"github.com/seenimoa/derivx/pkg/models"
	"github.com/seenimoa/derivx/pkg/utils"
)

// Store loads OHLCV series from a SeriesSource and caches them per file
// name. Concurrent loads of the same symbol share one read.
// Returned slices are shared with the cache and must not be modified.
type Store struct {
	src     SeriesSource
	cache   *infra.Cache
	group   singleflight.Group
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewStore wires a source to a cache. log and m may be nil.
func NewStore(src SeriesSource, cache *infra.Cache, log *zap.Logger, m *metrics.Metrics) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{src: src, cache: cache, log: log, metrics: m}
}

// Source returns the underlying series source.
func (s *Store) Source() SeriesSource { return s.src }

// Load returns the candles for symbol, reading the source on a cache miss.
// Entries are keyed by the file they were read from, so spellings that
// resolve to different files never share one. Missing symbols are not
// cached, so a file added later is picked up on the next request.
func (s *Store) Load(ctx context.Context, symbol string) ([]models.OHLCV, error) {
	names := utils.SymbolFilenames(symbol)
	if v, ok := s.cache.Get(names[0]); ok {
		s.metrics.ObserveCache(true)
		return v.([]models.OHLCV), nil
	}

	v, err, _ := s.group.Do(names[0], func() (any, error) {
		return s.read(ctx, symbol, names)
	})
	if err != nil {
		s.metrics.ObserveCache(false)
		return nil, err
	}
	res := v.(loadResult)
	s.metrics.ObserveCache(res.cached)
	return res.candles, nil
}

type loadResult struct {
	candles []models.OHLCV
	cached  bool // served from an alternate spelling already in the cache
}

// read tries names in order. A name is only given up for the next one
// when its file does not exist.
func (s *Store) read(ctx context.Context, symbol string, names []string) (loadResult, error) {
	for _, name := range names {
		if v, ok := s.cache.Get(name); ok {
			return loadResult{candles: v.([]models.OHLCV), cached: true}, nil
		}
		rc, err := s.src.Open(ctx, name)
		if errors.Is(err, ErrSymbolNotFound) {
			continue
		}
		if err != nil {
			s.metrics.ObserveLoad("error")
			return loadResult{}, err
		}
		candles, skipped, err := ParseOHLCV(rc)
		rc.Close()
		if err != nil {
			s.metrics.ObserveLoad("error")
			return loadResult{}, fmt.Errorf("parse %s: %w", name, err)
		}
		if len(candles) == 0 {
			s.metrics.ObserveLoad("error")
			return loadResult{}, fmt.Errorf("%s: %w", name, ErrEmptySeries)
		}

		s.cache.SetWithCost(name, candles, int64(len(candles)))
		s.metrics.ObserveLoad("ok")
		if skipped > 0 {
			s.log.Debug("skipped malformed rows", zap.String("file", name), zap.Int("rows", skipped))
		}
		s.log.Info("loaded ohlcv series",
			zap.String("symbol", symbol),
			zap.String("file", name),
			zap.Int("candles", len(candles)),
		)
		return loadResult{candles: candles}, nil
	}
	s.metrics.ObserveLoad("not_found")
	return loadResult{}, &NotFoundError{Symbol: symbol}
}

// Invalidate drops every cached series symbol could resolve to.
func (s *Store) Invalidate(symbol string) {
	for _, name := range utils.SymbolFilenames(symbol) {
		s.cache.Invalidate(name)
	}
}

// Symbols lists the symbols available in the source, sorted.
func (s *Store) Symbols(ctx context.Context) ([]string, error) {
	names, err := s.src.List(ctx)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(names))
	for _, n := range names {
		if sym, ok := utils.FilenameToSymbol(n); ok {
			symbols = append(symbols, sym)
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Preload warms the cache for symbols using at most concurrency parallel
// reads. Missing symbols are logged and skipped. Any other failure stops
// the preload and is returned.
func (s *Store) Preload(ctx context.Context, symbols []string, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, sym := range symbols {
		sym := sym
		g.Go(func() error {
			_, err := s.Load(ctx, sym)
			if errors.Is(err, ErrSymbolNotFound) {
				s.log.Warn("preload: symbol not found", zap.String("symbol", sym))
				return nil
			}
			if err != nil {
				return fmt.Errorf("preload %s: %w", sym, err)
			}
			return nil
		})
	}
	return g.Wait()
}
