package repository

import (
	"context"
	"encoding/json"
	"time"

	"AutoTrade/internal/domain/models"
	domrepo "AutoTrade/internal/domain/repository"
	icache "AutoTrade/internal/service/cache"
	applogger "AutoTrade/pkg/logger"
)

// CachedSeriesStore implements SeriesStore over a BytesCache.
// Entries are stored as JSON, so every Get returns a private copy.
type CachedSeriesStore struct {
	cache  icache.BytesCache
	prefix string
	ttl    time.Duration
	l      *applogger.Logger
}

type seriesEntry struct {
	FetchedAt time.Time      `json:"fetched_at"`
	Series    *models.Series `json:"series"`
}

func NewCachedSeriesStore(c icache.BytesCache, prefix string, ttl time.Duration) *CachedSeriesStore {
	return &CachedSeriesStore{cache: c, prefix: prefix, ttl: ttl}
}

// SetLogger injects a structured logger.
func (s *CachedSeriesStore) SetLogger(l *applogger.Logger) { s.l = l }

// TTL returns the freshness window.
func (s *CachedSeriesStore) TTL() time.Duration { return s.ttl }

func (s *CachedSeriesStore) Get(ctx context.Context, symbol string, now time.Time) (*models.Series, time.Time, bool) {
	b, ok, err := s.cache.GetBytes(ctx, s.prefix+symbol)
	if err != nil {
		s.warn("series cache get failed", symbol, err)
		return nil, time.Time{}, false
	}
	if !ok {
		return nil, time.Time{}, false
	}
	var e seriesEntry
	if err := json.Unmarshal(b, &e); err != nil || e.Series == nil {
		s.warn("series cache entry corrupt", symbol, err)
		return nil, time.Time{}, false
	}
	if now.Sub(e.FetchedAt) >= s.ttl {
		return nil, time.Time{}, false
	}
	return e.Series, e.FetchedAt, true
}

// Put overwrites the entry. The backend TTL is padded so that the freshness
// decision always comes from fetchedAt, not from backend expiry.
func (s *CachedSeriesStore) Put(ctx context.Context, symbol string, series *models.Series, fetchedAt time.Time) error {
	b, err := json.Marshal(seriesEntry{FetchedAt: fetchedAt, Series: series})
	if err != nil {
		return err
	}
	return s.cache.SetBytes(ctx, s.prefix+symbol, b, 2*s.ttl)
}

func (s *CachedSeriesStore) Len(ctx context.Context) int {
	n, err := s.cache.Count(ctx, s.prefix)
	if err != nil {
		s.warn("series cache count failed", "", err)
		return 0
	}
	return n
}

func (s *CachedSeriesStore) warn(msg, symbol string, err error) {
	if s.l == nil {
		return
	}
	fields := []applogger.Field{applogger.String("symbol", symbol)}
	if err != nil {
		fields = append(fields, applogger.Error(err))
	}
	s.l.Warn(msg, fields...)
}

var _ domrepo.SeriesStore = (*CachedSeriesStore)(nil)
