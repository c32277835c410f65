package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"AutoTrade/internal/domain/models"
	domrepo "AutoTrade/internal/domain/repository"
	pkgch "AutoTrade/pkg/clickhouse"
	applogger "AutoTrade/pkg/logger"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// CHMarketSource implements MarketDataSource over a ClickHouse candles table
// with columns (bucket, symbol, open, high, low, close, vol).
type CHMarketSource struct {
	db    *sql.DB
	ping  func(context.Context) error
	table string
	limit int
	l     *applogger.Logger
}

func NewCHMarketSource(ch *pkgch.Client, table string, limit int) (*CHMarketSource, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid candles table name %q", table)
	}
	if limit <= 0 {
		limit = 1000
	}
	return &CHMarketSource{db: ch.DB(), ping: ch.Health, table: table, limit: limit}, nil
}

// SetLogger injects a structured logger.
func (s *CHMarketSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHMarketSource) Name() string { return "clickhouse" }

func (s *CHMarketSource) Health(ctx context.Context) error { return s.ping(ctx) }

// FetchSeries returns the latest candles for symbol in ascending order.
func (s *CHMarketSource) FetchSeries(ctx context.Context, symbol string) (*models.Series, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT bucket, open, high, low, close, vol
        FROM %s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, s.limit)
	if err != nil {
		s.logErr("clickhouse latest_candles query error", symbol, err)
		return nil, fmt.Errorf("query candles: %v: %w", err, models.ErrDataUnavailable)
	}
	defer rows.Close()

	bars := make([]models.Bar, 0, s.limit)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.logErr("clickhouse latest_candles scan error", symbol, err)
			return nil, fmt.Errorf("scan candle: %v: %w", err, models.ErrDataUnavailable)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		s.logErr("clickhouse latest_candles rows error", symbol, err)
		return nil, fmt.Errorf("rows: %v: %w", err, models.ErrDataUnavailable)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no candles for %s: %w", symbol, models.ErrDataUnavailable)
	}
	// reverse to ASC
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	if s.l != nil {
		s.l.Debug("clickhouse latest_candles ok",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(bars)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return &models.Series{Symbol: symbol, Bars: bars}, nil
}

func (s *CHMarketSource) logErr(msg, symbol string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", s.table),
		applogger.String("symbol", symbol),
		applogger.Int("limit", s.limit),
		applogger.Error(err),
	)
}

var _ domrepo.MarketDataSource = (*CHMarketSource)(nil)
