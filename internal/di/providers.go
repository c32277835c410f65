package di

import (
	"context"
	"fmt"
	"time"

	drepo "AutoTrade/internal/domain/repository"
	domsvc "AutoTrade/internal/domain/service"
	"AutoTrade/internal/handler/api"
	mid "AutoTrade/internal/middleware"
	internalrepo "AutoTrade/internal/repository"
	icache "AutoTrade/internal/service/cache"
	imetrics "AutoTrade/internal/service/metrics"
	"AutoTrade/internal/service/ratelimit"
	"AutoTrade/internal/service/yahoo"
	"AutoTrade/internal/services/predictor"
	"AutoTrade/internal/services/signal"
	"AutoTrade/internal/services/synthetic"
	"AutoTrade/internal/usecase"
	pkgch "AutoTrade/pkg/clickhouse"
	"AutoTrade/pkg/config"
	xhttp "AutoTrade/pkg/http"
	pkgkafka "AutoTrade/pkg/kafka"
	applogger "AutoTrade/pkg/logger"
	"AutoTrade/pkg/metrics"
	"AutoTrade/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) drepo.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

// ProvideEndpointMetrics registers per-endpoint collectors, or uses a throwaway registry when metrics are off.
func ProvideEndpointMetrics(cfg *config.Config) *imetrics.Endpoints {
	if !cfg.Metrics.Enabled {
		return imetrics.NewEndpoints(prometheus.NewRegistry())
	}
	return imetrics.NewEndpoints(prometheus.DefaultRegisterer)
}

// ProvideBytesCache creates the series cache backend.
func ProvideBytesCache(cfg *config.Config, l *applogger.Logger) (icache.BytesCache, func(), error) {
	if cfg.Cache.Backend != "redis" {
		return icache.NewTTLCache(), func() {}, nil
	}
	rc := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Cache.Redis.Addr, err)
	}
	cleanup := func() {
		if err := rc.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}
	return rc, cleanup, nil
}

// ProvideSeriesStore creates the TTL series store over the cache backend.
func ProvideSeriesStore(c icache.BytesCache, cfg *config.Config, l *applogger.Logger) drepo.SeriesStore {
	s := internalrepo.NewCachedSeriesStore(c, cfg.Cache.KeyPrefix, cfg.Data.CacheTTL)
	s.SetLogger(l)
	return s
}

// ProvideClickHouseClient connects only when ClickHouse is the market data source.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	if cfg.Data.Source != "clickhouse" {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecTime),
		pkgch.WithReadOnly(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	return client, cleanup, nil
}

// ProvideMarketSource selects the live data source. Mock mode returns nil,
// which makes every request fall through to synthetic data.
func ProvideMarketSource(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (drepo.MarketDataSource, error) {
	switch cfg.Data.Source {
	case "clickhouse":
		src, err := internalrepo.NewCHMarketSource(ch, cfg.ClickHouse.CandlesTable, cfg.Data.HistoryBars)
		if err != nil {
			return nil, err
		}
		src.SetLogger(l)
		return src, nil
	case "mock":
		return nil, nil
	default:
		hc := xhttp.NewClient(
			xhttp.WithTimeout(cfg.Data.FetchTimeout),
			xhttp.WithUserAgent(cfg.Data.UserAgent),
		)
		return yahoo.New(hc,
			yahoo.WithBaseURL(cfg.Data.BaseURL),
			yahoo.WithWindow(cfg.Data.Interval, cfg.Data.Range),
		), nil
	}
}

// ProvideSynthetic creates the fallback series generator, long enough for the configured lookback.
func ProvideSynthetic(cfg *config.Config) *synthetic.Generator {
	return synthetic.New(synthetic.WithBars(max(synthetic.DefaultBars, cfg.Predictor.Lookback+1)))
}

// ProvideAcquirer creates the cache, live and synthetic data ladder.
func ProvideAcquirer(
	cfg *config.Config,
	src drepo.MarketDataSource,
	store drepo.SeriesStore,
	synth *synthetic.Generator,
	m drepo.Metrics,
	l *applogger.Logger,
) *usecase.DataAcquirer {
	return usecase.NewDataAcquirer(src, store, synth, m,
		usecase.WithMinLength(cfg.Predictor.Lookback+1),
		usecase.WithFetchTimeout(cfg.Data.FetchTimeout),
		usecase.WithNormalizer(drepo.SymbolNormalizer{
			DefaultSuffix: cfg.Data.DefaultSuffix,
			KnownSuffixes: cfg.Data.KnownSuffixes,
		}),
		usecase.WithAcquirerLogger(l),
	)
}

// ProvidePredictor selects the in-process or remote sequence model.
func ProvidePredictor(cfg *config.Config) domsvc.SequencePredictor {
	if cfg.Predictor.Kind == "http" {
		return predictor.NewHTTP(cfg.Predictor.ServiceURL, cfg.Predictor.FitTimeout)
	}
	return predictor.NewLinear(
		predictor.WithEpochs(cfg.Predictor.Epochs),
		predictor.WithLearningRate(cfg.Predictor.LearningRate),
	)
}

// ProvideConfirmationBuffer creates the per-symbol confirmation history.
func ProvideConfirmationBuffer(cfg *config.Config) *signal.ConfirmationBuffer {
	return signal.NewConfirmationBuffer(signal.Policy{
		ConfirmCount:    cfg.Predictor.ConfirmCount,
		ConfidenceLimit: cfg.Predictor.ConfidenceLimit,
		MinMovePct:      cfg.Predictor.MinMovePct,
	})
}

func ProvideAssembler(cfg *config.Config) *usecase.Assembler {
	return usecase.NewAssembler(cfg.Predictor.ChartPoints, cfg.Predictor.ConfidenceLimit)
}

// ProvideEventPipeline builds the Kafka publishing pipeline; nil when Kafka is disabled.
func ProvideEventPipeline(cfg *config.Config, m drepo.Metrics, l *applogger.Logger) (*mid.EventPipeline, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
	pipe := mid.NewEventPipeline(pub, m,
		mid.WithThrottle(cfg.Kafka.Pipeline.Throttle),
		mid.WithBufferSize(cfg.Kafka.Pipeline.BufferSize),
		mid.WithBatch(cfg.Kafka.Pipeline.BatchSize, cfg.Kafka.Pipeline.FlushInterval),
		mid.WithPipelineLogger(l),
	)
	cleanup := func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	return pipe, cleanup, nil
}

// ProvideEventSink falls back to a no-op sink when publishing is off.
func ProvideEventSink(p *mid.EventPipeline) drepo.EventSink {
	if p == nil {
		return mid.NopSink{}
	}
	return p
}

// ProvideNopSink discards prediction events; used by the CLI.
func ProvideNopSink() drepo.EventSink { return mid.NopSink{} }

// ProvidePredictionService creates the prediction pipeline owner.
func ProvidePredictionService(
	cfg *config.Config,
	acq *usecase.DataAcquirer,
	pred domsvc.SequencePredictor,
	confirm *signal.ConfirmationBuffer,
	asm *usecase.Assembler,
	sink drepo.EventSink,
	m drepo.Metrics,
	l *applogger.Logger,
) *usecase.PredictionService {
	return usecase.NewPredictionService(acq, pred, confirm, asm, sink, m, l,
		cfg.Predictor.Lookback, cfg.Predictor.FitTimeout)
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.Server.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.Server.RateLimit.Burst, cfg.Server.RateLimit.RPS)
}

func ProvidePredictHandler(
	svc *usecase.PredictionService,
	l *applogger.Logger,
	rl *ratelimit.Limiter,
	em *imetrics.Endpoints,
) *api.PredictEchoHandler {
	return api.NewPredictEchoHandler(svc, l, rl, em)
}

// ProvideHTTPServer creates the Echo server with all API routes.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.PredictEchoHandler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(l, []xhttp.Handler{h},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithMetrics(metricsPath, prometheus.DefaultRegisterer, prometheus.DefaultGatherer),
	)
}

// ProvideWarmer schedules cache warm-up; nil when disabled.
func ProvideWarmer(cfg *config.Config, acq *usecase.DataAcquirer, m drepo.Metrics, l *applogger.Logger) (*usecase.Warmer, error) {
	if !cfg.Warmup.Enabled {
		return nil, nil
	}
	return usecase.NewWarmer(acq, cfg.Warmup.Cron, cfg.Warmup.Symbols, m, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	pipe *mid.EventPipeline,
	warmer *usecase.Warmer,
	rl *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, l, srv, pipe, warmer, rl)
}
