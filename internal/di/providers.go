package di

import (
	"fmt"
	"time"

	"TechScreener/internal/domain/repository"
	"TechScreener/internal/handler/api"
	"TechScreener/internal/service/ratelimit"
	"TechScreener/internal/service/tradingview"
	"TechScreener/internal/usecase"
	"TechScreener/pkg/config"
	pkgkafka "TechScreener/pkg/kafka"
	"TechScreener/pkg/lock"
	applogger "TechScreener/pkg/logger"
	"TechScreener/pkg/metrics"
	"TechScreener/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger from the log section.
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

// ProvideKafkaProducer creates the error-log shipping producer, or nil when
// Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(3),
		pkgkafka.WithBatch(cfg.Kafka.FlushThreshold, time.Second),
		pkgkafka.WithWriteTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideScanLocker picks the scan gate backend.
func ProvideScanLocker(cfg *config.Config) (repository.ScanLocker, error) {
	switch cfg.Scan.LockBackend {
	case "redis":
		l, err := lock.NewRedisLocker(
			lock.WithRedisHost(cfg.Redis.Host),
			lock.WithRedisPort(cfg.Redis.Port),
			lock.WithRedisPassword(cfg.Redis.Password),
			lock.WithRedisDB(cfg.Redis.DB),
			lock.WithRedisPrefix(cfg.Redis.Prefix),
			lock.WithRedisPool(4, 1, 5*time.Second),
		)
		if err != nil {
			return nil, fmt.Errorf("redis locker: %w", err)
		}
		return l, nil
	default:
		return lock.NewMemoryLocker(), nil
	}
}

// ProvideScreenerProvider creates the TradingView scanner client.
func ProvideScreenerProvider(cfg *config.Config) repository.ScreenerProvider {
	return tradingview.New(cfg.Provider.BaseURL, cfg.Provider.Timeout, cfg.Provider.UserAgent)
}

// ProvideScreener creates the screener use case.
func ProvideScreener(
	provider repository.ScreenerProvider,
	locker repository.ScanLocker,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.Screener {
	return usecase.NewScreener(provider, locker, m, logger.With(applogger.String("component", "screener")), cfg.Scan.LockTTL)
}

// ProvideRateLimiter creates the per-client scan throttle.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Scan.RateLimit.Capacity, cfg.Scan.RateLimit.RefillPerSec)
}

// ProvideScreenerHandler creates the HTTP handler.
func ProvideScreenerHandler(
	logger *applogger.Logger,
	screener *usecase.Screener,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
) *api.ScreenerEchoHandler {
	return api.NewScreenerEchoHandler(logger, screener, limiter, cfg.Provider.Market)
}

// ProvideApp creates the application server and hands it everything that
// must be closed on shutdown.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	handler *api.ScreenerEchoHandler,
	limiter *ratelimit.Limiter,
	locker repository.ScanLocker,
	producer *pkgkafka.Producer,
) *server.App {
	if producer != nil {
		logger.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Kafka.FlushInterval,
			CountThreshold: cfg.Kafka.FlushThreshold,
			Topic:          cfg.Kafka.LogTopic,
			Publisher:      producer,
		})
	}

	app := server.New(cfg, logger, handler, limiter)
	if producer != nil {
		app.AddCloser("kafka producer", producer)
	}
	if rl, ok := locker.(*lock.RedisLocker); ok {
		app.AddCloser("redis locker", rl)
	}
	return app
}
