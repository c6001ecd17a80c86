package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/radieske/varsity-predictions/internal/prediction-service/activity"
	"github.com/radieske/varsity-predictions/internal/prediction-service/boost"
	"github.com/radieske/varsity-predictions/internal/prediction-service/consumer"
	"github.com/radieske/varsity-predictions/internal/prediction-service/market"
	"github.com/radieske/varsity-predictions/internal/prediction-service/producer"
	"github.com/radieske/varsity-predictions/internal/prediction-service/repo"
	"github.com/radieske/varsity-predictions/internal/prediction-service/service"
	"github.com/radieske/varsity-predictions/internal/prediction-service/wallet"
	"github.com/radieske/varsity-predictions/internal/shared/cache"
	"github.com/radieske/varsity-predictions/internal/shared/config"
	"github.com/radieske/varsity-predictions/internal/shared/db"
	"github.com/radieske/varsity-predictions/internal/shared/kafka"
	"github.com/radieske/varsity-predictions/internal/shared/logger"
	"github.com/radieske/varsity-predictions/internal/shared/metrics"
	"github.com/radieske/varsity-predictions/pkg/payout"
)

var (
	mConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_messages_consumed_total",
		Help: "market_settled messages consumed",
	})
	mMarkets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_markets_settled_total",
		Help: "Markets fully settled",
	})
	mSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predictions_settled_total",
		Help: "Predictions settled, by outcome",
	}, []string{"outcome"})
	mErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_worker_errors_total",
		Help: "Settlement worker errors, by stage",
	}, []string{"stage"})
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "settlement-worker"
	}
	log := logger.Must(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka consumer: market_settled (chave = marketId, então um mercado por partição)
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicMarketSettled, "settlement-worker")
	defer reader.Close()

	// Kafka producer: prediction_settled e DLQ
	writer := kafka.NewMultiTopicWriter(cfg.KafkaBrokers)
	defer writer.Close()

	var dlq *kafka.Writer
	if cfg.TopicMarketSettledDLQ != "" {
		dlq = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMarketSettledDLQ)
		defer dlq.Close()
	}

	svc := service.New(log,
		market.NewCatalog(market.NewReadRepo(pg), rdb, cfg.MarketCacheTTL, log),
		boost.NewPresenceStore(rdb, cfg.PresenceTTL),
		boost.NewResolver(cfg.StadiumBoost),
		repo.NewPostgres(pg),
		wallet.New(cfg.WalletURL),
		producer.NewKafkaPublisher(writer, cfg.TopicPredictionPlaced, cfg.TopicPredictionSettled, cfg.TopicMarketSettled),
		activity.NewRedisBroadcaster(rdb, cfg.RedisActivityChannel),
		service.Hooks{
			OnSettled: func(o payout.Outcome) { mSettled.WithLabelValues(string(o)).Inc() },
		},
	)

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, pg.PingContext)

	p := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Settler:    svc,
		Retries:    3,
		Backoff:    300 * time.Millisecond,
		OnConsumed: mConsumed.Inc,
		OnSettled:  func(service.SettlementSummary) { mMarkets.Inc() },
		OnError:    func(stage string) { mErrors.WithLabelValues(stage).Inc() },
	}
	if dlq != nil {
		p.DLQ = dlq
	}

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicMarketSettled),
		zap.String("publish", cfg.TopicPredictionSettled),
		zap.String("dlq", cfg.TopicMarketSettledDLQ),
	)

	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("processor stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("settlement-worker stopped")
}
