package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/varsity-predictions/internal/prediction-service/activity"
	"github.com/radieske/varsity-predictions/internal/prediction-service/boost"
	httpapi "github.com/radieske/varsity-predictions/internal/prediction-service/http"
	"github.com/radieske/varsity-predictions/internal/prediction-service/market"
	"github.com/radieske/varsity-predictions/internal/prediction-service/producer"
	"github.com/radieske/varsity-predictions/internal/prediction-service/repo"
	"github.com/radieske/varsity-predictions/internal/prediction-service/service"
	"github.com/radieske/varsity-predictions/internal/prediction-service/wallet"
	"github.com/radieske/varsity-predictions/internal/prediction-service/ws"
	"github.com/radieske/varsity-predictions/internal/shared/cache"
	"github.com/radieske/varsity-predictions/internal/shared/config"
	"github.com/radieske/varsity-predictions/internal/shared/db"
	"github.com/radieske/varsity-predictions/internal/shared/kafka"
	"github.com/radieske/varsity-predictions/internal/shared/logger"
	"github.com/radieske/varsity-predictions/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "prediction-service"
	}

	log := logger.Must(cfg.ServiceName, cfg.Env)
	defer log.Sync()
	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres: mercados e apostas
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()
	if cfg.AutoMigrate {
		if err := db.MigrateUp(pg, log); err != nil {
			log.Fatal("migrations", zap.Error(err))
		}
	}

	// Redis: presença no estádio, cache de mercados e feed de atividade
	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka: um writer para prediction_placed, prediction_settled e market_settled
	writer := kafka.NewMultiTopicWriter(cfg.KafkaBrokers)
	defer writer.Close()

	markets := market.NewCatalog(market.NewReadRepo(pg), rdb, cfg.MarketCacheTTL, log)
	presence := boost.NewPresenceStore(rdb, cfg.PresenceTTL)
	pub := producer.NewKafkaPublisher(writer, cfg.TopicPredictionPlaced, cfg.TopicPredictionSettled, cfg.TopicMarketSettled)
	feed := activity.NewRedisBroadcaster(rdb, cfg.RedisActivityChannel)

	svc := service.New(log,
		markets,
		presence,
		boost.NewResolver(cfg.StadiumBoost),
		repo.NewPostgres(pg),
		wallet.New(cfg.WalletURL),
		pub,
		feed,
		metricHooks(),
	)

	// WebSocket: amigos acompanham as apostas em tempo real
	hub := ws.NewHub(func(*http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, log, rdb, cfg.RedisActivityChannel, hub)

	api := &httpapi.API{Log: log, Svc: svc, WS: hub.HandleWS}

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort, // ex: 8083
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("api listening",
			zap.String("addr", apiSrv.Addr),
			zap.String("stadiumBoost", cfg.StadiumBoost.String()),
			zap.String("wallet", cfg.WalletURL),
		)
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api srv", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("prediction-service stopped")
}
